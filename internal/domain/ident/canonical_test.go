package ident_test

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jhoicas/stockpilot-api/internal/domain/ident"
)

func TestCanonical_Representaciones(t *testing.T) {
	oid, err := primitive.ObjectIDFromHex("65a1b2c3d4e5f60718293a4b")
	assert.NoError(t, err)
	u := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	cases := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string con espacios", "  p1 ", "p1"},
		{"objectid", oid, "65a1b2c3d4e5f60718293a4b"},
		{"objectid cero", primitive.NilObjectID, ""},
		{"hex en mayúsculas", "65A1B2C3D4E5F60718293A4B", "65a1b2c3d4e5f60718293a4b"},
		{"shell de mongo", `ObjectId("65a1b2c3d4e5f60718293a4b")`, "65a1b2c3d4e5f60718293a4b"},
		{"bytes de 12", [12]byte(oid), "65a1b2c3d4e5f60718293a4b"},
		{"int64", int64(42), "42"},
		{"int32", int32(42), "42"},
		{"float entero", 42.0, "42"},
		{"float fraccional", 4.5, "4.5"},
		{"float NaN", math.NaN(), ""},
		{"string float entero", "42.0", "42"},
		{"string float fraccional", "42.5", "42.5"},
		{"string con punto final", "42.", "42."},
		{"uuid", u, "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
		{"uuid nulo", uuid.Nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ident.Canonical(tc.in))
		})
	}
}

func TestEqual(t *testing.T) {
	oid := primitive.NewObjectID()
	assert.True(t, ident.Equal(oid, oid.Hex()))
	assert.True(t, ident.Equal(42, "42"))
	assert.True(t, ident.Equal(42.0, "42"))
	assert.False(t, ident.Equal("", ""))
	assert.False(t, ident.Equal(nil, nil))
	assert.False(t, ident.Equal("p1", "p2"))
}
