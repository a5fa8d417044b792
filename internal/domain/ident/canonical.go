// Package ident normaliza identificadores heterogéneos (string, numérico,
// ObjectID de 12 bytes, UUID) a una única forma string comparable.
// Todo join entre colecciones compara exclusivamente claves canónicas.
package ident

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Canonical convierte v en su clave canónica. nil y valores vacíos devuelven "".
func Canonical(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return canonicalString(id)
	case *string:
		if id == nil {
			return ""
		}
		return canonicalString(*id)
	case primitive.ObjectID:
		if id.IsZero() {
			return ""
		}
		return id.Hex()
	case *primitive.ObjectID:
		if id == nil {
			return ""
		}
		return Canonical(*id)
	case [12]byte:
		return hex.EncodeToString(id[:])
	case uuid.UUID:
		if id == uuid.Nil {
			return ""
		}
		return id.String()
	case int:
		return strconv.FormatInt(int64(id), 10)
	case int32:
		return strconv.FormatInt(int64(id), 10)
	case int64:
		return strconv.FormatInt(id, 10)
	case uint:
		return strconv.FormatUint(uint64(id), 10)
	case uint32:
		return strconv.FormatUint(uint64(id), 10)
	case uint64:
		return strconv.FormatUint(id, 10)
	case float32:
		return canonicalFloat(float64(id))
	case float64:
		return canonicalFloat(id)
	case []byte:
		if len(id) == 12 {
			return hex.EncodeToString(id)
		}
		return canonicalString(string(id))
	case fmt.Stringer:
		return canonicalString(id.String())
	default:
		return canonicalString(fmt.Sprint(v))
	}
}

// Equal compara dos identificadores por su forma canónica. Dos vacíos nunca son iguales.
func Equal(a, b any) bool {
	ca, cb := Canonical(a), Canonical(b)
	return ca != "" && ca == cb
}

func canonicalString(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "\ufeff")
	// ObjectId("...") tal como lo imprime el shell de Mongo
	if strings.HasPrefix(s, "ObjectId(") && strings.HasSuffix(s, ")") {
		s = strings.Trim(s[len("ObjectId("):len(s)-1], `"' `)
	}
	if len(s) == 24 && isHex(s) {
		return strings.ToLower(s)
	}
	return trimIntegralFraction(s)
}

// trimIntegralFraction convierte "42.0" o "42.00" en "42" (ids exportados como float por pandas).
func trimIntegralFraction(s string) string {
	dot := strings.IndexByte(s, '.')
	if dot <= 0 || dot == len(s)-1 {
		return s
	}
	intPart, frac := s[:dot], s[dot+1:]
	if strings.Trim(frac, "0") != "" {
		return s
	}
	digits := strings.TrimPrefix(intPart, "-")
	if digits == "" || strings.Trim(digits, "0123456789") != "" {
		return s
	}
	return intPart
}

// canonicalFloat imprime floats enteros sin decimales (42.0 -> "42"), como
// llegan los ids numéricos desde hojas de cálculo o JSON.
func canonicalFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func isHex(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
