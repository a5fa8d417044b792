package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestWrapQueryError_TablaInexistente(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "42P01", Message: `relation "sales" does not exist`}

	err := wrapQueryError("sales", pgErr)
	assert.ErrorContains(t, err, "la tabla sales no existe")
	assert.ErrorIs(t, err, pgErr)
}

func TestWrapQueryError_OtroError(t *testing.T) {
	cause := errors.New("conexión cerrada")

	err := wrapQueryError("products", cause)
	assert.ErrorContains(t, err, "consulta de products")
	assert.ErrorIs(t, err, cause)
	assert.False(t, isUndefinedTable(cause))
}
