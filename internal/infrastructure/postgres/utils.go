package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUndefinedTable verifica si un error es una tabla inexistente (42P01).
func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42P01" // undefined_table
	}
	return false
}

// wrapQueryError da contexto a un fallo de lectura de una tabla del pipeline.
func wrapQueryError(table string, err error) error {
	if isUndefinedTable(err) {
		return fmt.Errorf("salesdata: la tabla %s no existe: %w", table, err)
	}
	return fmt.Errorf("salesdata: consulta de %s: %w", table, err)
}
