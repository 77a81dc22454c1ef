package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation detecta el código SQLSTATE 23505 (unique_violation) para
// traducirlo a domain.ErrDuplicate en los repositorios. El fallback por texto
// cubre errores envueltos por capas que no preservan *pgconn.PgError.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "23505")
}
