package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

func IsPgUniqueViolation(err error) bool     { return hasCode(err, uniqueViolation) }
func IsPgForeignKeyViolation(err error) bool { return hasCode(err, foreignKeyViolation) }
func IsPgCheckViolation(err error) bool      { return hasCode(err, checkViolation) }

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
