package postgres

import (
	"database/sql"

	"github.com/lib/pq"

	"hermes/pkg/errors"
)

// Postgres error codes we translate into domain errors
const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
)

// mapError translates driver-level errors into pkg/errors sentinels so
// callers can branch with errors.Is instead of inspecting pq internals.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return errors.ErrNotFound
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case codeForeignKeyViolation:
			return errors.Wrap(errors.ErrForeignKey, pqErr.Message)
		case codeUniqueViolation:
			return errors.Wrap(errors.ErrUniqueViolation, pqErr.Message)
		}
	}
	return err
}
