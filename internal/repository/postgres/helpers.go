package postgres

import (
	"database/sql"

	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/lib/pq"
)

// isUniqueViolation reports whether the error is a unique constraint breach
func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}

// ensureRowAffected converts a zero-row write into a not-found error
func ensureRowAffected(result sql.Result, entity, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHintf("Failed to verify %s write", entity).
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError(entity + " not found").
			WithHintf("%s with ID %s was not found", entity, id).
			WithReportableDetails(map[string]any{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
