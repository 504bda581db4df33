package postgres

import (
	"database/sql"
	"errors"
)

// isNotFound reports whether a query error means the row does not
// exist, so repositories can surface a miss instead of an error.
func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
