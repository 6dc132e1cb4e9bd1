package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"finman/internal/core"
)

func notFound(what string, id any) error {
	return fmt.Errorf("%w: %s %v", core.ErrNotFound, what, id)
}

// translate maps driver errors onto the domain taxonomy.
func translate(err error, what string, key any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return notFound(what, key)
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %s %v already exists", core.ErrDuplicateResource, what, key)
	default:
		return fmt.Errorf("%s %v: %w", what, key, err)
	}
}
