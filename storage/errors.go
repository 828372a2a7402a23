package storage

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// DuplicateError reports a unique constraint violation on Field.
type DuplicateError struct {
	Field string
	Err   error
}

func (e *DuplicateError) Error() string {
	return "duplicate value for " + e.Field + ": " + e.Err.Error()
}

func (e *DuplicateError) Unwrap() error { return e.Err }

// classifyUnique turns a driver unique violation on users into a
// DuplicateError. Other errors are returned unchanged.
func classifyUnique(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return &DuplicateError{Field: uniqueField(pqErr.Constraint + " " + pqErr.Detail), Err: err}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return &DuplicateError{Field: uniqueField(liteErr.Error()), Err: err}
	}

	return err
}

func uniqueField(msg string) string {
	switch {
	case strings.Contains(msg, "username"):
		return "username"
	case strings.Contains(msg, "email"):
		return "email"
	}
	return "unknown"
}
