package persistence

import (
	"database/sql"
	"errors"
)

// Common persistence errors
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
