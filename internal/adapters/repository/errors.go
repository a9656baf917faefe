package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrStoreClosed   = errors.New("store is closed")
	ErrInvalidConfig = errors.New("invalid store config")
	ErrFixture       = errors.New("invalid fixture")
)

// isNoRows reports whether a pgx query matched nothing.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
