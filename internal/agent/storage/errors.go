package storage

import "errors"

// Common agent storage errors
var (
	// ErrEntityNotFound indicates that catalog entity was not found
	ErrEntityNotFound = errors.New("entity not found")

	// ErrConflictNotFound indicates that conflict record was not found
	ErrConflictNotFound = errors.New("conflict not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
