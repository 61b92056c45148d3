package domain

import "errors"

// Sentinel errors for the application.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrInvalidInput = errors.New("invalid input")

	// ErrStoreWrite marks a transaction that could not commit. Nothing of the
	// failed write is visible afterwards.
	ErrStoreWrite = errors.New("store write failed")
)
