package core

import "errors"

// Common errors.
var (
	ErrNotFound    = errors.New("key not found")
	ErrUnavailable = errors.New("storage medium unavailable")
	ErrReadOnly    = errors.New("storage medium is read-only")
	ErrNoHistory   = errors.New("storage medium keeps no history")
)
