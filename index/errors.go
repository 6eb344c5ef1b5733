package index

import "errors"

var (
	// ErrInvalidVector is returned when a query or entry vector is empty.
	ErrInvalidVector = errors.New("vector must not be empty")
)
