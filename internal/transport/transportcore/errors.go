package transportcore

import (
	"errors"
)

// Sentinel errors for transport operations.
var (
	// ErrInvalidID indicates a path id that is not a positive integer.
	ErrInvalidID = errors.New("invalid drink id")

	// ErrServerClosed indicates the server has been closed and cannot accept requests.
	ErrServerClosed = errors.New("server closed")
)
