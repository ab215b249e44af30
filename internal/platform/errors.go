package platform

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated is returned when an operation requires an access
// token and none is present. No network call is made in that case.
var ErrNotAuthenticated = errors.New("not authenticated")

// Error represents a failure in a platform API operation.
type Error struct {
	// Op is the operation that failed (e.g., "request", "refresh", "login")
	Op string

	// Err is the underlying error
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("platform %s: %v", e.Op, e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *Error) Unwrap() error {
	return e.Err
}
