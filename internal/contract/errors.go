package contract

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an update targets an id that is not cached.
var ErrNotFound = errors.New("record not found")

// BackendError wraps any I/O failure raised by an adapter.
type BackendError struct {
	Op       string // fetch, create, update or delete
	Resource string
	Err      error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Op, e.Resource, e.Err)
}

// Unwrap exposes the underlying failure to errors.Is and errors.As.
func (e *BackendError) Unwrap() error {
	return e.Err
}

// StatusError is returned by the remote adapter for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}
