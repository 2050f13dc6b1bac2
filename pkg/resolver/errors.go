package resolver

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedStatus marks a non-2xx response from a values endpoint.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrSuperseded is returned by Debouncer when a newer search for the same
	// endpoint replaced a pending one.
	ErrSuperseded = errors.New("superseded by a newer search")
)

// ResolverError reports that the options of a remote endpoint could not be
// loaded. It is never a validation failure.
type ResolverError struct {
	URI    string
	Status int // 0 when no response was received
	Err    error
}

func (e *ResolverError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("resolving values from %s: status %d: %v", e.URI, e.Status, e.Err)
	}
	return fmt.Sprintf("resolving values from %s: %v", e.URI, e.Err)
}

func (e *ResolverError) Unwrap() error {
	return e.Err
}
