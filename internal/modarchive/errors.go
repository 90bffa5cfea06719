package modarchive

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport indicates a network or HTTP failure
	ErrTransport = errors.New("transport error")
	// ErrSearchUnparseable indicates the search page no longer has the expected shape
	ErrSearchUnparseable = errors.New("search page could not be parsed")
	// ErrNotFound indicates the id does not map to a module
	ErrNotFound = errors.New("module not found")
	// ErrUnexpectedLayout indicates the detail page deviates from the anchor assumptions
	ErrUnexpectedLayout = errors.New("unexpected page layout")
)

// TransportError describes a failed request. Connection failures, timeouts
// and non-success statuses all end up here.
type TransportError struct {
	URL    string
	Status int // zero when no response was received
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("GET %s: HTTP %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is makes every TransportError match ErrTransport
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// StatusCode returns the HTTP status, if any
func (e *TransportError) StatusCode() int {
	return e.Status
}
