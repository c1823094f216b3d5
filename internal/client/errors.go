package client

import (
	"errors"
	"fmt"
)

// ErrResponseTooLarge is returned when a response body exceeds the configured
// cap. It is never retried.
var ErrResponseTooLarge = errors.New("response body is too large")

// ErrRemoteStatus is returned when an XML-RPC reply carries a status other than 200.
type ErrRemoteStatus struct {
	Method string
	Status string
}

// Error implements the error interface
func (e *ErrRemoteStatus) Error() string {
	return fmt.Sprintf("%s: unexpected reply status %q", e.Method, e.Status)
}

// Is allows for error checking with errors.Is()
func (e *ErrRemoteStatus) Is(target error) bool {
	_, ok := target.(*ErrRemoteStatus)
	return ok
}
