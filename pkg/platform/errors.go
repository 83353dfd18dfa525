package platform

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the platform has no resource for the requested identifier.
	ErrNotFound = errors.New("platform: resource not found")
	// ErrUnauthorized indicates missing or rejected session credentials.
	ErrUnauthorized = errors.New("platform: unauthorized")
	// ErrNetwork indicates the request never produced an HTTP response.
	ErrNetwork = errors.New("platform: network failure")
	// ErrInvalidProblem indicates a problem payload that violates the problem schema.
	ErrInvalidProblem = errors.New("platform: invalid problem payload")
	// ErrEmptyReply indicates the assistant endpoint answered without a message.
	ErrEmptyReply = errors.New("platform: empty assistant reply")
)

// StatusError is returned for non-2xx responses that have no dedicated sentinel.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("platform: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("platform: unexpected status %d: %s", e.StatusCode, e.Message)
}
