package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCredentials indicates wrong email/password combination
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNoSession indicates the token store holds no access token
	ErrNoSession = errors.New("no active session")

	// ErrTokenInvalid indicates the access token is malformed
	ErrTokenInvalid = errors.New("token invalid")

	// ErrMissingDependency indicates a required collaborator was not wired
	ErrMissingDependency = errors.New("missing dependency")
)

// StatusFailedDependency means the primary action succeeded but a downstream
// step (typically email delivery) failed.
const StatusFailedDependency = http.StatusFailedDependency

// TransportError is returned when the identity backend could not be reached
// or its response could not be read.
type TransportError struct {
	Op  string
	Err error
}

// Error returns a human-readable error message.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying network error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is(err, &TransportError{}) type matching.
func (e *TransportError) Is(target error) bool {
	_, ok := target.(*TransportError)
	return ok
}

// AuthError is returned when the identity backend answered with a non-success status.
type AuthError struct {
	Status  int
	Message string
}

// Error returns a human-readable error message.
func (e *AuthError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("identity backend returned %d", e.Status)
	}
	return fmt.Sprintf("identity backend returned %d: %s", e.Status, e.Message)
}

// Is allows errors.Is(err, &AuthError{}) type matching.
func (e *AuthError) Is(target error) bool {
	_, ok := target.(*AuthError)
	return ok
}

// IsFailedDependency reports whether the error carries the partial-success status
func (e *AuthError) IsFailedDependency() bool {
	return e.Status == StatusFailedDependency
}

// StatusOf extracts the backend status code from err, if any.
func StatusOf(err error) (int, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Status, true
	}
	return 0, false
}

// IsFailedDependency reports whether err is an AuthError with status 424.
func IsFailedDependency(err error) bool {
	status, ok := StatusOf(err)
	return ok && status == StatusFailedDependency
}
