package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist. A 404
	// TransportError matches it.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSyncInProgress indicates a sync pass is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// Authentication Errors.

	// ErrMissingCredentials indicates one or more credential fields are empty.
	ErrMissingCredentials = errors.New("missing required settings")

	// ErrAuthInvalid indicates the server rejected the credentials even after
	// re-authenticating.
	ErrAuthInvalid = errors.New("authentication invalid")
)

// ConfigError reports missing or invalid credentials. It is raised before any
// network call and is never retried.
type ConfigError struct {
	// Field is the settings key that is missing or invalid.
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s is empty", ErrMissingCredentials, e.Field)
}

// Unwrap allows errors.Is(err, ErrMissingCredentials).
func (e *ConfigError) Unwrap() error {
	return ErrMissingCredentials
}

// NetworkError reports a connection-level failure (DNS, TLS, timeout,
// cancellation). The request never produced an HTTP status.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// TransportError reports a response whose status is outside 2xx.
type TransportError struct {
	Status int
	Body   string
}

func (e *TransportError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, body)
}

// Is lets errors.Is(err, ErrNotFound) match a 404 response.
func (e *TransportError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// IsUnauthorized reports whether the server answered 401.
func (e *TransportError) IsUnauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// AuthError is the terminal authentication failure surfaced after the single
// re-authentication retry was also rejected.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %v", ErrAuthInvalid, e.Err)
}

func (e *AuthError) Unwrap() []error {
	return []error{ErrAuthInvalid, e.Err}
}

// IsUnauthorized checks if the error is a 401 transport error.
func IsUnauthorized(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return te.IsUnauthorized()
	}
	return false
}

// IsNetwork checks if the error is a connection-level failure.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Status
	}
	return 0
}
