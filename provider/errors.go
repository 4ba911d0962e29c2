package provider

import (
	"errors"
	"fmt"
)

// Sentinel errors for provider operations.
var (
	// ErrInvalidConfig indicates invalid provider configuration.
	ErrInvalidConfig = errors.New("invalid provider configuration")

	// ErrUnknownKind indicates Config.Kind names no provider variant.
	ErrUnknownKind = errors.New("unknown provider kind")

	// ErrTransport indicates the completion service could not be reached or
	// its response could not be read.
	ErrTransport = errors.New("provider transport error")

	// ErrAPI indicates the completion service answered with an error.
	ErrAPI = errors.New("provider API error")

	// ErrEmptyResponse indicates a successful response without any choice.
	ErrEmptyResponse = errors.New("provider returned no choices")
)

// TransportError is returned when a request fails before a usable response
// arrives: connection failures, timeouts, and undecodable bodies.
type TransportError struct {
	Op  string
	URL string
	Err error
}

// Error returns a formatted error message.
func (e *TransportError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("provider: %s %s: %v", e.Op, e.URL, e.Err)
	}
	return fmt.Sprintf("provider: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// APIError is returned when the completion service responds with an error
// status or an unusable success body.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Type is the provider error type (e.g. "invalid_request_error").
	Type string

	// Code is the provider error code (e.g. "context_length_exceeded").
	Code string

	// Message is the human-readable error description.
	Message string

	// Err is set when the error did not come from an error body.
	Err error
}

// Error returns a formatted error message.
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Type != "" {
		return fmt.Sprintf("provider: HTTP %d: %s: %s", e.StatusCode, e.Type, msg)
	}
	return fmt.Sprintf("provider: HTTP %d: %s", e.StatusCode, msg)
}

// Unwrap returns the underlying error.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrAPI.
func (e *APIError) Is(target error) bool {
	return target == ErrAPI
}

// IsRateLimited returns true if the error is a rate limit response (HTTP 429).
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// IsRetryable reports whether a later identical request may succeed.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
