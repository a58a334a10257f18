// Package errors defines the error taxonomy shared by the proxy and the
// library accumulator.
package errors

import (
	stdErrors "errors"
	"fmt"
)

// ValidationError is returned when required caller input is missing or malformed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// UpstreamError represents a non-2xx answer or a network failure from an external API.
type UpstreamError struct {
	Service    string
	StatusCode int // 0 for transport failures
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode == 0:
		return fmt.Sprintf("%s request failed: %v", e.Service, e.Err)
	case e.Body != "":
		return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("%s returned status %d", e.Service, e.StatusCode)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamStatusError creates an UpstreamError for a non-2xx response.
func NewUpstreamStatusError(service string, statusCode int, body string) *UpstreamError {
	return &UpstreamError{Service: service, StatusCode: statusCode, Body: body}
}

// NewUpstreamTransportError creates an UpstreamError for a failed round trip.
func NewUpstreamTransportError(service string, err error) *UpstreamError {
	return &UpstreamError{Service: service, Err: err}
}

// NotFoundError means the Steam ID is unknown or its game library is not visible.
type NotFoundError struct {
	SteamID string
	Message string
}

func (e *NotFoundError) Error() string {
	if e.SteamID == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (steam id %s)", e.Message, e.SteamID)
}

// NewNotFoundError creates a NotFoundError for the given Steam ID.
func NewNotFoundError(steamID, message string) *NotFoundError {
	if message == "" {
		message = "No games found for this Steam ID"
	}
	return &NotFoundError{SteamID: steamID, Message: message}
}

// UnexpectedError wraps anything that does not fit the other classes.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected error: %v", e.Err)
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

// NewUnexpectedError wraps err as an UnexpectedError.
func NewUnexpectedError(err error) *UnexpectedError {
	return &UnexpectedError{Err: err}
}

// IsValidationError checks if err is a ValidationError
func IsValidationError(err error) bool {
	var target *ValidationError
	return stdErrors.As(err, &target)
}

// IsUpstreamError checks if err is an UpstreamError
func IsUpstreamError(err error) bool {
	var target *UpstreamError
	return stdErrors.As(err, &target)
}

// IsNotFoundError reports whether err belongs to the not-found class: an
// explicit NotFoundError or a SteamProfileError caused by a private profile.
func IsNotFoundError(err error) bool {
	var target *NotFoundError
	if stdErrors.As(err, &target) {
		return true
	}
	var profileErr *SteamProfileError
	return stdErrors.As(err, &profileErr) && profileErr.Private()
}
