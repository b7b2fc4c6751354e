// Package errors provides standardized API error types.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// APIError represents a standardized API error response.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Details    any    `json:"details,omitempty"`

	cause error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *APIError) Unwrap() error {
	return e.cause
}

// Cause returns the underlying error that produced e, or nil.
func (e *APIError) Cause() error {
	return e.cause
}

// Is matches APIErrors by code so sentinel comparisons survive copies.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.StatusCode == t.StatusCode
}

// WithDetails returns a copy of the error with additional details.
func (e *APIError) WithDetails(details any) *APIError {
	return &APIError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Details:    details,
		cause:      e.cause,
	}
}

// WithMessage returns a copy of the error with a custom message.
func (e *APIError) WithMessage(message string) *APIError {
	return &APIError{
		Code:       e.Code,
		Message:    message,
		StatusCode: e.StatusCode,
		Details:    e.Details,
		cause:      e.cause,
	}
}

// WithCause returns a copy of the error wrapping cause.
func (e *APIError) WithCause(cause error) *APIError {
	return &APIError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Details:    e.Details,
		cause:      cause,
	}
}

// Standard error definitions
var (
	// ErrUnauthorized is returned when authentication is required but missing or invalid.
	ErrUnauthorized = &APIError{
		Code:       "unauthorized",
		Message:    "Authentication required",
		StatusCode: http.StatusUnauthorized,
	}

	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = &APIError{
		Code:       "not_found",
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	// ErrBadRequest is returned when the request body cannot be parsed.
	ErrBadRequest = &APIError{
		Code:       "bad_request",
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	// ErrValidation is returned when a well-formed request fails validation.
	ErrValidation = &APIError{
		Code:       "validation_error",
		Message:    "One or more fields failed validation",
		StatusCode: http.StatusUnprocessableEntity,
	}

	// ErrRateLimited is returned when rate limits are exceeded.
	ErrRateLimited = &APIError{
		Code:       "rate_limited",
		Message:    "Too many requests. Please try again later.",
		StatusCode: http.StatusTooManyRequests,
	}

	// ErrInternal is returned for unexpected server errors.
	ErrInternal = &APIError{
		Code:       "internal_error",
		Message:    "An internal error occurred",
		StatusCode: http.StatusInternalServerError,
	}

	// ErrDatabase is returned when a storage operation fails.
	ErrDatabase = &APIError{
		Code:       "database_error",
		Message:    "A database error occurred",
		StatusCode: http.StatusInternalServerError,
	}

	// ErrExternalService is returned when an upstream provider call fails.
	ErrExternalService = &APIError{
		Code:       "external_service_error",
		Message:    "An external service failed",
		StatusCode: http.StatusBadGateway,
	}

	// ErrConflict is returned when a resource already exists.
	ErrConflict = &APIError{
		Code:       "conflict",
		Message:    "Resource already exists",
		StatusCode: http.StatusConflict,
	}

	// ErrServiceUnavailable is returned when a dependent service is unavailable.
	ErrServiceUnavailable = &APIError{
		Code:       "service_unavailable",
		Message:    "Service temporarily unavailable",
		StatusCode: http.StatusServiceUnavailable,
	}
)

// NewValidationError creates a validation error for a specific field.
func NewValidationError(field, message string) *APIError {
	return &APIError{
		Code:       "validation_error",
		Message:    fmt.Sprintf("Validation failed: %s", message),
		StatusCode: http.StatusUnprocessableEntity,
		Details: map[string]string{
			"field": field,
			"error": message,
		},
	}
}

// NewValidationErrors creates a validation error with multiple field errors.
func NewValidationErrors(errors map[string]string) *APIError {
	return ErrValidation.WithDetails(errors)
}

// NewBadRequestError creates a bad request error for an unparseable body.
func NewBadRequestError(message string) *APIError {
	return ErrBadRequest.WithMessage(message)
}

// NewNotFoundError creates a not found error for a specific resource type.
func NewNotFoundError(resource string) *APIError {
	return ErrNotFound.WithMessage(fmt.Sprintf("%s not found", resource))
}

// NewConflictError creates a conflict error with a custom message.
func NewConflictError(message string) *APIError {
	return ErrConflict.WithMessage(message)
}

// NewDatabaseError wraps a storage failure.
func NewDatabaseError(cause error) *APIError {
	return ErrDatabase.WithCause(cause)
}

// NewExternalServiceError wraps a failure of the named upstream service.
func NewExternalServiceError(service string, cause error) *APIError {
	return ErrExternalService.
		WithMessage(fmt.Sprintf("%s request failed", service)).
		WithCause(cause)
}

// AsAPIError converts an error to an APIError if possible.
// Unknown errors become an internal error that keeps err as its cause.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}
	return ErrInternal.WithCause(err)
}
