// Package errors defines the structured error types used across the Passlock
// security core. Every error carries an application code and an HTTP status so
// the outer service can map failures without inspecting messages.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/passlock/passlock/pkg/constants"
)

// AppError is a structured application error.
type AppError struct {
	code       constants.ErrorCode
	httpStatus int
	message    string
	cause      error
	metadata   map[string]interface{}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code returns the application error code.
func (e *AppError) Code() constants.ErrorCode {
	return e.code
}

// HTTPStatus returns the HTTP status this error maps to.
func (e *AppError) HTTPStatus() int {
	return e.httpStatus
}

// Unwrap returns the underlying cause for errors.Is / errors.As chains.
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause attaches an underlying error to the chain.
func (e *AppError) WithCause(cause error) *AppError {
	e.cause = cause
	return e
}

// WithMetadata attaches contextual metadata to the error.
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

// Metadata returns all metadata attached to the error.
func (e *AppError) Metadata() map[string]interface{} {
	return e.metadata
}

// NewError creates an AppError with the given code, status, and message.
func NewError(code constants.ErrorCode, httpStatus int, message string) *AppError {
	return &AppError{
		code:       code,
		httpStatus: httpStatus,
		message:    message,
	}
}

// ================================================================================
// Predefined Error Constructors
// ================================================================================

// ErrInvalidRequest creates an invalid_request error.
func ErrInvalidRequest(message string) *AppError {
	return NewError(constants.ErrCodeInvalidRequest, http.StatusBadRequest, message)
}

// ErrServerError creates a server_error error.
func ErrServerError(message string) *AppError {
	return NewError(constants.ErrCodeServerError, http.StatusInternalServerError, message)
}

// ErrRateLimitExceeded creates a rate_limit_exceeded error carrying the
// operation, the budget, and a retry-after hint.
func ErrRateLimitExceeded(operation string, limit int, retryAfter time.Duration) *AppError {
	return NewError(
		constants.ErrCodeRateLimitExceeded,
		http.StatusTooManyRequests,
		fmt.Sprintf("rate limit exceeded for operation %q", operation),
	).
		WithMetadata("operation", operation).
		WithMetadata("limit", limit).
		WithMetadata("retry_after_seconds", int(retryAfter.Seconds()))
}

// ErrCryptoFailure creates the single opaque crypto error. The message is
// fixed on purpose: distinguishing salt, key, or ciphertext problems would
// hand an attacker a decryption oracle.
func ErrCryptoFailure() *AppError {
	return NewError(
		constants.ErrCodeCryptoFailure,
		http.StatusUnauthorized,
		"cryptographic operation failed",
	)
}

// ErrBackendUnavailable creates a backend_unavailable error. It is consumed
// inside the rate limiter to trigger failover and never reaches callers of
// IsAllowed.
func ErrBackendUnavailable(reason string) *AppError {
	return NewError(
		constants.ErrCodeBackendUnavailable,
		http.StatusServiceUnavailable,
		fmt.Sprintf("counter backend unavailable: %s", reason),
	)
}

// ================================================================================
// Inspection Helpers
// ================================================================================

// IsCode reports whether err (or anything it wraps) is an AppError with the
// given code.
func IsCode(err error, code constants.ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.code == code
	}
	return false
}

// IsRateLimitExceeded reports whether err is a rate-limit rejection.
func IsRateLimitExceeded(err error) bool {
	return IsCode(err, constants.ErrCodeRateLimitExceeded)
}

// IsCryptoFailure reports whether err is a crypto failure.
func IsCryptoFailure(err error) bool {
	return IsCode(err, constants.ErrCodeCryptoFailure)
}
