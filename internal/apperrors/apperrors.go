// Package apperrors defines the error taxonomy for the wallet pulse service:
// validation, auth, rate limit, network, provider and unknown errors, each
// carrying an HTTP status and a stable code.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/wallet-pulse/internal/types"
)

// Category represents the class of an error
type Category string

const (
	// CategoryValidation represents malformed input (4xx, never retried)
	CategoryValidation Category = "validation"
	// CategoryAuth represents upstream or client auth failures (never retried)
	CategoryAuth Category = "auth"
	// CategoryRateLimit represents upstream 429 responses
	CategoryRateLimit Category = "rate_limit"
	// CategoryNetwork represents unreachable upstream (retried with backoff)
	CategoryNetwork Category = "network"
	// CategoryProvider represents other upstream failures
	CategoryProvider Category = "provider"
	// CategoryDatabase represents relational store failures
	CategoryDatabase Category = "database"
	// CategoryNotFound represents missing resources
	CategoryNotFound Category = "not_found"
	// CategoryUnknown represents anything not otherwise classified
	CategoryUnknown Category = "unknown"
)

// Error is an error with a category, a stable code and an HTTP status
type Error struct {
	Category   Category
	StatusCode int
	Code       string
	Message    string
	Details    map[string]interface{}
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// ToServiceError converts to the wire-level ServiceError
func (e *Error) ToServiceError() *types.ServiceError {
	return &types.ServiceError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
}

// NewValidationError creates a malformed-input error
func NewValidationError(message string, details map[string]interface{}) *Error {
	return &Error{
		Category:   CategoryValidation,
		StatusCode: http.StatusBadRequest,
		Code:       "VALIDATION_ERROR",
		Message:    message,
		Details:    details,
	}
}

// NewInvalidAddressError creates an invalid wallet address error
func NewInvalidAddressError(address string) *Error {
	return &Error{
		Category:   CategoryValidation,
		StatusCode: http.StatusBadRequest,
		Code:       "INVALID_ADDRESS",
		Message:    fmt.Sprintf("invalid wallet address format: %s", address),
		Details:    map[string]interface{}{"address": address},
	}
}

// NewAuthError creates an auth error (upstream rejected the API key, or the
// key is missing entirely)
func NewAuthError(message string) *Error {
	return &Error{
		Category:   CategoryAuth,
		StatusCode: http.StatusUnauthorized,
		Code:       "AUTH_ERROR",
		Message:    message,
	}
}

// NewRateLimitError creates an upstream rate limit error
func NewRateLimitError(provider string) *Error {
	return &Error{
		Category:   CategoryRateLimit,
		StatusCode: http.StatusTooManyRequests,
		Code:       "RATE_LIMIT",
		Message:    fmt.Sprintf("rate limit exceeded: %s", provider),
		Details:    map[string]interface{}{"provider": provider},
	}
}

// NewNetworkError creates an unreachable-upstream error
func NewNetworkError(provider string, cause error) *Error {
	return &Error{
		Category:   CategoryNetwork,
		StatusCode: http.StatusServiceUnavailable,
		Code:       "NETWORK_ERROR",
		Message:    fmt.Sprintf("network error - unable to reach %s", provider),
		Cause:      cause,
	}
}

// NewProviderError creates an upstream provider error carrying the upstream
// HTTP status as its code
func NewProviderError(provider string, statusCode int, message string) *Error {
	return &Error{
		Category:   CategoryProvider,
		StatusCode: statusCode,
		Code:       fmt.Sprintf("%d", statusCode),
		Message:    message,
		Details:    map[string]interface{}{"provider": provider},
	}
}

// NewNotFoundError creates a missing-resource error
func NewNotFoundError(resource, id string) *Error {
	return &Error{
		Category:   CategoryNotFound,
		StatusCode: http.StatusNotFound,
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found: %s", resource, id),
		Details:    map[string]interface{}{"resource": resource, "id": id},
	}
}

// NewDatabaseError creates a relational store error
func NewDatabaseError(operation string, cause error) *Error {
	return &Error{
		Category:   CategoryDatabase,
		StatusCode: http.StatusInternalServerError,
		Code:       "DATABASE_ERROR",
		Message:    fmt.Sprintf("database error during %s", operation),
		Cause:      cause,
		Details:    map[string]interface{}{"operation": operation},
	}
}

// NewUnknownError wraps an unclassified error, preserving the original
// message for diagnostics
func NewUnknownError(cause error) *Error {
	message := "unknown error occurred"
	if cause != nil {
		message = cause.Error()
	}
	return &Error{
		Category:   CategoryUnknown,
		StatusCode: http.StatusInternalServerError,
		Code:       "UNKNOWN_ERROR",
		Message:    message,
		Cause:      cause,
	}
}

// Categorize classifies an arbitrary error, wrapping unclassified ones
func Categorize(err error) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	return NewUnknownError(err)
}

// IsRetryable reports whether an error should trigger a retry. Network and
// transient provider failures (5xx) are retryable; validation, auth and rate
// limit errors are not.
func IsRetryable(err error) bool {
	appErr := Categorize(err)
	if appErr == nil {
		return false
	}

	switch appErr.Category {
	case CategoryNetwork:
		return true
	case CategoryProvider:
		return appErr.StatusCode >= 500
	default:
		return false
	}
}

// IsRateLimited reports whether an error is an upstream rate limit
func IsRateLimited(err error) bool {
	appErr := Categorize(err)
	return appErr != nil && appErr.Category == CategoryRateLimit
}

// HTTPStatusCode returns the HTTP status for an error
func HTTPStatusCode(err error) int {
	if appErr := Categorize(err); appErr != nil {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
