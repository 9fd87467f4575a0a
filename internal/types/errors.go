package types

import (
	"errors"
	"fmt"
)

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Error code constants. Components MUST use these constants instead of
// hardcoded strings so callers can branch on failure class.
const (
	// Validation
	ErrCodeValidationMissingField ErrorCode = "validation_missing_required_field"
	ErrCodeValidationInvalidCity  ErrorCode = "validation_invalid_city"

	// Not Found
	ErrCodeNotFoundUser ErrorCode = "not_found_user"
	ErrCodeNotFoundCity ErrorCode = "not_found_city"

	// Upstream collaborators
	ErrCodeUpstreamGeocoding ErrorCode = "upstream_geocoding_unavailable"
	ErrCodeUpstreamForecast  ErrorCode = "upstream_forecast_unavailable"
	ErrCodeUpstreamTelegram  ErrorCode = "upstream_telegram_unavailable"
	ErrCodeUpstreamRateLimit ErrorCode = "upstream_rate_limited"

	// Internal
	ErrCodeInternalDB         ErrorCode = "internal_database_error"
	ErrCodeInternalUnexpected ErrorCode = "internal_unexpected_error"
)

// AppError is the standard application error carrying a machine-readable
// code, a human-readable message, and an optional wrapped cause.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// NewAppError constructs an AppError wrapping the given cause (which may be nil).
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/errors.As chains.
func (e *AppError) Unwrap() error {
	return e.Err
}

// IsCode reports whether err is (or wraps) an AppError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
