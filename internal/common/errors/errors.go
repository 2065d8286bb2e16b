// Package errors provides standardized error handling for the dashboard HTTP surface.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeFetchFailed       ErrorCode = "FETCH_FAILED"
	ErrCodeRefreshInProgress ErrorCode = "REFRESH_IN_PROGRESS"
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"

	ErrCodeUnauthenticated ErrorCode = "UNAUTHENTICATED"
	ErrCodeForbidden       ErrorCode = "FORBIDDEN"
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeRateLimited     ErrorCode = "RATE_LIMITED"

	ErrCodeDatabaseUpdateFailed ErrorCode = "DATABASE_UPDATE_FAILED"
	ErrCodeEmailSendFailed      ErrorCode = "EMAIL_SEND_FAILED"
	ErrCodeCacheFailed          ErrorCode = "CACHE_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// Status returns the HTTP status the error maps to.
func (e *StandardError) Status() int {
	return HTTPStatus(e.Code)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewFetchFailedError collapses transport, status and decode failures of
// the partner webhook into one error.
func NewFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFetchFailed,
		Message:   "Failed to fetch partner data from the webhook",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewRefreshInProgressError() *StandardError {
	return &StandardError{
		Code:      ErrCodeRefreshInProgress,
		Message:   "A partner refresh is already running",
		Timestamp: time.Now().UTC(),
	}
}

func NewNotFoundError(what, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", what),
		Details:   id,
		Timestamp: time.Now().UTC(),
	}
}

func NewUnauthenticatedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnauthenticated,
		Message:   "The caller could not be authenticated",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

func NewForbiddenError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeForbidden,
		Message:   "The caller is not allowed to perform this action",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid input",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

func NewRateLimitedError(retryAfter time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimited,
		Message:   "Too many requests",
		Details:   fmt.Sprintf("retry after %s", retryAfter.Round(time.Second)),
		Metadata:  map[string]interface{}{"retryAfterSeconds": int(retryAfter.Seconds())},
		Timestamp: time.Now().UTC(),
	}
}

func NewDatabaseUpdateFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseUpdateFailed,
		Message:   "Failed to persist the verification code",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewEmailSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmailSendFailed,
		Message:   "Failed to deliver the verification email",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewCacheFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheFailed,
		Message:   "Cache operation failed",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal server error",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// HTTPStatus maps an error code to its HTTP status.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidInput:
		return http.StatusBadRequest
	case ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeRefreshInProgress:
		return http.StatusConflict
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeFetchFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// AsStandard extracts a StandardError from err, wrapping anything else as
// INTERNAL_ERROR.
func AsStandard(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return stderrors.As(err, &stdErr) && stdErr.Code == code
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeUnauthenticated, ErrCodeForbidden:
		return "AUTH"
	case ErrCodeInvalidInput, ErrCodeNotFound:
		return "CLIENT"
	case ErrCodeRateLimited, ErrCodeRefreshInProgress:
		return "THROTTLE"
	case ErrCodeFetchFailed, ErrCodeEmailSendFailed:
		return "UPSTREAM"
	case ErrCodeDatabaseUpdateFailed, ErrCodeCacheFailed:
		return "STORAGE"
	default:
		return "INTERNAL"
	}
}
