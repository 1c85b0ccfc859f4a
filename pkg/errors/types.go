package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a structured error code
type ErrorCode string

const (
	// Speech synthesis provider errors
	ErrCodeAuth                 ErrorCode = "AUTH_ERROR"
	ErrCodeQuota                ErrorCode = "QUOTA_ERROR"
	ErrCodeNetwork              ErrorCode = "NETWORK_ERROR"
	ErrCodeSynthesisUnavailable ErrorCode = "SYNTHESIS_UNAVAILABLE"

	// Local resource errors
	ErrCodeSubprocess  ErrorCode = "SUBPROCESS_ERROR"
	ErrCodeFile        ErrorCode = "FILE_ERROR"
	ErrCodeLockTimeout ErrorCode = "LOCK_TIMEOUT"
	ErrCodeIntegrity   ErrorCode = "INTEGRITY_WARNING"

	// Request errors
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"
	ErrCodeValidation ErrorCode = "VALIDATION"

	// Configuration errors
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"

	ErrCodeInternal ErrorCode = "INTERNAL"
)

// AppError represents a structured application error
type AppError struct {
	Code     ErrorCode              `json:"code"`
	Message  string                 `json:"message"`
	Details  map[string]interface{} `json:"details,omitempty"`
	Cause    error                  `json:"-"`
	HTTPCode int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying cause
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// GetHTTPCode returns the appropriate HTTP status code
func (e *AppError) GetHTTPCode() int {
	if e.HTTPCode != 0 {
		return e.HTTPCode
	}
	return getDefaultHTTPCode(e.Code)
}

// Retryable reports whether the failure is transient and worth retrying later.
func (e *AppError) Retryable() bool {
	switch e.Code {
	case ErrCodeQuota, ErrCodeNetwork, ErrCodeLockTimeout:
		return true
	default:
		return false
	}
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		HTTPCode: getDefaultHTTPCode(code),
	}
}

// Newf creates a new AppError with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		HTTPCode: getDefaultHTTPCode(code),
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(cause error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Cause:    cause,
		HTTPCode: getDefaultHTTPCode(code),
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(cause error, code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Cause:    cause,
		HTTPCode: getDefaultHTTPCode(code),
	}
}

// getDefaultHTTPCode returns the default HTTP status code for an error code
func getDefaultHTTPCode(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeAuth, ErrCodeNetwork, ErrCodeSubprocess:
		return http.StatusBadGateway
	case ErrCodeQuota:
		return http.StatusTooManyRequests
	case ErrCodeLockTimeout, ErrCodeSynthesisUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeIntegrity:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Common error constructors

// NotFound creates a not found error
func NotFound(resource string, id interface{}) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

// ValidationError creates a validation error
func ValidationError(field string, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

// ConfigError creates a configuration error
func ConfigError(key string, reason string) *AppError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("configuration error for '%s': %s", key, reason)).
		WithDetail("key", key).
		WithDetail("reason", reason)
}

// FileError wraps a filesystem failure on an audio or metadata file.
func FileError(operation, path string, cause error) *AppError {
	return Wrap(cause, ErrCodeFile, fmt.Sprintf("file %s failed for %s", operation, path)).
		WithDetail("operation", operation).
		WithDetail("path", path)
}

// SubprocessError wraps a failed external tool invocation.
func SubprocessError(tool string, cause error) *AppError {
	return Wrap(cause, ErrCodeSubprocess, fmt.Sprintf("%s failed", tool)).
		WithDetail("tool", tool)
}

// LockTimeout reports that a writer could not acquire the store lock.
func LockTimeout(lockPath string, attempts int) *AppError {
	return New(ErrCodeLockTimeout, fmt.Sprintf("could not acquire lock after %d attempts", attempts)).
		WithDetail("lock", lockPath).
		WithDetail("attempts", attempts)
}

// Unavailable reports that the speech synthesis capability is not configured.
func Unavailable(reason string) *AppError {
	return New(ErrCodeSynthesisUnavailable, fmt.Sprintf("speech synthesis is not available: %s", reason))
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is checks if an error is of a specific type
func Is(err error, code ErrorCode) bool {
	if appErr, ok := As(err); ok {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

// GetHTTPCode extracts the HTTP status code from an error
func GetHTTPCode(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.GetHTTPCode()
	}
	return http.StatusInternalServerError
}

// Retryable reports whether err carries a transient error code.
func Retryable(err error) bool {
	if appErr, ok := As(err); ok {
		return appErr.Retryable()
	}
	return false
}
