package domain

import (
	"errors"
	"fmt"
)

// DomainError is a business error carrying a structured code.
// Codes have the form PY-<AREA>-<NNNN>; the last three digits of the
// numeric part mirror the HTTP status the transport layer reports.
type DomainError struct {
	Code    string // Error code (e.g., "PY-PET-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true // Only check if it's a DomainError
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// User errors.
var (
	// ErrUserNotFound indicates no user has the requested id.
	ErrUserNotFound = NewDomainError("PY-USER-4040", "user not found")

	// ErrUsernameConflict indicates the username is already registered.
	ErrUsernameConflict = NewDomainError("PY-USER-4090", "username already exists")

	// ErrUserValidation indicates user fields failed validation.
	ErrUserValidation = NewDomainError("PY-USER-4001", "user validation failed")
)

// Pet errors.
var (
	ErrPetNotFound   = NewDomainError("PY-PET-4040", "pet not found")
	ErrPetValidation = NewDomainError("PY-PET-4001", "pet validation failed")
)

// Yard errors.
var (
	ErrYardNotFound   = NewDomainError("PY-YARD-4040", "pet yard not found")
	ErrYardValidation = NewDomainError("PY-YARD-4001", "pet yard validation failed")
)

// Authentication errors.
var (
	// ErrUnauthorized is returned for every credential or token failure.
	// Callers must not be able to tell an unknown user from a wrong password.
	ErrUnauthorized = NewDomainError("PY-AUTH-4010", "unauthorized")

	// ErrTokenInvalid indicates the session token is absent or unknown.
	ErrTokenInvalid = NewDomainError("PY-AUTH-4011", "invalid token")

	// ErrForbidden indicates the caller is authenticated but does not own the resource.
	ErrForbidden = NewDomainError("PY-AUTH-4030", "permission denied")
)

// Message errors.
var (
	// ErrDecrypt indicates a sealed payload failed to open.
	ErrDecrypt = NewDomainError("PY-MSG-4220", "payload decryption failed")
)

// System errors.
var (
	ErrInternalServer     = NewDomainError("PY-SYS-5000", "internal server error")
	ErrStorageError       = NewDomainError("PY-SYS-5001", "storage error")
	ErrServiceUnavailable = NewDomainError("PY-SYS-5030", "service unavailable")
	ErrBadRequest         = NewDomainError("PY-SYS-4000", "bad request")
	ErrRateLimited        = NewDomainError("PY-SYS-4290", "too many requests")
)

// Argument errors.
var (
	ErrInvalidArgument = NewDomainError("PY-ARG-1001", "invalid argument")
	ErrMissingArgument = NewDomainError("PY-ARG-1002", "missing required argument")
)
