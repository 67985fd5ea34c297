// Package apperr holds the error taxonomy shared by the session manager,
// the entity stores and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

// Codes used across the engine.
const (
	CodeCapabilityUnavailable = "CAPABILITY_UNAVAILABLE"
	CodeUserRejected          = "USER_REJECTED"
	CodeNoSignerAvailable     = "NO_SIGNER_AVAILABLE"
	CodeNetworkSwitchFailed   = "NETWORK_SWITCH_FAILED"
	CodeNotFound              = "NOT_FOUND"
	CodeValidation            = "VALIDATION_ERROR"
	CodeConflict              = "CONFLICT"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeForbidden             = "FORBIDDEN"
	CodeInternal              = "INTERNAL_ERROR"
)

// Sentinels for errors.Is checks.
var (
	ErrCapabilityUnavailable = New(CodeCapabilityUnavailable, "wallet capability unavailable")
	ErrUserRejected          = New(CodeUserRejected, "request rejected by user")
	ErrNoSignerAvailable     = New(CodeNoSignerAvailable, "no signer available")
	ErrNetworkSwitchFailed   = New(CodeNetworkSwitchFailed, "network switch failed")
	ErrNotFound              = New(CodeNotFound, "not found")
)

// Error is a coded application error.
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error carrying the same code, so wrapped sentinels compare
// equal to the bare sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates a coded error.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to cause.
func Wrap(code string, cause error, message string) error {
	if cause == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Cause: cause}
}

// Validation builds a VALIDATION_ERROR with a formatted message.
func Validation(format string, args ...any) error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code of the first *Error in the chain, or INTERNAL_ERROR.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
