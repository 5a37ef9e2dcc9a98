package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a failed operation so callers can tell "not your meeting"
// apart from "already decided" or "bad input".
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindForbidden        Kind = "forbidden"
	KindNoTenant         Kind = "no_tenant"
	KindInvalidState     Kind = "invalid_state"
	KindValidationFailed Kind = "validation_failed"
	KindDependencyFailed Kind = "dependency_failed"
)

// Error is the typed failure surfaced by the guard and the lifecycle engine.
// It is always returned, never panicked.
type Error struct {
	Kind    Kind
	Message string
	// FieldErrors carries per-field messages for KindValidationFailed.
	FieldErrors map[string]string
	cause       error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func NoTenant(message string) *Error {
	return &Error{Kind: KindNoTenant, Message: message}
}

func InvalidState(message string) *Error {
	return &Error{Kind: KindInvalidState, Message: message}
}

func Validation(message string, fieldErrors map[string]string) *Error {
	return &Error{Kind: KindValidationFailed, Message: message, FieldErrors: fieldErrors}
}

func Dependency(message string, cause error) *Error {
	return &Error{Kind: KindDependencyFailed, Message: message, cause: cause}
}

// KindOf reports the Kind of err, or "" when err is not a fault.Error.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// IsKind reports whether err is a fault.Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
