package types

import (
	"errors"
	"fmt"
)

// Kind classifies policy errors so that integrating callers can branch
// deterministically instead of matching on message text.
type Kind string

const (
	// KindConfiguration indicates an invalid policy configuration detected at
	// creation time, before any instance exists.
	KindConfiguration Kind = "configuration"

	// KindAuthorization indicates the caller is not an authorized executor or
	// approver for the operation.
	KindAuthorization Kind = "authorization"

	// KindWindow indicates the operation falls outside the policy validity
	// window or past the transaction deadline.
	KindWindow Kind = "window"

	// KindUsageExceeded indicates the count or amount ceiling would be
	// breached.
	KindUsageExceeded Kind = "usageExceeded"

	// KindPayload indicates a malformed or out-of-policy instruction.
	KindPayload Kind = "payload"

	// KindState indicates the operation is invalid for the transaction's
	// current lifecycle state.
	KindState Kind = "state"

	// KindClaim indicates a double claim or voucher verification failure.
	KindClaim Kind = "claim"

	// KindNotFound indicates the referenced policy instance or transaction
	// does not exist.
	KindNotFound Kind = "notFound"
)

// Per-kind sentinels enable errors.Is matching regardless of the wrapped
// detail message.
var (
	ErrConfiguration = &Error{kind: KindConfiguration}
	ErrAuthorization = &Error{kind: KindAuthorization}
	ErrWindow        = &Error{kind: KindWindow}
	ErrUsageExceeded = &Error{kind: KindUsageExceeded}
	ErrPayload       = &Error{kind: KindPayload}
	ErrState         = &Error{kind: KindState}
	ErrClaim         = &Error{kind: KindClaim}
	ErrNotFound      = &Error{kind: KindNotFound}
)

// Error is a policy error with a classification kind. All errors surfaced by
// this module are synchronous and non-retryable; the caller resubmits a
// corrected request.
type Error struct {
	kind    Kind
	message string
	cause   error
}

// NewError creates a classified error.
func NewError(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

// NewErrorf creates a classified error with a formatted message.
func NewErrorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

// WrapError attaches a kind to an underlying cause.
func WrapError(kind Kind, message string, cause error) *Error {
	return &Error{kind: kind, message: message, cause: cause}
}

// Kind returns the error classification.
func (e *Error) Kind() Kind { return e.kind }

func (e *Error) Error() string {
	switch {
	case e.message == "" && e.cause == nil:
		return string(e.kind)
	case e.cause == nil:
		return fmt.Sprintf("%v: %v", e.kind, e.message)
	case e.message == "":
		return fmt.Sprintf("%v: %v", e.kind, e.cause)
	}
	return fmt.Sprintf("%v: %v: %v", e.kind, e.message, e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches a *Error target of the same kind. A bare kind sentinel (empty
// message) matches every error of that kind; a sentinel with a message
// additionally requires the message to match, so packages can export
// distinguishable errors within one kind.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.kind != other.kind {
		return false
	}
	return other.message == "" || other.message == e.message
}

// KindOf extracts the kind from err, or "" when err carries none.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind()
	}
	return ""
}
