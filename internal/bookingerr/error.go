// Package bookingerr defines the typed error taxonomy the booking core uses
// to communicate failure kinds across package boundaries. The transport
// layer (out of scope here) maps a Kind to an HTTP status; nothing in this
// module matches error messages by substring.
package bookingerr

import (
	"errors"
	"fmt"
)

// Kind classifies a booking-core error. See spec §7.
type Kind int

const (
	// KindInternal covers anything not otherwise classified.
	KindInternal Kind = iota
	KindNotFound
	KindBadRequest
	KindPreconditionFailed
	KindInvalidTransition
	KindConflict
	KindDuplicateKey
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindBadRequest:
		return "BadRequest"
	case KindPreconditionFailed:
		return "PreconditionFailed"
	case KindInvalidTransition:
		return "InvalidTransition"
	case KindConflict:
		return "Conflict"
	case KindDuplicateKey:
		return "DuplicateKey"
	default:
		return "Internal"
	}
}

// ConflictItem describes one booking that blocks a requested interval; it is
// the payload a KindConflict error carries so callers can render the
// human-readable summary from spec §4.2 without re-querying the store.
type ConflictItem struct {
	Kind       string // "CONTRACT" or "RENT_REQUEST"
	ID         string
	Identifier string
	Start      string
	End        string
	Status     string
	ClientName string
}

// Error is the concrete error type every booking-core operation returns.
type Error struct {
	Kind      Kind
	Message   string
	Cause     error
	Conflicts []ConflictItem
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is match on Kind alone, so callers can write
// errors.Is(err, bookingerr.NotFound("")) style comparisons, but the
// idiomatic path is KindOf(err) == bookingerr.KindNotFound.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

func newErr(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func NotFound(format string, args ...any) *Error {
	return newErr(KindNotFound, nil, format, args...)
}

func BadRequest(format string, args ...any) *Error {
	return newErr(KindBadRequest, nil, format, args...)
}

func PreconditionFailed(format string, args ...any) *Error {
	return newErr(KindPreconditionFailed, nil, format, args...)
}

func InvalidTransition(format string, args ...any) *Error {
	return newErr(KindInvalidTransition, nil, format, args...)
}

// Conflict builds a KindConflict error carrying the conflicting bookings.
func Conflict(conflicts []ConflictItem, format string, args ...any) *Error {
	e := newErr(KindConflict, nil, format, args...)
	e.Conflicts = conflicts
	return e
}

func DuplicateKey(cause error, format string, args ...any) *Error {
	return newErr(KindDuplicateKey, cause, format, args...)
}

func Internal(cause error, format string, args ...any) *Error {
	return newErr(KindInternal, cause, format, args...)
}

// KindOf extracts the Kind of err, defaulting to KindInternal for anything
// that isn't a *Error (e.g. a raw driver error that escaped the store).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
