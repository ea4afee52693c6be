// Package apierr defines the typed failure kinds raised by the registry and
// access layers and converted to HTTP outcomes at the dispatch and admin
// boundaries. Gone is deliberately distinct from NotFound so clients can
// tell "expired" apart from "never existed".
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind int

const (
	// KindInternal is the zero value: an unexpected fault whose detail is
	// logged internally and never shown to callers.
	KindInternal Kind = iota
	KindNotFound
	KindInvalidArgument
	KindPermissionDenied
	KindGone
	KindUnauthorized
	KindConflict
)

// Error carries a failure kind and a caller-safe message. The wrapped cause,
// when present, is for server-side logs only.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New creates an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a kinded error. The message stays caller-safe;
// the cause surfaces only through Unwrap/logging.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

func InvalidArgument(format string, args ...any) *Error {
	return New(KindInvalidArgument, format, args...)
}

func PermissionDenied(format string, args ...any) *Error {
	return New(KindPermissionDenied, format, args...)
}

func Gone(format string, args ...any) *Error {
	return New(KindGone, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return New(KindUnauthorized, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return New(KindConflict, format, args...)
}

func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", cause: cause}
}

// KindOf returns the Kind of err, or KindInternal for any error that does
// not carry one. Failing closed to Internal keeps unexpected faults generic
// at the boundaries.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Message returns the caller-safe message for err. Errors without a kind are
// masked with a generic message.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

// HTTPStatus maps a failure kind to its response status.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindPermissionDenied:
		return http.StatusForbidden
	case KindGone:
		return http.StatusGone
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
