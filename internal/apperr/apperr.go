// Package apperr defines the application error taxonomy. Handlers map
// these to HTTP statuses in one place; everything below the HTTP layer
// returns plain errors that wrap one of these kinds.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopkit/storefront/internal/store"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindInvalidState
	KindUnavailable
)

type Error struct {
	Kind    Kind
	Message string   // short machine-ish label, e.g. "Product not found"
	Detail  string   // optional human explanation
	Details []string // field-level violations (validation only)
	Err     error    // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status maps the kind to its HTTP status. Conflict and InvalidState
// both surface as 400, matching the wire contract.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation, KindConflict, KindInvalidState:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Validation(details ...string) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Details: details}
}

// InvalidID covers malformed ObjectID hex in paths and bodies.
func InvalidID() *Error {
	return &Error{Kind: KindValidation, Message: "Invalid ID format"}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(detail string) *Error {
	return &Error{Kind: KindForbidden, Message: "Access denied", Detail: detail}
}

func Unauthenticated(message, detail string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message, Detail: detail}
}

func Conflict(message, detail string) *Error {
	return &Error{Kind: KindConflict, Message: message, Detail: detail}
}

func InvalidState(message string) *Error {
	return &Error{Kind: KindInvalidState, Message: message}
}

func Unavailable(err error) *Error {
	return &Error{
		Kind:    KindUnavailable,
		Message: "Database unavailable",
		Detail:  "The data store is not reachable. Please try again later.",
		Err:     err,
	}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error", Err: err}
}

// From extracts the typed error from err, wrapping anything else as
// internal so callers always get a classified error back.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// FromStore maps persistence sentinels onto the taxonomy, substituting
// the entity-specific not-found error. Every layer that reads through a
// store funnels its errors here so the mapping cannot drift.
func FromStore(err error, notFound *Error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return notFound
	case errors.Is(err, store.ErrUnavailable):
		return Unavailable(err)
	default:
		return Internal(err)
	}
}
