package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies a failure class. Handlers translate kinds to HTTP
// statuses; pipeline stages record them as status/error pairs instead.
type Kind string

const (
	KindNotFound     Kind = "NOT_FOUND"
	KindConflict     Kind = "CONFLICT"
	KindValidation   Kind = "VALIDATION"
	KindPrecondition Kind = "PRECONDITION"
	KindUnsupported  Kind = "UNSUPPORTED"
	KindExtraction   Kind = "EXTRACTION"
	KindAIService    Kind = "AI_SERVICE"
	KindInternal     Kind = "INTERNAL"
)

// Error carries a kind, a human-readable message and an optional cause.
type Error struct {
	kind    Kind
	message string
	cause   error
}

func E(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

func Ef(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{kind: kind, message: message, cause: cause}
}

// NotFound builds the canonical missing-entity error.
func NotFound(resource, id string) *Error {
	return Ef(KindNotFound, "%s with id '%s' not found", resource, id)
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Kind() Kind { return e.kind }

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when the chain carries no typed error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.kind
	}
	return KindInternal
}

// IsKind reports whether err's chain contains an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps an error to the transport status the API layer writes.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindPrecondition:
		return http.StatusConflict
	case KindValidation, KindUnsupported:
		return http.StatusUnprocessableEntity
	case KindAIService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
