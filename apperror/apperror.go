// Package apperror is the error taxonomy shared by services and handlers.
// Messages are user-facing and returned verbatim to API clients.
package apperror

import (
	"errors"
	"net/http"

	"gorm.io/gorm"
)

type Kind int

const (
	Internal Kind = iota
	NotFound
	Forbidden
	Unauthorized
	InvalidState
	Conflict
	Validation
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	case Unauthorized:
		return "unauthorized"
	case InvalidState:
		return "invalid_state"
	case Conflict:
		return "conflict"
	case Validation:
		return "validation"
	}
	return "internal"
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func NewNotFound(msg string) *Error     { return New(NotFound, msg) }
func NewForbidden(msg string) *Error    { return New(Forbidden, msg) }
func NewUnauthorized(msg string) *Error { return New(Unauthorized, msg) }
func NewInvalidState(msg string) *Error { return New(InvalidState, msg) }
func NewConflict(msg string) *Error     { return New(Conflict, msg) }
func NewValidation(msg string) *Error   { return New(Validation, msg) }

// Wrap marks err as an internal failure with a safe message for clients.
func Wrap(err error, msg string) *Error {
	return &Error{Kind: Internal, Message: msg, Err: err}
}

// From classifies any error. GORM sentinel errors are mapped to their kinds,
// everything unknown is Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: NotFound, Message: "Nie znaleziono", Err: err}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{Kind: Conflict, Message: "Rekord już istnieje", Err: err}
	}
	return Wrap(err, "Internal server error")
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case NotFound:
		return http.StatusNotFound
	case Forbidden:
		return http.StatusForbidden
	case Unauthorized:
		return http.StatusUnauthorized
	case InvalidState:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case Validation:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
