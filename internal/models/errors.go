package models

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure surfaced to a caller unwraps to one of these.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrBadRequest   = errors.New("bad request")
	ErrValidation   = errors.New("validation failed")
)

var ErrInvalidCredentials = Unauthorized("invalid email or password")

// Error is a domain failure with a message that is safe to show to the user.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) error {
	return newError(ErrNotFound, format, args...)
}

func Forbidden(format string, args ...interface{}) error {
	return newError(ErrForbidden, format, args...)
}

func Unauthorized(format string, args ...interface{}) error {
	return newError(ErrUnauthorized, format, args...)
}

func Conflict(format string, args ...interface{}) error {
	return newError(ErrConflict, format, args...)
}

func BadRequest(format string, args ...interface{}) error {
	return newError(ErrBadRequest, format, args...)
}

func Invalid(format string, args ...interface{}) error {
	return newError(ErrValidation, format, args...)
}
