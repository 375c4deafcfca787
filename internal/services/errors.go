package services

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrLocked       = errors.New("locked")
	ErrRateLimited  = errors.New("rate limited")
)

// ServiceError carries a caller-facing message and unwraps to its kind
type ServiceError struct {
	Kind    error
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...interface{}) error {
	return &ServiceError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...interface{}) error {
	return newError(ErrNotFound, format, args...)
}

func invalid(format string, args ...interface{}) error {
	return newError(ErrValidation, format, args...)
}

func forbidden(format string, args ...interface{}) error {
	return newError(ErrForbidden, format, args...)
}

func unauthorized(format string, args ...interface{}) error {
	return newError(ErrUnauthorized, format, args...)
}
