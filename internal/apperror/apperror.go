// Package apperror defines the error taxonomy shared by every layer.
// Services return these; the HTTP layer maps them to status codes with
// errors.Is/errors.As and never invents its own categories.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrDuplicate          = errors.New("duplicate")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInsufficientPoints = errors.New("insufficient points")
)

// AppError carries a sentinel plus a human-readable message. Field is set
// for validation and duplicate errors so the form layer can highlight the
// offending input.
type AppError struct {
	Err     error
	Message string
	Field   string
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string, id int64) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %d", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Duplicate reports a uniqueness violation on the named field.
// Registration surfaces this distinctly from a generic failure so the
// caller can tell "username taken" apart from "something broke".
func Duplicate(field string) *AppError {
	return &AppError{
		Err:     ErrDuplicate,
		Message: fmt.Sprintf("%s is already taken", field),
		Field:   field,
	}
}

// Unauthorized is the uniform authentication failure. It deliberately does
// not say whether the username or the password was wrong.
func Unauthorized() *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: "invalid credentials",
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Conflict reports an operation that cannot apply to the current state,
// such as moving a collection's status backward.
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// InsufficientPoints reports a debit larger than the current balance.
// The balance is left untouched by the caller.
func InsufficientPoints(balance, cost int) *AppError {
	return &AppError{
		Err:     ErrInsufficientPoints,
		Message: fmt.Sprintf("insufficient points: have %d, need %d", balance, cost),
	}
}
