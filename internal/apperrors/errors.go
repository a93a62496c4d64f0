// Package apperrors defines the error kinds shared by the domain packages.
// Domain errors wrap one of these so callers can classify with errors.Is.
package apperrors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation failed")
)
