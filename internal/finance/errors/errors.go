package errors

import (
	"errors"
)

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

func IsValidationError(err error) bool {
	var validationError *ValidationError
	return errors.As(err, &validationError)
}

var ErrInvalidCategory = NewValidationError("Invalid category")

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrForbidden           = errors.New("not enough permissions")
)
