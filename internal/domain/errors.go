package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique key collision.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNegativeFee is returned when a delivery fee below zero is supplied.
	ErrNegativeFee = errors.New("delivery fee must not be negative")
	// ErrInvalidInput matches every error built with Invalid.
	ErrInvalidInput = errors.New("invalid input")
)

type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }

func (e *inputError) Is(target error) bool { return target == ErrInvalidInput }

// Invalid reports a caller mistake; errors.Is(err, ErrInvalidInput) holds.
func Invalid(msg string) error {
	return &inputError{msg: msg}
}
