package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrForbidden          = errors.New("operation not allowed for this account")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactiveAccount    = errors.New("account is inactive")
	ErrInvalidImageType   = errors.New("unsupported image type")

	ErrStorageIO     = errors.New("storage i/o failure")
	ErrStorageFormat = errors.New("storage contents could not be decoded")
)

// TransitionError reports a lifecycle action attempted from the wrong state.
type TransitionError struct {
	RequestID int64
	From      RequestStatus
	Action    string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s request %d in status %q", e.Action, e.RequestID, e.From)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
