package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrFlightNotFound       = fmt.Errorf("flight %w", ErrNotFound)
	ErrBookingNotFound      = fmt.Errorf("booking %w", ErrNotFound)
	ErrInsufficientCapacity = errors.New("insufficient capacity")
	ErrInvalidTransition    = errors.New("invalid booking status transition")
	ErrHoldExpired          = errors.New("hold expired")
	ErrValidation           = errors.New("validation failed")

	// ErrTxConflict marks a serialization or lock failure; the operation may be retried.
	ErrTxConflict = errors.New("transaction conflict")
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", v.Field, v.Message)
}

func (v *ValidationError) Unwrap() error {
	return ErrValidation
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
