package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrNonPositiveAmount   = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidChoice       = errors.New("invalid choice")
	ErrInvalidHandle       = errors.New("invalid handle")
	ErrInvalidSecret       = errors.New("invalid secret")
	ErrDuplicateHandle     = errors.New("handle already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountNotFound     = errors.New("account not found")
	ErrPersistence         = errors.New("persistence failure")
)

// ValidationError is a rejected request. Message is safe to show the player;
// nothing was written.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(err error, message string) error {
	return &ValidationError{Message: message, Err: err}
}

// IsValidationError reports whether err is a player-facing rejection
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// persistenceError marks a storage failure; the unit of work has been rolled back
func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
