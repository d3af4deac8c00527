// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a request or entity fails validation.
	// It is usually wrapped by a *ValidationError naming the field.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyUserID is returned when a user identifier is missing.
	ErrEmptyUserID = errors.New("user ID cannot be empty")

	// ErrInvalidItemStatus is returned when a progress item status is not valid.
	ErrInvalidItemStatus = errors.New("invalid item status")

	// ErrInvalidDetails is returned when item details are not valid JSON.
	ErrInvalidDetails = errors.New("invalid item details")
)

// ValidationError reports a missing or malformed input parameter. It is
// surfaced before any cache or generation work is attempted.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Message)
}

// Unwrap allows errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
