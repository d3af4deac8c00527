// Package service provides application-level services for live progress
// snapshots and the mutations that trigger them.
package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/pathway-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check for them with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrItemNotFound indicates that the progress item does not exist for the user.
	// API layer should map this to HTTP 404 Not Found.
	ErrItemNotFound = errors.New("progress item not found")
)

// ProgressServiceError wraps errors from the progress service with context.
type ProgressServiceError struct {
	// Operation is the operation that failed (e.g., "add_item", "complete_item")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ProgressServiceError.
func (e *ProgressServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("progress service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("progress service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ProgressServiceError) Unwrap() error {
	return e.Err
}

// NewProgressServiceError creates a new ProgressServiceError.
// Known not-found errors are returned as ErrItemNotFound without wrapping.
func NewProgressServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrItemNotFound) || errors.Is(err, store.ErrProgressItemNotFound) {
		return ErrItemNotFound
	}
	return &ProgressServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
