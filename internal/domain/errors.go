// Package domain defines the error taxonomy shared across RepCoach components.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Wrap with fmt.Errorf("context: %w", Err...) so callers
// can classify failures with errors.Is without string matching.
var (
	// ErrValidation marks malformed input rejected before any side effect.
	ErrValidation = errors.New("validation error")

	// ErrUnauthorized marks an actor lacking the capability or ownership
	// required for the operation. Short-circuits before any side effect.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound marks a missing template, routine, or schedule day.
	ErrNotFound = errors.New("not found")

	// ErrPersistence marks a record-store write failure. Atomic batches
	// guarantee zero partial writes when this surfaces.
	ErrPersistence = errors.New("persistence error")
)

// Validationf wraps ErrValidation with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// Unauthorizedf wraps ErrUnauthorized with a formatted message.
func Unauthorizedf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrUnauthorized}, args...)...)
}

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}
