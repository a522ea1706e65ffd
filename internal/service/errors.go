package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a session, entry or product does not exist.
	ErrNotFound = errors.New("not found")
	// ErrExternalService is returned when the LLM or the shop fails.
	ErrExternalService = errors.New("external service error")
	// ErrNotConfigured is returned when a collaborator needed by the request
	// has no credentials or endpoint configured.
	ErrNotConfigured = errors.New("not configured")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// externalError marks err as an upstream failure, or as missing
// configuration when notConfigured matches it.
func externalError(err, notConfigured error, msg string) error {
	if notConfigured != nil && errors.Is(err, notConfigured) {
		return WrapError(fmt.Errorf("%w: %w", ErrNotConfigured, err), msg)
	}
	return WrapError(fmt.Errorf("%w: %w", ErrExternalService, err), msg)
}
