package model

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreConfig is returned when the active external store configuration
	// is missing or incomplete. It is not retried.
	ErrStoreConfig = errors.New("store configuration missing or incomplete")

	// ErrUpstream wraps every failed call against the external store.
	ErrUpstream = errors.New("upstream store request failed")

	// ErrValidation marks malformed or contradictory input.
	ErrValidation = errors.New("invalid input")

	ErrNotFound = errors.New("not found")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
