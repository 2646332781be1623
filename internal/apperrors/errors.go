// Package apperrors defines the error values shared by the checkout service layers.
package apperrors

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrSectionLocked is returned when a section is opened before its predecessor is completed.
	ErrSectionLocked = errors.New("section is locked")

	// ErrSubmitNotReady is returned when submission is attempted before every section is completed.
	ErrSubmitNotReady = errors.New("checkout is not ready to submit")

	// ErrAlreadySubmitting guards the single checkout submission.
	ErrAlreadySubmitting = errors.New("checkout submission already in progress")

	// ErrUpstream marks failures of collaborating services (payment provider, coupon store).
	ErrUpstream = errors.New("upstream service failure")
)

// ValidationError describes a rejected input. Details holds per-field messages
// when more than one field failed.
type ValidationError struct {
	Field   string            `json:"field"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// NewValidationError creates a validation error for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NewFieldErrors aggregates per-field messages under one section-level error.
func NewFieldErrors(scope string, details map[string]string) *ValidationError {
	copied := make(map[string]string, len(details))
	for k, v := range details {
		copied[k] = v
	}
	keys := make([]string, 0, len(copied))
	for k := range copied {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &ValidationError{
		Field:   scope,
		Message: "invalid fields: " + strings.Join(keys, ", "),
		Details: copied,
	}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
