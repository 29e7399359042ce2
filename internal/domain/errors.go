package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidMasteryLevel is returned when a mastery level is not one of
	// crawl, walk, run-guided, run-independent.
	ErrInvalidMasteryLevel = errors.New("invalid mastery level")

	// ErrInvalidStressLevel is returned when a stress level is not one of
	// none, low, medium, high, extreme.
	ErrInvalidStressLevel = errors.New("invalid stress level")

	// ErrEmptyUserID is returned when a required user ID is missing.
	ErrEmptyUserID = errors.New("user ID cannot be empty")

	// ErrEmptyLessonID is returned when a required lesson ID is missing.
	ErrEmptyLessonID = errors.New("lesson ID cannot be empty")

	// ErrEmptyScenarioID is returned when a scenario has no ID.
	ErrEmptyScenarioID = errors.New("scenario ID cannot be empty")

	// ErrSessionCompleted is returned when mutating a session that has
	// already been completed.
	ErrSessionCompleted = errors.New("session already completed")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// ValidationError carries the field that failed validation alongside the
// underlying sentinel, so API layers can build precise messages without
// string matching.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}
