package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
	ErrPolicyConfig  = errors.New("policy misconfigured")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// ---------------------------------------------------------------------------
// Access errors returned by the resource access services.
// ---------------------------------------------------------------------------

// UserNotAuthorizedError is returned when the permission decision denies an action.
type UserNotAuthorizedError struct {
	ActorID  string
	Action   ActivityType
	Resource string
}

func (e *UserNotAuthorizedError) Error() string {
	return fmt.Sprintf("actor %s is not authorized to %s %s", e.ActorID, e.Action, e.Resource)
}

func (e *UserNotAuthorizedError) Unwrap() error { return ErrForbidden }

// RecordNotFoundError is returned when a single-record lookup finds nothing.
type RecordNotFoundError struct {
	Resource string
	ID       string
}

func (e *RecordNotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *RecordNotFoundError) Unwrap() error { return ErrNotFound }

// RecordsNotFoundError is returned when a collection lookup yields no usable result.
// Cause is kept for logging and is not part of the message.
type RecordsNotFoundError struct {
	Resource string
	Cause    error
}

func (e *RecordsNotFoundError) Error() string {
	return fmt.Sprintf("%s records not found", e.Resource)
}

func (e *RecordsNotFoundError) Unwrap() error { return ErrNotFound }

// DuplicateRecordError is returned when a create violates a uniqueness constraint.
// The storage error is deliberately not carried.
type DuplicateRecordError struct {
	Resource string
}

func (e *DuplicateRecordError) Error() string {
	return fmt.Sprintf("%s already exists", e.Resource)
}

func (e *DuplicateRecordError) Unwrap() error { return ErrAlreadyExists }

// UnhandledError wraps an unexpected persistence failure that needs investigation.
// Cause is reachable through Unwrap for logging and is not part of the message.
type UnhandledError struct {
	Resource string
	Op       string
	ID       string
	Cause    error
}

func (e *UnhandledError) Error() string {
	return fmt.Sprintf("unhandled %s failure on %s %s", e.Op, e.Resource, e.ID)
}

func (e *UnhandledError) Unwrap() error { return e.Cause }
