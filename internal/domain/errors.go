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

	// ErrInvalidRating: rating outside {1,2,3,4}. A programmer error —
	// fatal to the one item it applies to, never retried (spec §7).
	ErrInvalidRating = errors.New("invalid rating")
	// ErrUnknownItem: a session or batch referenced an item the storage
	// adapter doesn't know about.
	ErrUnknownItem = errors.New("unknown item")
	// ErrSessionUnavailable: placement session missing, already complete,
	// or owned by a different learner.
	ErrSessionUnavailable = errors.New("placement session unavailable")
	// ErrNoPlacementItems: the candidate pool carried no item with θ_item
	// at session start.
	ErrNoPlacementItems = errors.New("no placement items available")
	// ErrStorageUnavailable: a transient storage failure. The core never
	// retries internally; callers may.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrMissingPrimaryCredit: the Credit Distributor's target word did not
	// survive tokenization/classification as PRIMARY. A programmer error —
	// every distribution must carry exactly one PRIMARY credit (spec §4.3).
	ErrMissingPrimaryCredit = errors.New("missing primary credit")
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
		return fmt.Sprintf("validation: %s — %s", e.Errors[0].Field, e.Errors[0].Message)
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
