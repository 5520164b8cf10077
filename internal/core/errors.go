package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrValidation marks malformed input. Match with errors.Is.
	ErrValidation = errors.New("validation failed")
	// ErrPricingNotFound means no effective price exists for a variant/material on a date.
	ErrPricingNotFound = errors.New("pricing not found")
	// ErrInvalidTransition means the state machine forbids the requested status change.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNotFound means a referenced quote, item or customer does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict means the operation is illegal for the current stored state.
	ErrConflict = errors.New("conflict")
)

// FieldError is a single field-level validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field problem found in one input.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError reports a single invalid field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// PricingNotFoundError names the line that could not be priced; LineNumber is
// zero for a standalone price lookup. It matches
// both ErrPricingNotFound and ErrValidation: an unpriceable line fails the
// whole request as invalid input.
type PricingNotFoundError struct {
	LineNumber int
	VariantID  uuid.UUID
	MaterialID uuid.UUID
	AsOf       time.Time
}

func (e *PricingNotFoundError) Error() string {
	msg := fmt.Sprintf("no effective price for variant %s / material %s on %s",
		e.VariantID, e.MaterialID, e.AsOf.Format(time.DateOnly))
	if e.LineNumber > 0 {
		return fmt.Sprintf("line %d: %s", e.LineNumber, msg)
	}
	return msg
}

func (e *PricingNotFoundError) Unwrap() []error {
	return []error{ErrPricingNotFound, ErrValidation}
}

// TransitionError is returned when a requested status change is not allowed.
type TransitionError struct {
	From QuoteStatus
	To   QuoteStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
