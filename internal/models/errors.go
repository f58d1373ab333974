package models

import (
	"errors"
	"strings"
)

// Error taxonomy shared by repositories, services and the HTTP boundary
var (
	ErrUnauthorized      = errors.New("authentication required")
	ErrForbidden         = errors.New("insufficient permissions")
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInconsistency marks a multi-step write that may have partially completed
	ErrInconsistency = errors.New("inconsistent state after partial write")
)

// ValidationError represents a single field validation failure
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ValidationErrors collects all field failures of one request
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Field+": "+e.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Is lets callers match ValidationErrors with errors.Is(err, ErrValidation)
func (v ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a one-field ValidationErrors
func NewValidationError(field, message string, value interface{}) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message, Value: value}}
}
