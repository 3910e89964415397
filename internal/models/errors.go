package models

import (
	"errors"
	"fmt"
)

// Custom errors
var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateKey    = errors.New("duplicate key violation")
	ErrInvalidID       = errors.New("invalid ID format")
	ErrDatasetRequired = errors.New("dataset name is required")
)

// ValidationKind classifies validation failures on comparison data
type ValidationKind string

const (
	// ValidationEmptyInput indicates an empty comparison list
	ValidationEmptyInput ValidationKind = "empty_input"
	// ValidationInsufficientOptions indicates fewer than two distinct options
	ValidationInsufficientOptions ValidationKind = "insufficient_options"
	// ValidationMalformedRecord indicates a chosen value that matches neither presented option
	ValidationMalformedRecord ValidationKind = "malformed_record"
)

// ValidationError represents invalid comparison data supplied to the estimator
type ValidationError struct {
	Kind    ValidationKind
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Kind, e.Message)
}

// NewValidationError creates a validation error with the given kind and message
func NewValidationError(kind ValidationKind, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsValidationError reports whether err is a ValidationError and returns it
func IsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
