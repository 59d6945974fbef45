package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that a requested entity was not found
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidCoinID indicates that a coin identifier is empty or malformed
	ErrInvalidCoinID = errors.New("invalid coin id")

	// ErrInvalidQuery indicates that a search query cannot be issued upstream
	ErrInvalidQuery = errors.New("invalid search query")

	// ErrValidationFailed indicates that validation checks have failed
	ErrValidationFailed = errors.New("validation failed")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
	// Err optionally classifies the failure further, e.g. ErrInvalidCoinID.
	Err error
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Unwrap lets callers match any ValidationError with errors.Is(err, ErrValidationFailed),
// and with Err when set.
func (e *ValidationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrValidationFailed, e.Err}
	}
	return []error{ErrValidationFailed}
}
