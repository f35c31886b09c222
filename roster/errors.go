/*
errors.go - Error types for the roster package

ERROR CATEGORIES:
  1. Validation errors - malformed operator input (unknown team, missing date)
  2. Not-found - no alteration recorded for a key
  3. Store errors - backing-store failures, passed through wrapped

Read paths (Resolve, ResolveRange) never fail on malformed STORED data;
they skip the offending row and continue. Write paths surface every
validation and store error to the operator.
*/
package roster

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no alteration exists for a (date, unit) key
	// and the caller asked for one specifically.
	ErrNotFound = errors.New("alteration not found")

	// ErrUnknownUnit is returned when a unit has no rotation configured.
	ErrUnknownUnit = errors.New("unknown unit")
)

// ValidationError is malformed operator input. The Field/Message pair is
// meant to be shown back to the operator as-is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err indicates a missing alteration.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
