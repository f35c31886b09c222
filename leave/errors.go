package leave

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an allotment does not exist.
	ErrNotFound = errors.New("allotment not found")
)

// ValidationError is malformed administrator input, with enough detail
// to correct it ("incomplete date range on installment 2").
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

// IsNotFound reports whether err indicates a missing allotment.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
