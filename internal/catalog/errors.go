package catalog

import (
	"errors"
	"fmt"
)

// ValidationError reports an input outside the documented domain of the
// calculators: unknown cabin types or extra IDs, and negative or
// out-of-range numeric inputs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
