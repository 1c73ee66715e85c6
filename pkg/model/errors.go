package model

import (
	"errors"
	"fmt"
)

// ErrValidation is the sentinel all validation failures wrap, so callers
// can classify them with errors.Is without inspecting the message.
var ErrValidation = errors.New("validation failed")

// ValidationError describes a malformed node or edge rejected at
// construction or merge time.
type ValidationError struct {
	Field  string // offending field ("type", "name", "from", ...)
	Value  string // offending value, if useful
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
