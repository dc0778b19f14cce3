package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("project not found")
	ErrNoProject = errors.New("no project loaded")
)

// ValidationError rejects a mutation before any state change. The store
// guarantees it never applies partially when one is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a mutation validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
