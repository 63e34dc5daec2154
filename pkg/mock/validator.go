package mock

import (
	"errors"
	"fmt"
)

// Registration validation errors. The HTTP layer maps these to fixed messages.
var (
	ErrMissingCallShape = errors.New("route, path or method required")
	ErrInvalidStatus    = errors.New("status must be a final status between 200 and 999")
)

// ValidationError represents a validation failure with context.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate checks that the registration names a call shape and a usable status.
func (r *Registration) Validate() error {
	switch {
	case r.Route == "":
		return &ValidationError{Field: "route", Message: "route is required", Err: ErrMissingCallShape}
	case r.Path == "":
		return &ValidationError{Field: "path", Message: "path is required", Err: ErrMissingCallShape}
	case r.Method == "":
		return &ValidationError{Field: "method", Message: "method is required", Err: ErrMissingCallShape}
	}
	// 1xx codes are informational and cannot end a response.
	if r.Status != 0 && (r.Status < 200 || r.Status > 999) {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("invalid status %d", r.Status), Err: ErrInvalidStatus}
	}
	return nil
}
