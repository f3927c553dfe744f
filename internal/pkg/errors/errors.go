package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrSessionNotFound is returned when a session is unknown or was deleted.
	ErrSessionNotFound = fmt.Errorf("session %w", ErrNotFound)
	// ErrOutOfOrder marks an event older than the session's last committed trace.
	ErrOutOfOrder = errors.New("event out of order")
)

type FieldError struct {
	Field  string
	Reason string
}

// ValidationError is raised synchronously by ingestion; callers decide
// whether to retry or discard the event.
type ValidationError struct {
	Fields []FieldError
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	msg := "validation failed"
	if len(parts) > 0 {
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	if e.Err != nil && !errors.Is(e.Err, ErrInvalidArgument) {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() []error {
	if e == nil {
		return nil
	}
	if e.Err != nil {
		return []error{ErrInvalidArgument, e.Err}
	}
	return []error{ErrInvalidArgument}
}

func NewValidationError(err error, fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields, Err: err}
}
