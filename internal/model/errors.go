package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSeparation indicates the arrow did not leave the string in time.
	ErrNoSeparation = errors.New("model: arrow did not separate from the string")

	// ErrBracing indicates no string length braces the bow at the given height.
	ErrBracing = errors.New("model: bracing failed")

	// ErrUnstable indicates the dynamic simulation diverged.
	ErrUnstable = errors.New("model: dynamic simulation became unstable")
)

// InputError reports an invalid field of the model input.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("model: invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) *InputError {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// PhaseError wraps a failure during one phase of a simulation.
type PhaseError struct {
	Phase   string
	Wrapped error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Wrapped)
}

func (e *PhaseError) Unwrap() error {
	return e.Wrapped
}
