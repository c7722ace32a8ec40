package solver

import (
	"errors"
	"fmt"
)

var (
	// ErrDecompositionFailed indicates a singular stiffness matrix or a failed
	// eigen decomposition.
	ErrDecompositionFailed = errors.New("solver: matrix decomposition failed")

	// ErrNoConvergence indicates the equilibrium iteration exceeded its budget.
	ErrNoConvergence = errors.New("solver: equilibrium iteration did not converge")

	// ErrStepTooSmall indicates the path-following step fell below its minimum.
	ErrStepTooSmall = errors.New("solver: path step below minimum")

	// ErrNoOscillation indicates the system has no oscillating mode.
	ErrNoOscillation = errors.New("solver: no eigenvalue with positive imaginary part")

	// ErrZeroFrequency indicates a vanishing maximum natural frequency.
	ErrZeroFrequency = errors.New("solver: maximum natural frequency is zero")
)

// SolverError wraps an error with the operation and the point of the run at
// which it occurred.
type SolverError struct {
	Op      string
	Step    int
	Value   float64 // controlled displacement or time
	Wrapped error
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("%s (step %d at %g): %v", e.Op, e.Step, e.Value, e.Wrapped)
}

func (e *SolverError) Unwrap() error {
	return e.Wrapped
}
