package numerics

import "errors"

var (
	// ErrInvalidArgument indicates input that cannot describe a valid object or problem.
	ErrInvalidArgument = errors.New("numerics: invalid argument")

	// ErrNoConvergence indicates an iterative method ran out of its iteration or depth budget.
	ErrNoConvergence = errors.New("numerics: no convergence")
)
