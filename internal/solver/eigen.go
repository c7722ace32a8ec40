package solver

import (
	"fmt"
	"math"
	"sort"

	"github.com/bow-simulation/virtualbow-sub001/internal/fem"
	"gonum.org/v1/gonum/mat"
)

// Mode is a damped natural vibration: the eigenvalue pair
// λ = -ζω ± iω sqrt(1 - ζ²).
type Mode struct {
	Omega float64
	Zeta  float64
}

// EigenvalueSolver computes the damped natural modes of the linearised
// system M ü + D u̇ + K u = 0 at the current state.
type EigenvalueSolver struct {
	s *fem.System
}

func NewEigenvalueSolver(s *fem.System) *EigenvalueSolver {
	return &EigenvalueSolver{s: s}
}

// ComputeModes returns the oscillating modes sorted by frequency. The
// quadratic problem is linearised to the first order system
//
//	| 0        I      | |u|     |u|
//	| -M⁻¹K   -M⁻¹D   | |v| = λ |v|
//
// whose eigenvalues with positive imaginary part give one mode each. With the
// lumped, positive mass matrix this has the same eigenvalues as the symmetric
// pencil A x = λ B x with A = [0 K; K D] and B = [K 0; 0 -M].
func (es *EigenvalueSolver) ComputeModes() ([]Mode, error) {
	values, err := eigenvalues(es.s)
	if err != nil {
		return nil, err
	}

	var modes []Mode
	for _, lambda := range values {
		if imag(lambda) <= 0 {
			continue
		}
		omega := math.Hypot(real(lambda), imag(lambda))
		modes = append(modes, Mode{Omega: omega, Zeta: -real(lambda) / omega})
	}
	if len(modes) == 0 {
		return nil, ErrNoOscillation
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i].Omega < modes[j].Omega })
	return modes, nil
}

// eigenvalues of the first order system of ComputeModes.
func eigenvalues(s *fem.System) ([]complex128, error) {
	m := s.M()
	if err := checkMasses(m); err != nil {
		return nil, err
	}
	k, d, n := s.K(), s.D(), len(m)

	c := mat.NewDense(2*n, 2*n, nil)
	for i := 0; i < n; i++ {
		c.Set(i, n+i, 1)
		for j := 0; j < n; j++ {
			c.Set(n+i, j, -k.At(i, j)/m[i])
			c.Set(n+i, n+j, -d.At(i, j)/m[i])
		}
	}

	var eig mat.Eigen
	if ok := eig.Factorize(c, mat.EigenNone); !ok {
		return nil, fmt.Errorf("eigenvalues of %d dofs: %w", n, ErrDecompositionFailed)
	}
	return eig.Values(nil), nil
}

// checkMasses rejects systems the modal analysis cannot handle: no degrees of
// freedom or a lumped mass that is not finite and positive.
func checkMasses(m []float64) error {
	if len(m) == 0 {
		return fmt.Errorf("system without degrees of freedom: %w", ErrDecompositionFailed)
	}
	for i, mi := range m {
		if !(mi > 0) || math.IsInf(mi, 0) {
			return fmt.Errorf("mass %g at dof %d: %w", mi, i, ErrDecompositionFailed)
		}
	}
	return nil
}

func (es *EigenvalueSolver) ComputeMinimumFrequency() (Mode, error) {
	modes, err := es.ComputeModes()
	if err != nil {
		return Mode{}, err
	}
	return modes[0], nil
}

func (es *EigenvalueSolver) ComputeMaximumFrequency() (Mode, error) {
	modes, err := es.ComputeModes()
	if err != nil {
		return Mode{}, err
	}
	return modes[len(modes)-1], nil
}

// EstimateTimestep returns factor·2/ω_max, the stability limit of the central
// difference method scaled by a safety factor. ω_max is the largest undamped
// natural frequency from the symmetric problem M^(-1/2) K M^(-1/2). Damping
// is ignored, see DampedTimestep.
func EstimateTimestep(s *fem.System, factor float64) (float64, error) {
	m := s.M()
	if err := checkMasses(m); err != nil {
		return 0, err
	}
	k, n := s.K(), len(m)

	a := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			a.SetSym(i, j, k.At(i, j)/math.Sqrt(m[i]*m[j]))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(a, false); !ok {
		return 0, fmt.Errorf("timestep estimate: %w", ErrDecompositionFailed)
	}
	values := eig.Values(nil)
	omega := math.Sqrt(math.Max(values[len(values)-1], 0))
	if omega == 0 {
		return 0, ErrZeroFrequency
	}
	if math.IsNaN(omega) || math.IsInf(omega, 0) {
		return 0, fmt.Errorf("timestep estimate: frequency %g: %w", omega, ErrDecompositionFailed)
	}
	return factor * 2 / omega, nil
}

// DampedTimestep returns factor times the stability limit of DynamicSolver
// for the damped system. A mode λ = -ζω ± iω sqrt(1 - ζ²) stays bounded for
//
//	dt < 2/ω (sqrt(1 + 4ζ²) - 2ζ)
//
// which equals the undamped limit 2/ω for ζ = 0 and approaches 1/(2ζω) for
// large ζ. A real eigenvalue belongs to an overdamped mode, whose limit is no
// smaller than 2/((2 + sqrt 5)|λ|).
func DampedTimestep(s *fem.System, factor float64) (float64, error) {
	values, err := eigenvalues(s)
	if err != nil {
		return 0, err
	}

	limit := math.Inf(1)
	for _, lambda := range values {
		switch {
		case imag(lambda) > 0:
			omega := math.Hypot(real(lambda), imag(lambda))
			zeta := -real(lambda) / omega
			limit = math.Min(limit, 2/omega*(math.Sqrt(1+4*zeta*zeta)-2*zeta))
		case imag(lambda) == 0 && real(lambda) != 0:
			limit = math.Min(limit, 2/((2+math.Sqrt(5))*math.Abs(real(lambda))))
		}
	}
	if math.IsInf(limit, 1) {
		return 0, ErrZeroFrequency
	}
	if math.IsNaN(limit) {
		return 0, fmt.Errorf("damped timestep: %w", ErrDecompositionFailed)
	}
	return factor * limit, nil
}
