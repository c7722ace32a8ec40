package solver

import (
	"errors"
	"fmt"
	"math"

	"github.com/bow-simulation/virtualbow-sub001/internal/fem"
	"github.com/bow-simulation/virtualbow-sub001/internal/numerics"
	"github.com/cpmech/gosl/io"
	"gonum.org/v1/gonum/mat"
)

// StaticSettings control the equilibrium iteration and the adaptive path
// following of a StaticSolver.
type StaticSettings struct {
	IterMax           int     `yaml:"iter_max" json:"iter_max"`
	EpsilonRel        float64 `yaml:"epsilon_rel" json:"epsilon_rel"`
	EpsilonAbs        float64 `yaml:"epsilon_abs" json:"epsilon_abs"`
	FullUpdate        bool    `yaml:"full_update" json:"full_update"`
	LineSearch        bool    `yaml:"line_search" json:"line_search"`
	LineSearchIterMax int     `yaml:"line_search_iter_max" json:"line_search_iter_max"`
	LineSearchTol     float64 `yaml:"line_search_tol" json:"line_search_tol"`
	StepInit          float64 `yaml:"step_init" json:"step_init"`
	StepMin           float64 `yaml:"step_min" json:"step_min"`
	StepMax           float64 `yaml:"step_max" json:"step_max"`
	IterRef           int     `yaml:"iter_ref" json:"iter_ref"`
	Verbose           bool    `yaml:"-" json:"-"`
}

func DefaultStaticSettings() StaticSettings {
	return StaticSettings{
		IterMax:           50,
		EpsilonRel:        1e-8,
		EpsilonAbs:        1e-10,
		FullUpdate:        true,
		LineSearch:        true,
		LineSearchIterMax: 20,
		LineSearchTol:     0.1,
		StepInit:          1e-3,
		StepMin:           1e-8,
		StepMax:           1e-1,
		IterRef:           5,
	}
}

// State of an equilibrium iteration.
type State int

const (
	Iterating State = iota
	Success
	DecompositionFailed
	NoConvergence
)

func (s State) String() string {
	switch s {
	case Iterating:
		return "iterating"
	case Success:
		return "success"
	case DecompositionFailed:
		return "decomposition failed"
	case NoConvergence:
		return "no convergence"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Outcome is the result of one equilibrium solve.
type Outcome struct {
	State      State
	Iterations int
}

func (o Outcome) Success() bool { return o.State == Success }

// Err maps a failed outcome to its sentinel error, or nil on success.
func (o Outcome) Err() error {
	switch o.State {
	case Success:
		return nil
	case DecompositionFailed:
		return ErrDecompositionFailed
	case NoConvergence:
		return ErrNoConvergence
	}
	return fmt.Errorf("solver: unexpected state %v", o.State)
}

// StaticSolver finds equilibrium states under displacement control: the
// controlled DOF is moved to a target value and the load on that DOF, scaled
// by the load parameter λ, is solved for together with all displacements.
// The external forces are p = p0 + λ e where e is the unit vector at the
// controlled DOF.
type StaticSolver struct {
	s   *fem.System
	dof fem.Dof
	set StaticSettings

	p0     []float64
	lambda float64

	lu   mat.LU
	e    *mat.VecDense
	rhs  *mat.VecDense
	a, b *mat.VecDense
}

func NewStaticSolver(s *fem.System, dof fem.Dof, set StaticSettings) *StaticSolver {
	if dof.Type != fem.Active {
		panic(fmt.Sprintf("solver: controlled dof %v is not active", dof))
	}
	n := s.Dofs()
	ss := &StaticSolver{
		s:      s,
		dof:    dof,
		set:    set,
		p0:     append([]float64(nil), s.P()...),
		lambda: s.GetP(dof),
		e:      mat.NewVecDense(n, nil),
		rhs:    mat.NewVecDense(n, nil),
		a:      mat.NewVecDense(n, nil),
		b:      mat.NewVecDense(n, nil),
	}
	ss.p0[dof.Index] = 0
	ss.e.SetVec(dof.Index, 1)
	return ss
}

// LoadParameter is the current force at the controlled DOF.
func (ss *StaticSolver) LoadParameter() float64 { return ss.lambda }

func (ss *StaticSolver) setLoad(lambda float64) {
	ss.lambda = lambda
	p := append([]float64(nil), ss.p0...)
	p[ss.dof.Index] += lambda
	ss.s.SetP(p)
}

func (ss *StaticSolver) factorize() bool {
	ss.lu.Factorize(ss.s.K())
	if logDet, _ := ss.lu.LogDet(); math.IsInf(logDet, -1) || math.IsNaN(logDet) {
		return false
	}
	c := ss.lu.Cond()
	return !math.IsInf(c, 0) && !math.IsNaN(c)
}

func (ss *StaticSolver) solve(dst *mat.VecDense, b mat.Vector) bool {
	err := ss.lu.SolveVecTo(dst, false, b)
	var cond mat.Condition
	if errors.As(err, &cond) {
		return !math.IsInf(float64(cond), 0) && !math.IsNaN(float64(cond))
	}
	return err == nil
}

// residual returns the out-of-balance forces q - p at the current state.
func (ss *StaticSolver) residual() []float64 {
	q, p := ss.s.Q(), ss.s.P()
	r := make([]float64, len(q))
	for i := range r {
		r[i] = q[i] - p[i]
	}
	return r
}

// SolveEquilibrium moves the controlled DOF to target and iterates until the
// system is in equilibrium. On failure the state before the call is restored.
func (ss *StaticSolver) SolveEquilibrium(target float64) Outcome {
	u0 := append([]float64(nil), ss.s.U()...)
	lambda0 := ss.lambda
	restore := func(state State, iter int) Outcome {
		ss.s.SetU(u0)
		ss.setLoad(lambda0)
		if ss.set.Verbose {
			io.Pfred("static: %v after %d iterations (target %g)\n", state, iter, target)
		}
		return Outcome{State: state, Iterations: iter}
	}

	n := ss.s.Dofs()
	du := make([]float64, n)
	var g0 float64
	for i := 0; i < ss.set.IterMax; i++ {
		if i == 0 || ss.set.FullUpdate {
			if !ss.factorize() {
				return restore(DecompositionFailed, i)
			}
		}

		dq := ss.residual()
		for j, v := range dq {
			ss.rhs.SetVec(j, -v)
		}
		if !ss.solve(ss.a, ss.rhs) || !ss.solve(ss.b, ss.e) {
			return restore(DecompositionFailed, i)
		}

		c := ss.s.GetU(ss.dof) - target
		dlambda := -(c + ss.a.AtVec(ss.dof.Index)) / ss.b.AtVec(ss.dof.Index)
		for j := range du {
			du[j] = ss.a.AtVec(j) + dlambda*ss.b.AtVec(j)
		}

		g := dot(du, dq) + dlambda*c
		if i == 0 {
			g0 = g
		}

		step := 1.0
		if ss.set.LineSearch {
			step = ss.lineSearch(du, dlambda, g, target)
		}

		u := append([]float64(nil), ss.s.U()...)
		for j := range u {
			u[j] += step * du[j]
		}
		ss.s.SetU(u)
		ss.setLoad(ss.lambda + step*dlambda)

		if ss.set.Verbose {
			io.Pf("static: iteration %3d  g = %12.5e  step = %.3f\n", i, g, step)
		}
		if math.IsNaN(g) {
			return restore(NoConvergence, i+1)
		}
		if math.Abs(g0) < ss.set.EpsilonAbs || math.Abs(g/g0) < ss.set.EpsilonRel {
			return Outcome{State: Success, Iterations: i + 1}
		}
	}
	return restore(NoConvergence, ss.set.IterMax)
}

// lineSearch looks for a zero of the step energy
//
//	f(s) = δuᵀ (q(u + s δu) - p(λ + s δλ)) + δλ (u[dof] + s δu[dof] - target)
//
// on [0, 1]. It returns the full step if f does not change sign there.
func (ss *StaticSolver) lineSearch(du []float64, dlambda, g0, target float64) float64 {
	u0 := append([]float64(nil), ss.s.U()...)
	lambda0 := ss.lambda
	u := make([]float64, len(u0))

	f := func(s float64) float64 {
		for j := range u {
			u[j] = u0[j] + s*du[j]
		}
		ss.s.SetU(u)
		ss.setLoad(lambda0 + s*dlambda)
		c := ss.s.GetU(ss.dof) - target
		return dot(du, ss.residual()) + dlambda*c
	}
	defer func() {
		ss.s.SetU(u0)
		ss.setLoad(lambda0)
	}()

	f1 := f(1)
	if g0*f1 >= 0 {
		return 1
	}
	s, err := numerics.RegulaFalsi(f, 0, 1, ss.set.LineSearchTol*math.Abs(g0), ss.set.LineSearchIterMax)
	if err != nil {
		return 1
	}
	return s
}

// SolveEquilibriumPath moves the controlled DOF to target in adaptive steps.
// After each converged step callback is invoked; returning false from it ends
// the path early. A step that fails is halved; failing below the minimum step
// size ends the path with an error.
func (ss *StaticSolver) SolveEquilibriumPath(target float64, callback func() bool) error {
	pos := ss.s.GetU(ss.dof)
	delta := math.Copysign(ss.set.StepInit, target-pos)

	for count := 0; pos != target; count++ {
		next := pos + delta
		if (delta > 0 && next > target) || (delta < 0 && next < target) {
			next = target
		}

		out := ss.SolveEquilibrium(next)
		if !out.Success() {
			delta = (next - pos) / 2
			if ss.set.Verbose {
				io.Pfyel("static path: step failed (%v), retrying with %g\n", out.State, delta)
			}
			if math.Abs(delta) < ss.set.StepMin {
				return &SolverError{
					Op:      "static path",
					Step:    count,
					Value:   pos,
					Wrapped: fmt.Errorf("%w: %w", ErrStepTooSmall, out.Err()),
				}
			}
			continue
		}

		pos = next
		if callback != nil && !callback() {
			return nil
		}

		iter := math.Max(float64(out.Iterations), 1)
		scale := math.Sqrt(float64(ss.set.IterRef) / iter)
		delta = math.Copysign(numerics.Clamp(math.Abs(delta)*scale, ss.set.StepMin, ss.set.StepMax), delta)
	}
	return nil
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
