package model

import (
	"context"
	"fmt"
	"math"

	"github.com/cpmech/gosl/io"

	"github.com/bow-simulation/virtualbow-sub001/internal/fem"
	"github.com/bow-simulation/virtualbow-sub001/internal/metrics"
	"github.com/bow-simulation/virtualbow-sub001/internal/numerics"
	"github.com/bow-simulation/virtualbow-sub001/internal/solver"
)

const (
	separationTimeout = 1.0 // seconds
	stabilityBound    = 1e3 // largest plausible displacement or velocity
)

// SetupDamping makes the damping stiffness proportional such that the
// lowest mode of the braced bow has the requested damping ratios. It returns
// the proportionality factors for limb and string.
func SetupDamping(b *Bow, in *InputData) (betaLimb, betaString float64, err error) {
	zl, zs := in.Damping.RatioLimbs, in.Damping.RatioString
	if zl == 0 && zs == 0 {
		return 0, 0, nil
	}
	mode, err := solver.NewEigenvalueSolver(b.System).ComputeMinimumFrequency()
	if err != nil {
		return 0, 0, err
	}
	betaLimb, betaString = 2*zl/mode.Omega, 2*zs/mode.Omega
	b.SetDamping(betaLimb, betaString)
	if in.Settings.Verbose {
		io.Pf("damping: lowest mode %.3f rad/s, beta limb %.3e, beta string %.3e\n", mode.Omega, betaLimb, betaString)
	}
	return betaLimb, betaString, nil
}

// Shoot releases the drawn bow and integrates its motion. The first phase
// ends when the string center stops accelerating the arrow, which then
// separates and continues at constant velocity. The second phase follows the
// bow without the arrow for TimeSpanFactor times the duration of the first.
// drawingWork is the energy stored by the draw, used for the efficiency.
func Shoot(ctx context.Context, b *Bow, in *InputData, drawingWork float64, progress func(float64)) (*Dynamics, error) {
	s := b.System
	c := b.Center()
	verbose := in.Settings.Verbose
	rate := in.Settings.SamplingRate

	s.SetP(make([]float64, s.Dofs()))
	s.SetV(make([]float64, s.Dofs()))
	s.SetTime(0)
	x0 := s.GetU(c.X)
	x1 := in.Dimensions.BraceHeight

	if a0 := s.GetA(c.X); !(a0 < 0) {
		return nil, fmt.Errorf("%w: string center does not accelerate after release", ErrNoSeparation)
	}

	dt, err := timestep(s, in.Settings.TimeStepFactor)
	if err != nil {
		return nil, err
	}
	if verbose {
		io.Pf("shot: timestep %.3e s\n", dt)
	}

	dissipation := metrics.NewDissipation()
	drift := metrics.NewEnergyDrift(dissipation)
	stability := metrics.NewStability(stabilityBound)
	observe := func() {
		dissipation.Observe(s)
		drift.Observe(s)
		stability.Observe(s)
	}
	observe()

	var states States
	states.record(b, nil)

	// phase 1: arrow on the string
	ds := solver.NewDynamicSolver(s, dt, rate, func() bool {
		observe()
		return s.GetA(c.X) >= 0 || stability.Violated() || ctx.Err() != nil
	})
	for more := true; more; {
		more = ds.Step()
		states.record(b, nil)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if stability.Violated() {
			return nil, fmt.Errorf("%w at t = %g", ErrUnstable, s.Time())
		}
		if s.Time() > separationTimeout {
			return nil, fmt.Errorf("%w within %g s", ErrNoSeparation, separationTimeout)
		}
		if progress != nil {
			progress(0.5 * numerics.Clamp((x0-s.GetU(c.X))/(x0-x1), 0, 1))
		}
	}

	departure := states.Len() - 1
	tSep := s.Time()
	free := arrow{pos: s.GetU(c.X), vel: s.GetV(c.X)}
	energyError := drift.Value()
	if verbose {
		io.Pforan("shot: arrow departs at t = %.5f s with %.3f m/s, energy error %.2e\n", tSep, math.Abs(free.vel), energyError)
	}

	// phase 2: arrow gone
	step1 := dt
	s.SetGroupEnabled(GroupArrow, false)
	if dt, err = timestep(s, in.Settings.TimeStepFactor); err != nil {
		return nil, err
	}
	tEnd := tSep * (1 + in.Settings.TimeSpanFactor)
	ds = solver.NewDynamicSolver(s, dt, rate, func() bool {
		stability.Observe(s)
		return s.Time() >= tEnd || stability.Violated() || ctx.Err() != nil
	})
	for more := s.Time() < tEnd; more; {
		more = ds.Step()
		state := free
		state.pos += free.vel * (s.Time() - tSep)
		states.record(b, &state)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if stability.Violated() {
			return nil, fmt.Errorf("%w at t = %g", ErrUnstable, s.Time())
		}
		if progress != nil {
			progress(0.5 + 0.5*numerics.Clamp((s.Time()-tSep)/(tEnd-tSep), 0, 1))
		}
	}

	dy := NewDynamics(states, b.Limb, departure, drawingWork, energyError)
	dy.Timestep = step1
	return dy, nil
}

// timestep is the stable time step of the current system times factor. The
// damping of the stiff modes can restrict it well below the undamped limit.
func timestep(s *fem.System, factor float64) (float64, error) {
	dt, err := solver.EstimateTimestep(s, factor)
	if err != nil {
		return 0, err
	}
	damped, err := solver.DampedTimestep(s, factor)
	if err != nil {
		return 0, err
	}
	return math.Min(dt, damped), nil
}
