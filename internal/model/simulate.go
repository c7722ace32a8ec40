package model

import (
	"context"
	"fmt"

	"github.com/bow-simulation/virtualbow-sub001/internal/numerics"
)

type Mode int

const (
	Static Mode = iota
	Dynamic
)

func (m Mode) String() string {
	switch m {
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Progress receives the name of the running phase and the fraction of it
// that is done.
type Progress func(phase string, fraction float64)

// Simulation phases as reported to Progress and in a *PhaseError.
const (
	PhaseSetup   = "setup"
	PhaseBracing = "bracing"
	PhaseDamping = "damping"
	PhaseDraw    = "draw"
	PhaseShot    = "shot"
)

// Simulate runs the static draw of the bow and, in Dynamic mode, the shot.
// Invalid input is reported as an *InputError, failures of a phase as a
// *PhaseError wrapping the cause.
func Simulate(ctx context.Context, in *InputData, mode Mode, progress Progress) (*Output, error) {
	report := func(phase string) func(float64) {
		return func(f float64) {
			if progress != nil {
				progress(phase, f)
			}
		}
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}
	report(PhaseSetup)(0)
	limb, err := NewLimbProperties(in)
	if err != nil {
		return nil, err
	}
	b := NewBow(in, limb, in.Dimensions.BraceHeight)

	report(PhaseBracing)(0)
	if err := Brace(ctx, b, in); err != nil {
		return nil, &PhaseError{Phase: PhaseBracing, Wrapped: err}
	}
	report(PhaseBracing)(1)

	report(PhaseDamping)(0)
	betaLimb, betaString, err := SetupDamping(b, in)
	if err != nil {
		return nil, &PhaseError{Phase: PhaseDamping, Wrapped: err}
	}
	report(PhaseDamping)(1)

	out := &Output{
		Common: Common{
			Limb:          limb,
			StringLength:  2 * b.StringLength(),
			StringMass:    2 * b.StringLength() * in.String.StrandDensity * float64(in.String.NStrands),
			LimbMass:      2 * numerics.Trapz(limb.S, limb.RhoA),
			DampingLimb:   betaLimb,
			DampingString: betaString,
		},
	}

	report(PhaseDraw)(0)
	states, err := Draw(ctx, b, in, report(PhaseDraw))
	if err != nil {
		return nil, &PhaseError{Phase: PhaseDraw, Wrapped: err}
	}
	out.Statics = NewStatics(states, limb)
	if mode == Static {
		return out, nil
	}

	report(PhaseShot)(0)
	dy, err := Shoot(ctx, b, in, out.Statics.DrawingWork, report(PhaseShot))
	if err != nil {
		return nil, &PhaseError{Phase: PhaseShot, Wrapped: err}
	}
	out.Dynamics = dy
	report(PhaseShot)(1)
	return out, nil
}
