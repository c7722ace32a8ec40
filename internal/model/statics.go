package model

import (
	"context"
	"fmt"
	"math"

	"github.com/cpmech/gosl/io"

	"github.com/bow-simulation/virtualbow-sub001/internal/numerics"
	"github.com/bow-simulation/virtualbow-sub001/internal/solver"
)

const (
	braceSlack     = 0.999 // initial string length relative to the straight length
	braceStep      = 5e-3  // relative shortening of the string per search step
	braceStepMin   = 1e-7
	braceIterMax   = 50
	braceTolerance = 1e-6 // relative to the initial holding force
)

// Brace shortens the string until it holds its center at the brace height
// without external force. The limb is deformed accordingly and the center
// load is zero afterwards.
func Brace(ctx context.Context, b *Bow, in *InputData) error {
	set := in.Settings.Static
	set.Verbose = in.Settings.Verbose
	height := in.Dimensions.BraceHeight
	center := b.Center()

	if xt, _ := b.Limb.Belly(b.Limb.Nodes() - 1); height <= xt {
		return fmt.Errorf("%w: brace height %g does not exceed the unbraced tip at %g", ErrBracing, height, xt)
	}
	if got := b.System.GetU(center.X); got != height {
		return fmt.Errorf("%w: string center at %g instead of %g", ErrBracing, got, height)
	}

	// force needed to hold the string center at brace height
	force := func(l float64) (float64, error) {
		b.SetStringLength(l)
		out := solver.NewStaticSolver(b.System, center.X, set).SolveEquilibrium(height)
		if !out.Success() {
			return 0, out.Err()
		}
		return b.System.GetP(center.X), nil
	}

	lHi := braceSlack * b.StringLength()
	fHi, err := force(lHi)
	if err != nil {
		return fmt.Errorf("%w: initial string length: %w", ErrBracing, err)
	}
	if !(fHi > 0) {
		return fmt.Errorf("%w: slack string at initial length", ErrBracing)
	}

	// shorten the string until the holding force changes sign
	step := braceStep * lHi
	lLo, fLo := lHi, fHi
	for fLo > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		l := lHi - step
		f, err := force(l)
		if err != nil {
			b.SetStringLength(lHi)
			step /= 2
			if step < braceStepMin*lHi {
				return fmt.Errorf("%w: no bracket found below string length %g: %w", ErrBracing, lHi, err)
			}
			continue
		}
		if set.Verbose {
			io.Pf("brace: string length %.6f  force %12.5e\n", l, f)
		}
		if f > 0 {
			lHi, fHi = l, f
		}
		lLo, fLo = l, f
	}

	var failed error
	root, err := numerics.RegulaFalsi(func(l float64) float64 {
		if failed != nil {
			return 0
		}
		f, err := force(l)
		if err != nil {
			failed = err
		}
		return f
	}, lLo, lHi, braceTolerance*math.Max(fHi, -fLo), braceIterMax)
	if failed != nil {
		err = failed
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBracing, err)
	}

	if _, err := force(root); err != nil {
		return fmt.Errorf("%w: %w", ErrBracing, err)
	}
	b.System.SetPAt(center.X, 0)
	if set.Verbose {
		io.Pforan("brace: string length %.6f\n", 2*root)
	}
	return nil
}

// Draw pulls the string center from its current position to the draw
// length and records the states at nSteps equidistant draw lengths.
// progress receives the fraction of the draw done.
func Draw(ctx context.Context, b *Bow, in *InputData, progress func(float64)) (States, error) {
	set := in.Settings.Static
	set.Verbose = in.Settings.Verbose
	center := b.Center()
	ss := solver.NewStaticSolver(b.System, center.X, set)

	var states States
	targets := numerics.Linspace(b.System.GetU(center.X), in.Dimensions.DrawLength, in.Settings.NDrawSteps)
	states.record(b, nil)
	for i, target := range targets[1:] {
		proceed := func() bool { return ctx.Err() == nil }
		if err := ss.SolveEquilibriumPath(target, proceed); err != nil {
			return states, err
		}
		if err := ctx.Err(); err != nil {
			return states, err
		}
		states.record(b, nil)
		if progress != nil {
			progress(float64(i+1) / float64(len(targets)-1))
		}
	}
	return states, nil
}
