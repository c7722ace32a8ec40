package model

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/bow-simulation/virtualbow-sub001/internal/fem"
	"github.com/bow-simulation/virtualbow-sub001/internal/solver"
)

func newTestBow(t *testing.T) (*Bow, *InputData) {
	t.Helper()
	in := longbow()
	lp, err := NewLimbProperties(in)
	if err != nil {
		t.Fatal(err)
	}
	return NewBow(in, lp, in.Dimensions.BraceHeight), in
}

func TestBowStructure(t *testing.T) {
	b, in := newTestBow(t)
	nl, ns := in.Settings.NLimbElements, in.Settings.NStringElements
	s := b.System

	diff(t, nl+1, len(b.LimbNodes))
	diff(t, ns+1, len(b.StringNodes))
	diff(t, nl, len(b.Beams))
	diff(t, ns, len(b.Bars))
	diff(t, nl*(ns-1), len(b.Contacts))
	diff(t, []string{GroupArrow, GroupContact, GroupLimb, GroupString}, s.Groups())
	diff(t, nl+1, len(s.Group(GroupLimb)))
	diff(t, ns+3, len(s.Group(GroupString)))

	// limb nodes except the root, string nodes in the plane, string center on the axis
	diff(t, 3*nl+2*ns+1, s.Dofs())
	for _, dof := range b.Root().Dofs() {
		diff(t, fem.Fixed, dof.Type)
	}
	diff(t, fem.Active, b.Center().X.Type)
	diff(t, fem.Fixed, b.Center().Y.Type)
	for _, n := range b.StringNodes {
		diff(t, fem.Fixed, n.Phi.Type)
	}

	diff(t, in.Dimensions.BraceHeight, s.GetU(b.Center().X))
	diff(t, 0.0, s.GetU(b.Center().Y))
	xt, yt := b.Limb.Belly(b.Limb.Nodes() - 1)
	diff(t, []float64{xt, yt}, []float64{s.GetU(b.StringNodes[0].X), s.GetU(b.StringNodes[0].Y)})
	diff(t, math.Hypot(in.Dimensions.BraceHeight-xt, yt), b.StringLength(), approx(1e-12))
}

func TestBowUnloaded(t *testing.T) {
	b, _ := newTestBow(t)
	s := b.System

	// the straight string has its rest length, nothing is loaded
	diff(t, 0.0, s.PotentialEnergy(), cmpAbs(1e-12))
	diff(t, 0.0, b.StringForce(), cmpAbs(1e-9))
	for _, c := range b.Contacts {
		if c.Gap() < 0 {
			t.Fatalf("string starts in contact, gap %g", c.Gap())
		}
	}
	for _, q := range s.Q() {
		if math.Abs(q) > 1e-6 {
			t.Fatalf("unexpected internal force %g", q)
		}
	}
}

func TestBowStringLength(t *testing.T) {
	b, _ := newTestBow(t)
	l := b.StringLength()

	b.SetStringLength(0.99 * l)
	diff(t, 0.99*l, b.StringLength(), approx(1e-12))
	for _, bar := range b.Bars {
		diff(t, 0.99*l/float64(len(b.Bars)), bar.Length(), approx(1e-12))
	}
	if b.StringForce() <= 0 {
		t.Errorf("shortened string should be in tension, got %g", b.StringForce())
	}
}

func TestBowDamping(t *testing.T) {
	b, _ := newTestBow(t)
	s := b.System
	diff(t, 0.0, mat.Norm(s.D(), 1))

	b.SetDamping(1e-3, 1e-4)
	if mat.Norm(s.D(), 1) <= 0 {
		t.Error("expected damping after SetDamping")
	}
}

func TestBowTimestepDamping(t *testing.T) {
	b, in := newTestBow(t)
	s := b.System
	factor := in.Settings.TimeStepFactor

	undamped, err := solver.EstimateTimestep(s, factor)
	if err != nil {
		t.Fatal(err)
	}
	dt, err := timestep(s, factor)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, undamped, dt, approx(1e-4))

	// stiffness proportional damping is strongest in the stiffest modes
	b.SetDamping(1e-3, 1e-3)
	if dt, err = timestep(s, factor); err != nil {
		t.Fatal(err)
	}
	if !(dt < 0.5*undamped) {
		t.Errorf("damped timestep %g not restricted below undamped %g", dt, undamped)
	}
}
