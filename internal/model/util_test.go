package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/bow-simulation/virtualbow-sub001/internal/geometry"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

func approx(tol float64) cmp.Option {
	return cmpopts.EquateApprox(tol, 1e-12)
}

// longbow is a straight wooden limb with a tapered width and height.
func longbow() *InputData {
	set := DefaultSettings()
	set.NLimbElements = 10
	set.NStringElements = 5
	set.NDrawSteps = 6
	return &InputData{
		Profile: []geometry.SegmentInput{geometry.Line(0.8)},
		Width:   [][2]float64{{0, 0.03}, {1, 0.01}},
		Layers: []Layer{
			{Name: "wood", Rho: 600, E: 12e9, Height: [][2]float64{{0, 0.015}, {1, 0.008}}},
		},
		String:     String{StrandStiffness: 3500, StrandDensity: 0.0005, NStrands: 12},
		Masses:     Masses{Arrow: 0.025, StringCenter: 0.005, StringTip: 0.0005, LimbTip: 0.005},
		Damping:    Damping{RatioLimbs: 0.05, RatioString: 0.05},
		Dimensions: Dimensions{BraceHeight: 0.2, DrawLength: 0.7, HandleLength: 0.1},
		Settings:   set,
	}
}

// cmpAbs compares floats with an absolute tolerance.
func cmpAbs(tol float64) cmp.Option {
	return cmpopts.EquateApprox(0, tol)
}
