package model

import (
	"errors"
	"math"
	"testing"

	"github.com/bow-simulation/virtualbow-sub001/internal/geometry"
)

func TestValidate(t *testing.T) {
	if err := longbow().Validate(); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	tests := []struct {
		name   string
		modify func(in *InputData)
		field  string
	}{
		{"no profile", func(in *InputData) { in.Profile = nil }, "profile"},
		{"bad segment", func(in *InputData) { in.Profile = []geometry.SegmentInput{geometry.Line(-1)} }, "profile"},
		{"no width", func(in *InputData) { in.Width = nil }, "width"},
		{"zero width", func(in *InputData) { in.Width = [][2]float64{{0, 0}} }, "width"},
		{"width outside limb", func(in *InputData) { in.Width = [][2]float64{{1.5, 0.01}} }, "width"},
		{"no layers", func(in *InputData) { in.Layers = nil }, "layers"},
		{"negative modulus", func(in *InputData) { in.Layers[0].E = -1 }, "layers.wood"},
		{"negative height", func(in *InputData) { in.Layers[0].Height = [][2]float64{{0, -0.01}} }, "layers.wood.height"},
		{"no strands", func(in *InputData) { in.String.NStrands = 0 }, "string.n_strands"},
		{"weightless string", func(in *InputData) { in.String.StrandDensity = 0 }, "string.strand_density"},
		{"negative mass", func(in *InputData) { in.Masses.LimbTip = -1 }, "masses.limb_tip"},
		{"infinite mass", func(in *InputData) { in.Masses.StringTip = math.Inf(1) }, "masses.string_tip"},
		{"no arrow", func(in *InputData) { in.Masses.Arrow = 0 }, "masses.arrow"},
		{"overdamped", func(in *InputData) { in.Damping.RatioLimbs = 1 }, "damping.ratio_limbs"},
		{"draw below brace", func(in *InputData) { in.Dimensions.DrawLength = 0.1 }, "dimensions.draw_length"},
		{"one limb element", func(in *InputData) { in.Settings.NLimbElements = 1 }, "settings.n_limb_elements"},
		{"timestep factor", func(in *InputData) { in.Settings.TimeStepFactor = 2 }, "settings.time_step_factor"},
		{"static steps", func(in *InputData) { in.Settings.Static.StepMin = 1 }, "settings.static"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := longbow()
			tt.modify(in)
			err := in.Validate()
			var ie *InputError
			if !errors.As(err, &ie) {
				t.Fatalf("expected *InputError, got %v", err)
			}
			if ie.Field != tt.field {
				t.Errorf("expected field %q, got %q (%v)", tt.field, ie.Field, err)
			}
			if !IsInputError(err) {
				t.Error("IsInputError should report the error")
			}
		})
	}
}

func TestDefaultSettingsValid(t *testing.T) {
	if err := DefaultSettings().Validate(); err != nil {
		t.Fatal(err)
	}
}
