package model

import (
	"errors"
	"math"

	"github.com/bow-simulation/virtualbow-sub001/internal/geometry"
)

// Layer is one lamination of the limb, numbered from the back towards the
// belly. Height is given as (relative arc length, height) pairs.
type Layer struct {
	Name   string       `yaml:"name" json:"name"`
	Rho    float64      `yaml:"rho" json:"rho"`
	E      float64      `yaml:"E" json:"E"`
	Height [][2]float64 `yaml:"height" json:"height"`
}

type String struct {
	StrandStiffness float64 `yaml:"strand_stiffness" json:"strand_stiffness"` // force per unit strain
	StrandDensity   float64 `yaml:"strand_density" json:"strand_density"`     // mass per length
	NStrands        int     `yaml:"n_strands" json:"n_strands"`
}

type Masses struct {
	Arrow        float64 `yaml:"arrow" json:"arrow"`
	StringCenter float64 `yaml:"string_center" json:"string_center"`
	StringTip    float64 `yaml:"string_tip" json:"string_tip"`
	LimbTip      float64 `yaml:"limb_tip" json:"limb_tip"`
}

type Damping struct {
	RatioLimbs  float64 `yaml:"ratio_limbs" json:"ratio_limbs"`
	RatioString float64 `yaml:"ratio_string" json:"ratio_string"`
}

// Dimensions place the limb relative to the grip. The x axis points in draw
// direction, the y axis along the handle.
type Dimensions struct {
	BraceHeight   float64 `yaml:"brace_height" json:"brace_height"`
	DrawLength    float64 `yaml:"draw_length" json:"draw_length"`
	HandleLength  float64 `yaml:"handle_length" json:"handle_length"`
	HandleSetback float64 `yaml:"handle_setback" json:"handle_setback"`
	HandleAngle   float64 `yaml:"handle_angle" json:"handle_angle"`
}

// InputData describes a symmetric bow. Only the upper half is simulated.
type InputData struct {
	Comment    string                  `yaml:"comment,omitempty" json:"comment,omitempty"`
	Profile    []geometry.SegmentInput `yaml:"profile" json:"profile"`
	Width      [][2]float64            `yaml:"width" json:"width"`
	Layers     []Layer                 `yaml:"layers" json:"layers"`
	String     String                  `yaml:"string" json:"string"`
	Masses     Masses                  `yaml:"masses" json:"masses"`
	Damping    Damping                 `yaml:"damping" json:"damping"`
	Dimensions Dimensions              `yaml:"dimensions" json:"dimensions"`
	Settings   Settings                `yaml:"settings" json:"settings"`
}

// Validate checks the input for values the simulation cannot handle. It
// returns an *InputError naming the first offending field.
func (in *InputData) Validate() error {
	if len(in.Profile) == 0 {
		return invalid("profile", "no segments")
	}
	for i, seg := range in.Profile {
		if err := seg.Validate(); err != nil {
			return invalid("profile", "segment %d: %v", i, err)
		}
	}
	if err := validateDistribution("width", in.Width, false); err != nil {
		return err
	}
	if len(in.Layers) == 0 {
		return invalid("layers", "no layers")
	}
	for _, l := range in.Layers {
		field := "layers." + l.Name
		if !(l.E > 0) || !(l.Rho > 0) {
			return invalid(field, "E and rho must be positive")
		}
		if err := validateDistribution(field+".height", l.Height, true); err != nil {
			return err
		}
	}

	switch s := in.String; {
	case !(s.StrandStiffness > 0):
		return invalid("string.strand_stiffness", "must be positive")
	case !(s.StrandDensity > 0):
		return invalid("string.strand_density", "must be positive")
	case s.NStrands < 1:
		return invalid("string.n_strands", "need at least one strand")
	}

	masses := []struct {
		name string
		m    float64
	}{
		{"masses.arrow", in.Masses.Arrow},
		{"masses.string_center", in.Masses.StringCenter},
		{"masses.string_tip", in.Masses.StringTip},
		{"masses.limb_tip", in.Masses.LimbTip},
	}
	for _, m := range masses {
		if !(m.m >= 0) || math.IsInf(m.m, 0) {
			return invalid(m.name, "must be finite and not negative")
		}
	}
	if !(in.Masses.Arrow > 0) {
		return invalid("masses.arrow", "must be positive")
	}

	if r := in.Damping.RatioLimbs; !(r >= 0 && r < 1) {
		return invalid("damping.ratio_limbs", "must be in [0, 1)")
	}
	if r := in.Damping.RatioString; !(r >= 0 && r < 1) {
		return invalid("damping.ratio_string", "must be in [0, 1)")
	}

	d := in.Dimensions
	switch {
	case !(d.BraceHeight > 0):
		return invalid("dimensions.brace_height", "must be positive")
	case !(d.DrawLength > d.BraceHeight):
		return invalid("dimensions.draw_length", "must exceed the brace height")
	case !(d.HandleLength >= 0):
		return invalid("dimensions.handle_length", "must not be negative")
	case math.IsNaN(d.HandleSetback) || math.IsNaN(d.HandleAngle):
		return invalid("dimensions", "handle setback and angle must be numbers")
	}

	return in.Settings.Validate()
}

func validateDistribution(field string, points [][2]float64, allowZero bool) error {
	if len(points) == 0 {
		return invalid(field, "no points")
	}
	for _, p := range points {
		if !(p[0] >= 0 && p[0] <= 1) {
			return invalid(field, "relative position %g outside [0, 1]", p[0])
		}
		if !(p[1] > 0 || allowZero && p[1] == 0) {
			return invalid(field, "value %g at %g", p[1], p[0])
		}
	}
	return nil
}

// IsInputError reports whether err is caused by invalid input.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
