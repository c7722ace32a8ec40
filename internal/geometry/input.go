package geometry

import (
	"fmt"
	"math"

	"github.com/bow-simulation/virtualbow-sub001/internal/numerics"
)

type SegmentType string

const (
	SegmentLine   SegmentType = "line"
	SegmentArc    SegmentType = "arc"
	SegmentSpiral SegmentType = "spiral"
	SegmentSpline SegmentType = "spline"
)

// SegmentInput describes one profile segment. Which fields are used depends
// on Type:
//
//	line:   Length
//	arc:    Length, Radius
//	spiral: Length, RadiusStart, RadiusEnd
//	spline: Points, given in the frame of the segment start
//
// A radius of zero stands for zero curvature; its sign selects the bending
// direction (positive turns counter-clockwise).
type SegmentInput struct {
	Type        SegmentType  `yaml:"type" json:"type"`
	Length      float64      `yaml:"length,omitempty" json:"length,omitempty"`
	Radius      float64      `yaml:"radius,omitempty" json:"radius,omitempty"`
	RadiusStart float64      `yaml:"r_start,omitempty" json:"r_start,omitempty"`
	RadiusEnd   float64      `yaml:"r_end,omitempty" json:"r_end,omitempty"`
	Points      [][2]float64 `yaml:"points,omitempty" json:"points,omitempty"`
}

func Line(length float64) SegmentInput {
	return SegmentInput{Type: SegmentLine, Length: length}
}

func Arc(length, radius float64) SegmentInput {
	return SegmentInput{Type: SegmentArc, Length: length, Radius: radius}
}

func Spiral(length, rStart, rEnd float64) SegmentInput {
	return SegmentInput{Type: SegmentSpiral, Length: length, RadiusStart: rStart, RadiusEnd: rEnd}
}

func Spline(points ...[2]float64) SegmentInput {
	return SegmentInput{Type: SegmentSpline, Points: points}
}

// Validate checks the input for the fields its type uses.
func (in SegmentInput) Validate() error {
	finite := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

	switch in.Type {
	case SegmentLine, SegmentArc, SegmentSpiral:
		if !finite(in.Length) || in.Length <= 0 {
			return fmt.Errorf("%w: %s segment length must be positive, got %g", numerics.ErrInvalidArgument, in.Type, in.Length)
		}
		for _, r := range []float64{in.Radius, in.RadiusStart, in.RadiusEnd} {
			if !finite(r) {
				return fmt.Errorf("%w: %s segment radius must be finite", numerics.ErrInvalidArgument, in.Type)
			}
		}
	case SegmentSpline:
		if len(in.Points) < 1 {
			return fmt.Errorf("%w: spline segment needs at least one point", numerics.ErrInvalidArgument)
		}
		for i, p := range in.Points {
			if !finite(p[0]) || !finite(p[1]) {
				return fmt.Errorf("%w: spline point %d is not finite", numerics.ErrInvalidArgument, i)
			}
		}
	default:
		return fmt.Errorf("%w: unknown segment type %q", numerics.ErrInvalidArgument, in.Type)
	}
	return nil
}

// curvatures returns the start and end curvature of line, arc and spiral inputs.
func (in SegmentInput) curvatures() (k0, k1 float64) {
	inv := func(r float64) float64 {
		if r == 0 {
			return 0
		}
		return 1 / r
	}
	switch in.Type {
	case SegmentArc:
		return inv(in.Radius), inv(in.Radius)
	case SegmentSpiral:
		return inv(in.RadiusStart), inv(in.RadiusEnd)
	}
	return 0, 0
}
