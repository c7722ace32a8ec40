package geometry

import (
	"fmt"

	"github.com/bow-simulation/virtualbow-sub001/internal/numerics"
	"honnef.co/go/curve"
)

// Segment is one piece of a profile curve, covering the arc length interval
// [Start(), End()).
type Segment interface {
	Start() float64
	End() float64
	Curvature(s float64) float64
	Angle(s float64) float64
	Position(s float64) curve.Point
}

// ProfilePoint is the state of the curve at one arc length.
type ProfilePoint struct {
	S         float64
	Position  curve.Point
	Angle     float64
	Curvature float64
}

// ProfileCurve is a chain of segments with contiguous arc length intervals,
// each starting where and in the direction its predecessor ends.
type ProfileCurve struct {
	segments []Segment
	hint     int
}

// NewProfileCurve builds the curve from its segment inputs, starting at
// (x0, y0) with tangent angle phi0. Invalid input yields an error and no curve.
func NewProfileCurve(inputs []SegmentInput, x0, y0, phi0 float64) (*ProfileCurve, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: profile needs at least one segment", numerics.ErrInvalidArgument)
	}

	s, p, phi := 0.0, curve.Pt(x0, y0), phi0
	segments := make([]Segment, 0, len(inputs))
	for i, in := range inputs {
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("profile segment %d: %w", i, err)
		}

		var seg Segment
		if in.Type == SegmentSpline {
			sp, err := NewSplineSegment(s, p, phi, in.Points)
			if err != nil {
				return nil, fmt.Errorf("profile segment %d: %w", i, err)
			}
			seg = sp
		} else {
			k0, k1 := in.curvatures()
			seg = NewClothoid(s, p, phi, k0, k1, in.Length)
		}

		s, p, phi = seg.End(), seg.Position(seg.End()), seg.Angle(seg.End())
		segments = append(segments, seg)
	}

	return &ProfileCurve{segments: segments}, nil
}

func (pc *ProfileCurve) Segments() []Segment { return pc.segments }

func (pc *ProfileCurve) Length() float64 {
	return pc.segments[len(pc.segments)-1].End()
}

// segment returns the segment containing s, clamping s into [0, Length()].
// The last found index is kept as a hint, so walking along the curve in
// small steps costs no search.
func (pc *ProfileCurve) segment(s float64) (Segment, float64) {
	s = numerics.Clamp(s, 0, pc.Length())
	i := pc.hint
	if i < 0 || i >= len(pc.segments) {
		i = 0
	}
	for i > 0 && s < pc.segments[i].Start() {
		i--
	}
	for i < len(pc.segments)-1 && s >= pc.segments[i].End() {
		i++
	}
	pc.hint = i
	return pc.segments[i], s
}

func (pc *ProfileCurve) Curvature(s float64) float64 {
	seg, s := pc.segment(s)
	return seg.Curvature(s)
}

func (pc *ProfileCurve) Angle(s float64) float64 {
	seg, s := pc.segment(s)
	return seg.Angle(s)
}

func (pc *ProfileCurve) Position(s float64) curve.Point {
	seg, s := pc.segment(s)
	return seg.Position(s)
}

func (pc *ProfileCurve) Point(s float64) ProfilePoint {
	seg, s := pc.segment(s)
	return ProfilePoint{
		S:         s,
		Position:  seg.Position(s),
		Angle:     seg.Angle(s),
		Curvature: seg.Curvature(s),
	}
}

// Sample evaluates the curve at n equidistant arc lengths.
func (pc *ProfileCurve) Sample(n int) []ProfilePoint {
	points := make([]ProfilePoint, 0, n)
	for _, s := range numerics.Linspace(0, pc.Length(), n) {
		points = append(points, pc.Point(s))
	}
	return points
}
