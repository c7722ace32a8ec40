package geometry

import (
	"fmt"
	"math"

	"github.com/bow-simulation/virtualbow-sub001/internal/numerics"
	"honnef.co/go/curve"
)

const (
	splineArcSamples = 20
	splineArcEpsilon = 1e-10
	splineArcDepth   = 40
)

// SplineSegment is a free-form segment through user points. It is a pair of
// natural splines x(t), y(t) over the cumulative chord length t, placed at
// the end of the previous segment and rotated into its tangent direction.
type SplineSegment struct {
	start, end float64
	frame      curve.Affine
	phi0       float64
	x, y       *numerics.CubicSpline
	t          *numerics.CubicSpline // t(s), s local arc length
}

// NewSplineSegment builds the segment from points given relative to the start
// point p0 in a frame whose x axis points along phi0. The origin is
// prepended as the first spline knot.
func NewSplineSegment(s0 float64, p0 curve.Point, phi0 float64, points [][2]float64) (*SplineSegment, error) {
	n := len(points) + 1
	ts := make([]float64, n)
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, p := range points {
		xs[i+1], ys[i+1] = p[0], p[1]
		ts[i+1] = ts[i] + math.Hypot(xs[i+1]-xs[i], ys[i+1]-ys[i])
		if ts[i+1] == ts[i] {
			return nil, fmt.Errorf("%w: spline point %d coincides with its predecessor", numerics.ErrInvalidArgument, i)
		}
	}

	x, err := numerics.NewCubicSpline(ts, xs, false)
	if err != nil {
		return nil, err
	}
	y, err := numerics.NewCubicSpline(ts, ys, false)
	if err != nil {
		return nil, err
	}

	speed := func(t float64) float64 {
		return math.Hypot(x.Deriv1(t), y.Deriv1(t))
	}

	// tabulate arc length over t, then invert
	tTab := []float64{0}
	sTab := []float64{0}
	for i := 0; i+1 < n; i++ {
		sub := numerics.Linspace(ts[i], ts[i+1], splineArcSamples+1)
		for k := 1; k < len(sub); k++ {
			ds, err := numerics.AdaptiveSimpson(speed, sub[k-1], sub[k], splineArcEpsilon, splineArcDepth)
			if err != nil {
				return nil, fmt.Errorf("spline segment arc length: %w", err)
			}
			tTab = append(tTab, sub[k])
			sTab = append(sTab, sTab[len(sTab)-1]+ds)
		}
	}
	tOfS, err := numerics.NewCubicSpline(sTab, tTab, true)
	if err != nil {
		return nil, err
	}

	return &SplineSegment{
		start: s0,
		end:   s0 + sTab[len(sTab)-1],
		frame: curve.Rotate(phi0).ThenTranslate(curve.Vec2(p0)),
		phi0:  phi0,
		x:     x,
		y:     y,
		t:     tOfS,
	}, nil
}

func (seg *SplineSegment) Start() float64 { return seg.start }
func (seg *SplineSegment) End() float64   { return seg.end }

func (seg *SplineSegment) param(s float64) float64 {
	return seg.t.Value(s - seg.start)
}

func (seg *SplineSegment) Curvature(s float64) float64 {
	t := seg.param(s)
	dx, dy := seg.x.Deriv1(t), seg.y.Deriv1(t)
	ddx, ddy := seg.x.Deriv2(t), seg.y.Deriv2(t)
	return (dx*ddy - dy*ddx) / math.Pow(dx*dx+dy*dy, 1.5)
}

func (seg *SplineSegment) Angle(s float64) float64 {
	t := seg.param(s)
	return seg.phi0 + math.Atan2(seg.y.Deriv1(t), seg.x.Deriv1(t))
}

func (seg *SplineSegment) Position(s float64) curve.Point {
	t := seg.param(s)
	return curve.Pt(seg.x.Value(t), seg.y.Value(t)).Transform(seg.frame)
}
