package geometry

import (
	"math"

	"github.com/bow-simulation/virtualbow-sub001/internal/numerics"
	"honnef.co/go/curve"
)

// ClothoidSegment is a curve whose curvature changes linearly with arc length.
// Its tangent angle is φ(t) = a t² + b t + c over the local arc length
// t = s - start. Lines (a = b = 0) and circular arcs (a = 0) are special cases.
type ClothoidSegment struct {
	start, end float64
	p0         curve.Point
	a, b, c    float64
}

// NewClothoid starts a segment at arc length s0 and point p0 with tangent
// angle phi0, curvature k0 at the start and k1 after length l.
func NewClothoid(s0 float64, p0 curve.Point, phi0, k0, k1, l float64) *ClothoidSegment {
	return &ClothoidSegment{
		start: s0,
		end:   s0 + l,
		p0:    p0,
		a:     (k1 - k0) / (2 * l),
		b:     k0,
		c:     phi0,
	}
}

// Coefficients returns (a, b, c) of the tangent angle polynomial.
func (seg *ClothoidSegment) Coefficients() (a, b, c float64) {
	return seg.a, seg.b, seg.c
}

func (seg *ClothoidSegment) Start() float64 { return seg.start }
func (seg *ClothoidSegment) End() float64   { return seg.end }

func (seg *ClothoidSegment) Curvature(s float64) float64 {
	t := s - seg.start
	return 2*seg.a*t + seg.b
}

func (seg *ClothoidSegment) Angle(s float64) float64 {
	t := s - seg.start
	return (seg.a*t+seg.b)*t + seg.c
}

func (seg *ClothoidSegment) Position(s float64) curve.Point {
	t := s - seg.start
	l := seg.end - seg.start

	// a changes the position by about a t³/3; below that the arc form is exact enough
	if math.Abs(seg.a)*l*l <= 1e-10*(1+math.Abs(seg.b)*l) {
		if seg.b == 0 {
			return seg.p0.Translate(curve.VecFromAngle(seg.c).Mul(t))
		}
		// chord of the arc: length 2 sin(bt/2)/b in direction c + bt/2
		chord := 2 * math.Sin(seg.b*t/2) / seg.b
		return seg.p0.Translate(curve.VecFromAngle(seg.c + seg.b*t/2).Mul(chord))
	}

	if seg.a > 0 {
		x, y := fresnelIntegrals(seg.a, seg.b, seg.c, t)
		return seg.p0.Translate(curve.Vec(x, y))
	}
	// cos(φ) = cos(-φ), sin(φ) = -sin(-φ)
	x, y := fresnelIntegrals(-seg.a, -seg.b, -seg.c, t)
	return seg.p0.Translate(curve.Vec(x, -y))
}

// fresnelIntegrals returns ∫₀ᵗ (cos φ, sin φ) dτ for φ = a τ² + b τ + c, a > 0.
// Completing the square gives φ = π/2 u² + θ with u = (τ + b/2a)·sqrt(2a/π).
func fresnelIntegrals(a, b, c, t float64) (x, y float64) {
	scale := math.Sqrt(2 * a / math.Pi)
	theta := c - b*b/(4*a)
	u0 := b / (2 * a) * scale
	u1 := (t + b/(2*a)) * scale

	s0, c0 := numerics.Fresnel(u0)
	s1, c1 := numerics.Fresnel(u1)
	dS, dC := s1-s0, c1-c0

	sn, cs := math.Sincos(theta)
	return (cs*dC - sn*dS) / scale, (sn*dC + cs*dS) / scale
}
