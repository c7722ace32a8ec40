package geometry

import (
	"math"
	"testing"

	"github.com/bow-simulation/virtualbow-sub001/internal/numerics"
	"honnef.co/go/curve"
)

func TestClothoidLineIsCollinear(t *testing.T) {
	p0 := curve.Pt(0.3, -0.2)
	seg := NewClothoid(1.0, p0, 0.7, 0, 0, 2.0)

	dir := curve.VecFromAngle(0.7)
	for _, s := range numerics.Linspace(1.0, 3.0, 25) {
		p := seg.Position(s)
		d := p.Sub(p0)
		diff(t, 0.0, dir.Cross(d), approx(1e-12))
		diff(t, s-1.0, dir.Dot(d), approx(1e-12))
		diff(t, 0.7, seg.Angle(s), approx(1e-15))
		diff(t, 0.0, seg.Curvature(s))
	}
}

func TestClothoidArcHasConstantRadius(t *testing.T) {
	for _, k := range []float64{2.5, -0.8, 1e-7} {
		p0 := curve.Pt(1, 2)
		phi0 := -0.4
		seg := NewClothoid(0, p0, phi0, k, k, 1.5)

		r := 1 / k
		center := p0.Translate(curve.VecFromAngle(phi0 + math.Pi/2).Mul(r))
		for _, s := range numerics.Linspace(0, 1.5, 31) {
			dist := seg.Position(s).Distance(center)
			if math.Abs(dist-math.Abs(r)) > 1e-9*math.Max(1, math.Abs(r)) {
				t.Errorf("k = %g: distance from center %g at s = %g, want %g", k, dist, s, math.Abs(r))
			}
			diff(t, k, seg.Curvature(s), approx(1e-14))
		}
	}
}

func TestClothoidSpiralMatchesQuadrature(t *testing.T) {
	tests := []struct {
		k0, k1, l, phi0 float64
	}{
		{0, 3, 1.0, 0},
		{1, -2, 0.8, 0.3},
		{-4, 0.5, 0.5, math.Pi / 2},
		{2, 2.5, 1.2, -1},
	}
	for _, tt := range tests {
		p0 := curve.Pt(0.1, 0.2)
		seg := NewClothoid(0.5, p0, tt.phi0, tt.k0, tt.k1, tt.l)
		a, b, c := seg.Coefficients()
		diff(t, (tt.k1-tt.k0)/(2*tt.l), a, approx(1e-15))
		diff(t, tt.k0, b)
		diff(t, tt.phi0, c)

		for _, s := range numerics.Linspace(0.5, 0.5+tt.l, 7) {
			x, err := numerics.AdaptiveSimpson(func(u float64) float64 { return math.Cos(seg.Angle(u)) }, 0.5, s, 1e-13, 50)
			if err != nil {
				t.Fatal(err)
			}
			y, err := numerics.AdaptiveSimpson(func(u float64) float64 { return math.Sin(seg.Angle(u)) }, 0.5, s, 1e-13, 50)
			if err != nil {
				t.Fatal(err)
			}
			want := p0.Translate(curve.Vec(x, y))
			got := seg.Position(s)
			if got.Distance(want) > 1e-9 {
				t.Errorf("spiral %+v at s = %g: got %v, want %v", tt, s, got, want)
			}
		}
		diff(t, tt.k1, seg.Curvature(0.5+tt.l), approx(1e-12))
	}
}
