package numerics

import (
	"fmt"
	"math"
)

// CubicSpline is a piecewise cubic interpolant through a set of knots.
// Each interval [x[i], x[i+1]) is stored as the polynomial
// y = a + b t + c t² + d t³ with t = x - x[i]. Evaluation outside the
// knot range continues the boundary cubic.
type CubicSpline struct {
	x, y      []float64
	b, c, d   []float64
	monotonic bool
}

// NewCubicSpline interpolates the points (x[i], y[i]). The points may be given
// in any order. With monotonic set, slopes are limited so that the spline is
// monotonic wherever the data is; otherwise a natural C2 spline is built.
func NewCubicSpline(x, y []float64, monotonic bool) (*CubicSpline, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: spline needs equal argument and value counts (%d != %d)", ErrInvalidArgument, len(x), len(y))
	}
	if len(x) < 2 {
		return nil, fmt.Errorf("%w: spline needs at least two points, got %d", ErrInvalidArgument, len(x))
	}

	idx := ArgSort(x)
	xs := make([]float64, len(x))
	ys := make([]float64, len(y))
	for i, k := range idx {
		xs[i], ys[i] = x[k], y[k]
		if math.IsNaN(xs[i]) || math.IsInf(xs[i], 0) || math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			return nil, fmt.Errorf("%w: spline point %d is not finite", ErrInvalidArgument, k)
		}
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] == xs[i-1] {
			return nil, fmt.Errorf("%w: duplicate spline argument %g", ErrInvalidArgument, xs[i])
		}
	}

	var m []float64
	if monotonic {
		m = monotonicSlopes(xs, ys)
	} else {
		m = naturalSlopes(xs, ys)
	}

	n := len(xs) - 1
	sp := &CubicSpline{
		x:         xs,
		y:         ys,
		b:         make([]float64, n),
		c:         make([]float64, n),
		d:         make([]float64, n),
		monotonic: monotonic,
	}
	for i := 0; i < n; i++ {
		h := xs[i+1] - xs[i]
		delta := (ys[i+1] - ys[i]) / h
		sp.b[i] = m[i]
		sp.c[i] = (3*delta - 2*m[i] - m[i+1]) / h
		sp.d[i] = (m[i] + m[i+1] - 2*delta) / (h * h)
	}
	return sp, nil
}

// secants returns interval widths and slopes.
func secants(x, y []float64) (h, delta []float64) {
	n := len(x) - 1
	h = make([]float64, n)
	delta = make([]float64, n)
	for i := 0; i < n; i++ {
		h[i] = x[i+1] - x[i]
		delta[i] = (y[i+1] - y[i]) / h[i]
	}
	return
}

// monotonicSlopes computes Fritsch-Carlson slopes: zero at local extrema of
// the data, weighted harmonic means of the neighbouring secants elsewhere.
func monotonicSlopes(x, y []float64) []float64 {
	h, delta := secants(x, y)
	n := len(x)
	m := make([]float64, n)
	if n == 2 {
		m[0], m[1] = delta[0], delta[0]
		return m
	}
	for i := 1; i < n-1; i++ {
		if delta[i-1]*delta[i] <= 0 {
			continue
		}
		w1 := 2*h[i] + h[i-1]
		w2 := h[i] + 2*h[i-1]
		m[i] = (w1 + w2) / (w1/delta[i-1] + w2/delta[i])
	}
	m[0] = endSlope(h[0], h[1], delta[0], delta[1])
	m[n-1] = endSlope(h[n-2], h[n-3], delta[n-2], delta[n-3])
	return m
}

// endSlope is the one-sided three-point slope, limited to keep monotonicity.
func endSlope(h0, h1, d0, d1 float64) float64 {
	m := ((2*h0+h1)*d0 - h0*d1) / (h0 + h1)
	if Sgn(m) != Sgn(d0) {
		return 0
	}
	if Sgn(d0) != Sgn(d1) && math.Abs(m) > 3*math.Abs(d0) {
		return 3 * d0
	}
	return m
}

// naturalSlopes derives knot slopes from the second derivatives of the
// natural spline, found with the tridiagonal (Thomas) algorithm.
func naturalSlopes(x, y []float64) []float64 {
	h, delta := secants(x, y)
	n := len(x)
	m := make([]float64, n)
	if n == 2 {
		m[0], m[1] = delta[0], delta[0]
		return m
	}

	// second derivatives M[1..n-2], M[0] = M[n-1] = 0
	M := make([]float64, n)
	diag := make([]float64, n)
	rhs := make([]float64, n)
	for i := 1; i < n-1; i++ {
		diag[i] = 2 * (h[i-1] + h[i])
		rhs[i] = 6 * (delta[i] - delta[i-1])
	}
	for i := 2; i < n-1; i++ {
		w := h[i-1] / diag[i-1]
		diag[i] -= w * h[i-1]
		rhs[i] -= w * rhs[i-1]
	}
	for i := n - 2; i >= 1; i-- {
		M[i] = (rhs[i] - h[i]*M[i+1]) / diag[i]
	}

	for i := 0; i < n-1; i++ {
		m[i] = delta[i] - h[i]*(2*M[i]+M[i+1])/6
	}
	m[n-1] = delta[n-2] + h[n-2]*(M[n-2]+2*M[n-1])/6
	return m
}

func (s *CubicSpline) interval(x float64) (int, float64) {
	i := FindInterval(s.x, x, -1)
	return i, x - s.x[i]
}

// Value returns the spline value at x.
func (s *CubicSpline) Value(x float64) float64 {
	i, t := s.interval(x)
	if t == 0 {
		return s.y[i]
	}
	if x == s.x[i+1] {
		return s.y[i+1]
	}
	return s.y[i] + t*(s.b[i]+t*(s.c[i]+t*s.d[i]))
}

// Deriv1 returns the first derivative at x.
func (s *CubicSpline) Deriv1(x float64) float64 {
	i, t := s.interval(x)
	return s.b[i] + t*(2*s.c[i]+3*t*s.d[i])
}

// Deriv2 returns the second derivative at x.
func (s *CubicSpline) Deriv2(x float64) float64 {
	i, t := s.interval(x)
	return 2*s.c[i] + 6*t*s.d[i]
}

// ArgMin returns the smallest knot argument.
func (s *CubicSpline) ArgMin() float64 { return s.x[0] }

// ArgMax returns the largest knot argument.
func (s *CubicSpline) ArgMax() float64 { return s.x[len(s.x)-1] }

// Monotonic reports whether the spline was built with slope limiting.
func (s *CubicSpline) Monotonic() bool { return s.monotonic }

// Sample evaluates the spline at each of xs.
func (s *CubicSpline) Sample(xs []float64) []float64 {
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = s.Value(x)
	}
	return ys
}
