package numerics

import (
	"fmt"
	"math"
)

// AdaptiveSimpson integrates f over [a, b] to the absolute tolerance epsilon
// by recursive interval bisection. Recursion deeper than maxDepth means the
// integrand does not settle and is reported as ErrNoConvergence.
func AdaptiveSimpson(f func(float64) float64, a, b, epsilon float64, maxDepth int) (float64, error) {
	fa, fm, fb := f(a), f(0.5*(a+b)), f(b)
	whole := (b - a) / 6 * (fa + 4*fm + fb)
	return simpsonStep(f, a, b, fa, fm, fb, whole, epsilon, maxDepth)
}

func simpsonStep(f func(float64) float64, a, b, fa, fm, fb, whole, epsilon float64, depth int) (float64, error) {
	m := 0.5 * (a + b)
	lm, rm := 0.5*(a+m), 0.5*(m+b)
	flm, frm := f(lm), f(rm)
	left := (m - a) / 6 * (fa + 4*flm + fm)
	right := (b - m) / 6 * (fm + 4*frm + fb)
	delta := left + right - whole

	if math.Abs(delta) <= 15*epsilon {
		return left + right + delta/15, nil
	}
	if depth <= 0 {
		return math.NaN(), fmt.Errorf("%w: adaptive simpson exceeded recursion depth on [%g, %g]", ErrNoConvergence, a, b)
	}

	l, err := simpsonStep(f, a, m, fa, flm, fm, left, epsilon/2, depth-1)
	if err != nil {
		return math.NaN(), err
	}
	r, err := simpsonStep(f, m, b, fm, frm, fb, right, epsilon/2, depth-1)
	if err != nil {
		return math.NaN(), err
	}
	return l + r, nil
}
