package numerics

import (
	"fmt"
	"math"
)

var invPhi = (math.Sqrt(5) - 1) / 2

// GoldenSectionSearch returns the minimum of the unimodal function f on
// [xa, xb] to within xtol. It fails with ErrNoConvergence if iterMax
// bracket reductions do not reach the tolerance.
func GoldenSectionSearch(f func(float64) float64, xa, xb, xtol float64, iterMax int) (float64, error) {
	a, b := math.Min(xa, xb), math.Max(xa, xb)
	c := b - invPhi*(b-a)
	d := a + invPhi*(b-a)
	fc, fd := f(c), f(d)

	for i := 0; i < iterMax; i++ {
		if b-a <= xtol {
			return 0.5 * (a + b), nil
		}
		if fc < fd {
			b, d, fd = d, c, fc
			c = b - invPhi*(b-a)
			fc = f(c)
		} else {
			a, c, fc = c, d, fd
			d = a + invPhi*(b-a)
			fd = f(d)
		}
	}
	if b-a <= xtol {
		return 0.5 * (a + b), nil
	}
	return math.NaN(), fmt.Errorf("%w: golden section search after %d iterations, bracket width %g", ErrNoConvergence, iterMax, b-a)
}
