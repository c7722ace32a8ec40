package numerics

import (
	"fmt"
	"math"
)

// RegulaFalsi finds a root of f between x0 and x1, which must bracket a sign
// change (Illinois variant). The iteration stops once |f(x)| <= ftol.
func RegulaFalsi(f func(float64) float64, x0, x1, ftol float64, iterMax int) (float64, error) {
	f0, f1 := f(x0), f(x1)
	if math.Abs(f0) <= ftol {
		return x0, nil
	}
	if math.Abs(f1) <= ftol {
		return x1, nil
	}
	if f0*f1 > 0 {
		return math.NaN(), fmt.Errorf("%w: [%g, %g] does not bracket a root (f = %g, %g)", ErrInvalidArgument, x0, x1, f0, f1)
	}

	side := 0
	for i := 0; i < iterMax; i++ {
		x := (x0*f1 - x1*f0) / (f1 - f0)
		fx := f(x)
		if math.Abs(fx) <= ftol {
			return x, nil
		}
		if fx*f1 > 0 {
			x1, f1 = x, fx
			if side == -1 {
				f0 /= 2
			}
			side = -1
		} else {
			x0, f0 = x, fx
			if side == 1 {
				f1 /= 2
			}
			side = 1
		}
	}
	return math.NaN(), fmt.Errorf("%w: regula falsi after %d iterations", ErrNoConvergence, iterMax)
}
