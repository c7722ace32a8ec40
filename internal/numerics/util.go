package numerics

import (
	"math"
	"sort"
)

// Sgn returns the sign of x as -1, 0 or 1.
func Sgn(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// Clamp limits x to the interval spanned by a and b, in either order.
func Clamp(x, a, b float64) float64 {
	lo, hi := math.Min(a, b), math.Max(a, b)
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Linspace returns n equally spaced values from a to b inclusive.
func Linspace(a, b float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{a}
	}
	xs := make([]float64, n)
	h := (b - a) / float64(n-1)
	for i := range xs {
		xs[i] = a + float64(i)*h
	}
	xs[n-1] = b
	return xs
}

// Trapz integrates tabulated values with the trapezoidal rule.
func Trapz(x, y []float64) float64 {
	sum := 0.0
	for i := 1; i < len(x) && i < len(y); i++ {
		sum += 0.5 * (x[i] - x[i-1]) * (y[i] + y[i-1])
	}
	return sum
}

// ArgSort returns the permutation that sorts x in ascending order. Equal
// values keep their original relative order.
func ArgSort(x []float64) []int {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return x[idx[i]] < x[idx[j]]
	})
	return idx
}
