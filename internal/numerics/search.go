package numerics

import "sort"

// FindInterval returns the index i of the interval args[i] <= x < args[i+1].
// Values outside the table map to the first or last interval. The hint is an
// index from a previous lookup; it and its neighbours are checked before
// falling back to a binary search, which makes sequential lookups cheap.
// args must be sorted and hold at least two elements.
func FindInterval(args []float64, x float64, hint int) int {
	last := len(args) - 2
	if x < args[1] {
		return 0
	}
	if x >= args[last] {
		return last
	}
	if hint >= 0 && hint <= last {
		for _, i := range [...]int{hint, hint + 1, hint - 1} {
			if i >= 0 && i <= last && args[i] <= x && x < args[i+1] {
				return i
			}
		}
	}
	// first index with args[i] > x, minus one
	i := sort.Search(len(args), func(k int) bool { return args[k] > x }) - 1
	if i < 0 {
		return 0
	}
	if i > last {
		return last
	}
	return i
}
