package metrics

import (
	"math"

	"github.com/bow-simulation/virtualbow-sub001/internal/fem"
)

// Stability is the fraction of observed states whose displacements and
// velocities are all finite and below threshold in magnitude. An explicit
// integrator run with too large a timestep shows up as violations.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(sys *fem.System) {
	s.samples++
	if !s.bounded(sys.U()) || !s.bounded(sys.V()) {
		s.violations++
	}
}

func (s *Stability) bounded(x []float64) bool {
	for _, val := range x {
		if math.IsNaN(val) || math.Abs(val) > s.threshold {
			return false
		}
	}
	return true
}

// Violated reports whether any observed state was out of bounds.
func (s *Stability) Violated() bool { return s.violations > 0 }

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
