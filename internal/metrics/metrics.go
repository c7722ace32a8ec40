// Package metrics observes a finite element system during a dynamic run.
package metrics

import "github.com/bow-simulation/virtualbow-sub001/internal/fem"

// Metric accumulates one scalar over the observed states of a system.
type Metric interface {
	Name() string
	Observe(s *fem.System)
	Value() float64
	Reset()
}
