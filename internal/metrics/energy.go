package metrics

import (
	"math"

	"github.com/bow-simulation/virtualbow-sub001/internal/fem"
)

// EnergyDrift tracks the largest relative deviation of the total energy
// (kinetic + potential + dissipated) from its first observed value. Without a
// Dissipation the energy lost to damping is not accounted for.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
	dissipation   *Dissipation
}

func NewEnergyDrift(d *Dissipation) *EnergyDrift {
	return &EnergyDrift{
		name:        "energy_drift",
		dissipation: d,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

// Total is the energy balance of s. The dissipation is expected to have
// observed s already.
func (e *EnergyDrift) Total(s *fem.System) float64 {
	energy := s.KineticEnergy() + s.PotentialEnergy()
	if e.dissipation != nil {
		energy += e.dissipation.Value()
	}
	return energy
}

func (e *EnergyDrift) Observe(s *fem.System) {
	energy := e.Total(s)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Current() float64 { return e.currentEnergy }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
