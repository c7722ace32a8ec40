package solver

import (
	"math"

	"github.com/bow-simulation/virtualbow-sub001/internal/fem"
)

// DynamicSolver integrates the equations of motion with the explicit central
// difference method. Each call to Step advances the system by one output
// interval 1/sampleRate, made up of as many fixed time steps as needed.
type DynamicSolver struct {
	s    *fem.System
	dt   float64
	n    int
	stop func() bool

	uP2  []float64 // displacements one time step back
	uNew []float64
	vNew []float64
}

// NewDynamicSolver starts the integration from the system's current state.
// stop is checked after every time step and may be nil.
func NewDynamicSolver(s *fem.System, dt, sampleRate float64, stop func() bool) *DynamicSolver {
	n := 1
	if sampleRate > 0 {
		n = max(1, int(math.Ceil(1/(sampleRate*dt))))
	}

	u, v, a := s.U(), s.V(), s.A()
	uP2 := make([]float64, len(u))
	for i := range u {
		uP2[i] = u[i] - dt*v[i] + dt*dt/2*a[i]
	}

	return &DynamicSolver{
		s:    s,
		dt:   dt,
		n:    n,
		stop: stop,
		uP2:  uP2,
		uNew: make([]float64, len(u)),
		vNew: make([]float64, len(u)),
	}
}

func (ds *DynamicSolver) Timestep() float64 { return ds.dt }

// SubSteps is the number of time steps per call to Step.
func (ds *DynamicSolver) SubSteps() int { return ds.n }

// Step advances by one output interval. It returns false as soon as the stop
// condition holds after a time step.
func (ds *DynamicSolver) Step() bool {
	for i := 0; i < ds.n; i++ {
		ds.subStep()
		if ds.stop != nil && ds.stop() {
			return false
		}
	}
	return true
}

func (ds *DynamicSolver) subStep() {
	dt := ds.dt
	u, a := ds.s.U(), ds.s.A()
	for i := range u {
		ds.uNew[i] = 2*u[i] - ds.uP2[i] + dt*dt*a[i]
		ds.vNew[i] = (1.5*ds.uNew[i] - 2*u[i] + 0.5*ds.uP2[i]) / dt
	}
	copy(ds.uP2, u)

	ds.s.SetU(ds.uNew)
	ds.s.SetV(ds.vNew)
	ds.s.SetTime(ds.s.Time() + dt)
}
