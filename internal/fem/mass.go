package fem

import "math"

// PointMass is a concentrated mass at a node's position.
type PointMass struct {
	s    *System
	dofs [2]Dof
	m    float64
}

func NewPointMass(s *System, node Node, m float64) *PointMass {
	return &PointMass{s: s, dofs: [2]Dof{node.X, node.Y}, m: m}
}

func (e *PointMass) element() {}

func (e *PointMass) Mass() float64 { return e.m }

func (e *PointMass) AddMasses() {
	e.s.viewM(e.dofs[:]).AddVec([]float64{e.m, e.m})
}

func (e *PointMass) AddInternalForces()   {}
func (e *PointMass) AddTangentStiffness() {}
func (e *PointMass) AddTangentDamping()   {}

func (e *PointMass) PotentialEnergy() float64 { return 0 }

func (e *PointMass) KineticEnergy() float64 {
	var v [2]float64
	e.s.viewV(e.dofs[:]).Gather(v[:])
	return kinetic(e.m, math.Hypot(v[0], v[1]))
}
