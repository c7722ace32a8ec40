package fem

// Element contributes masses, internal forces, tangent stiffness and tangent
// damping of a part of the structure to its System. The set of element kinds
// is closed: BarElement, BeamElement, RotationalConstraint, ContactElement
// and PointMass.
type Element interface {
	AddMasses()
	AddInternalForces()
	AddTangentStiffness()
	AddTangentDamping()
	PotentialEnergy() float64
	KineticEnergy() float64

	element()
}

// memo caches the state an element derives from its local displacements and
// velocities. The state is recomputed only when those values change.
type memo[V comparable, S any] struct {
	valid bool
	u, v  V
	state S
}

func (m *memo[V, S]) get(u, v V, compute func(u, v V) S) S {
	if !m.valid || u != m.u || v != m.v {
		m.u, m.v = u, v
		m.state = compute(u, v)
		m.valid = true
	}
	return m.state
}

func (m *memo[V, S]) reset() {
	m.valid = false
}

func kinetic(m, v float64) float64 {
	return 0.5 * m * v * v
}
