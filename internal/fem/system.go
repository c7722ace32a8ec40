package fem

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// System holds the state of a discretised mechanical system and assembles
// masses, internal forces, tangent stiffness and damping from its elements.
// Derived quantities are computed lazily and stay cached until one of their
// inputs changes. A System is not safe for concurrent use.
type System struct {
	t float64

	u, v, p []float64 // active DOFs
	uf      []float64 // fixed DOFs

	a, q, qf, m []float64
	k, d        *mat.SymDense

	cells [numQuantities]lazy

	elements []Element
	groupOf  []string
	groups   map[string][]int
	disabled map[string]bool
}

func NewSystem() *System {
	s := &System{
		groups:   make(map[string][]int),
		disabled: make(map[string]bool),
	}
	s.cells[Accelerations].compute = s.assembleAccelerations
	s.cells[InternalForces].compute = s.assembleInternalForces
	s.cells[Masses].compute = s.assembleMasses
	s.cells[Stiffness].compute = s.assembleStiffness
	s.cells[Damping].compute = s.assembleDamping
	return s
}

func (s *System) invalidate(src source) {
	for _, q := range dependents[src] {
		s.cells[q].invalidate()
	}
}

// CreateDof appends an unknown with the given initial value. Active DOFs
// start at rest with zero external force.
func (s *System) CreateDof(value float64, active bool) Dof {
	defer s.invalidate(sourceElements)
	if active {
		s.u = append(s.u, value)
		s.v = append(s.v, 0)
		s.p = append(s.p, 0)
		return Dof{Type: Active, Index: len(s.u) - 1}
	}
	s.uf = append(s.uf, value)
	return Dof{Type: Fixed, Index: len(s.uf) - 1}
}

func (s *System) CreateNode(x, y, phi float64, active [3]bool) Node {
	return Node{
		X:   s.CreateDof(x, active[0]),
		Y:   s.CreateDof(y, active[1]),
		Phi: s.CreateDof(phi, active[2]),
	}
}

// Dofs is the number of active DOFs.
func (s *System) Dofs() int { return len(s.u) }

func (s *System) Time() float64     { return s.t }
func (s *System) SetTime(t float64) { s.t = t }

// U returns the active displacements. The slice is owned by the System and
// must not be modified; use SetU.
func (s *System) U() []float64 { return s.u }
func (s *System) V() []float64 { return s.v }
func (s *System) P() []float64 { return s.p }

func (s *System) SetU(u []float64) {
	s.checkLen(u)
	copy(s.u, u)
	s.invalidate(sourceU)
}

func (s *System) SetV(v []float64) {
	s.checkLen(v)
	copy(s.v, v)
	s.invalidate(sourceV)
}

func (s *System) SetP(p []float64) {
	s.checkLen(p)
	copy(s.p, p)
	s.invalidate(sourceP)
}

func (s *System) checkLen(x []float64) {
	if len(x) != len(s.u) {
		panic(fmt.Sprintf("fem: vector of length %d for %d active dofs", len(x), len(s.u)))
	}
}

// SetUAt changes the displacement of a single DOF, active or fixed.
func (s *System) SetUAt(dof Dof, value float64) {
	if dof.Type == Active {
		s.u[dof.Index] = value
	} else {
		s.uf[dof.Index] = value
	}
	s.invalidate(sourceU)
}

func (s *System) SetVAt(dof Dof, value float64) {
	if dof.Type != Active {
		panic(fmt.Sprintf("fem: cannot set velocity of %v", dof))
	}
	s.v[dof.Index] = value
	s.invalidate(sourceV)
}

func (s *System) SetPAt(dof Dof, value float64) {
	if dof.Type != Active {
		panic(fmt.Sprintf("fem: cannot set external force of %v", dof))
	}
	s.p[dof.Index] = value
	s.invalidate(sourceP)
}

func (s *System) GetU(dof Dof) float64 {
	if dof.Type == Active {
		return s.u[dof.Index]
	}
	return s.uf[dof.Index]
}

func (s *System) GetV(dof Dof) float64 {
	if dof.Type == Active {
		return s.v[dof.Index]
	}
	return 0
}

func (s *System) GetP(dof Dof) float64 {
	if dof.Type == Active {
		return s.p[dof.Index]
	}
	return 0
}

func (s *System) GetA(dof Dof) float64 {
	if dof.Type == Active {
		return s.A()[dof.Index]
	}
	return 0
}

// GetQ returns the internal force at a DOF. At a fixed DOF this is the
// support reaction.
func (s *System) GetQ(dof Dof) float64 {
	s.cells[InternalForces].get()
	if dof.Type == Active {
		return s.q[dof.Index]
	}
	return s.qf[dof.Index]
}

func (s *System) GetM(dof Dof) float64 {
	if dof.Type == Active {
		return s.M()[dof.Index]
	}
	return 0
}

// A returns the accelerations (p - q)/M of the active DOFs.
func (s *System) A() []float64 {
	s.cells[Accelerations].get()
	return s.a
}

// Q returns the internal forces at the active DOFs.
func (s *System) Q() []float64 {
	s.cells[InternalForces].get()
	return s.q
}

// Reactions returns the internal forces at the fixed DOFs.
func (s *System) Reactions() []float64 {
	s.cells[InternalForces].get()
	return s.qf
}

// M returns the diagonal of the lumped mass matrix.
func (s *System) M() []float64 {
	s.cells[Masses].get()
	return s.m
}

func (s *System) K() *mat.SymDense {
	s.cells[Stiffness].get()
	return s.k
}

func (s *System) D() *mat.SymDense {
	s.cells[Damping].get()
	return s.d
}

// Assemblies reports how often a quantity has been assembled so far.
func (s *System) Assemblies(q Quantity) int {
	return s.cells[q].count
}

// Views used by elements during assembly.

func (s *System) viewU(dofs []Dof) VectorView { return VectorView{dofs, s.u, s.uf} }
func (s *System) viewV(dofs []Dof) VectorView { return VectorView{dofs, s.v, nil} }
func (s *System) viewQ(dofs []Dof) VectorView { return VectorView{dofs, s.q, s.qf} }
func (s *System) viewM(dofs []Dof) VectorView { return VectorView{dofs, s.m, nil} }
func (s *System) viewK(dofs []Dof) MatrixView { return MatrixView{dofs, s.k} }
func (s *System) viewD(dofs []Dof) MatrixView { return MatrixView{dofs, s.d} }

func resize(x []float64, n int) []float64 {
	if cap(x) < n {
		return make([]float64, n)
	}
	x = x[:n]
	clear(x)
	return x
}

func resizeSym(m *mat.SymDense, n int) *mat.SymDense {
	if m == nil || m.SymmetricDim() != n {
		return mat.NewSymDense(n, nil)
	}
	m.Zero()
	return m
}

func (s *System) assembleMasses() {
	s.m = resize(s.m, len(s.u))
	s.eachEnabled(Element.AddMasses)
}

func (s *System) assembleInternalForces() {
	s.q = resize(s.q, len(s.u))
	s.qf = resize(s.qf, len(s.uf))
	s.eachEnabled(Element.AddInternalForces)
}

func (s *System) assembleStiffness() {
	s.k = resizeSym(s.k, len(s.u))
	s.eachEnabled(Element.AddTangentStiffness)
}

func (s *System) assembleDamping() {
	s.d = resizeSym(s.d, len(s.u))
	s.eachEnabled(Element.AddTangentDamping)
}

func (s *System) assembleAccelerations() {
	q, m := s.Q(), s.M()
	s.a = resize(s.a, len(s.u))
	for i := range s.a {
		s.a[i] = (s.p[i] - q[i]) / m[i]
	}
}

func (s *System) eachEnabled(fn func(Element)) {
	for i, e := range s.elements {
		if !s.disabled[s.groupOf[i]] {
			fn(e)
		}
	}
}

// AddElement appends an element to a named group.
func (s *System) AddElement(group string, e Element) {
	s.groups[group] = append(s.groups[group], len(s.elements))
	s.elements = append(s.elements, e)
	s.groupOf = append(s.groupOf, group)
	s.invalidate(sourceElements)
}

// Elements returns all elements, enabled or not, in insertion order.
func (s *System) Elements() []Element { return s.elements }

// Group returns the elements of a group in insertion order.
func (s *System) Group(key string) []Element {
	idx := s.groups[key]
	elements := make([]Element, len(idx))
	for i, j := range idx {
		elements[i] = s.elements[j]
	}
	return elements
}

func (s *System) Groups() []string {
	keys := make([]string, 0, len(s.groups))
	for k := range s.groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GroupElements returns the elements of a group that have type E.
func GroupElements[E Element](s *System, key string) []E {
	var elements []E
	for _, j := range s.groups[key] {
		if e, ok := s.elements[j].(E); ok {
			elements = append(elements, e)
		}
	}
	return elements
}

// SetGroupEnabled includes or excludes a group's elements from assembly and
// energy sums.
func (s *System) SetGroupEnabled(key string, enabled bool) {
	if s.disabled[key] == !enabled {
		return
	}
	s.disabled[key] = !enabled
	s.invalidate(sourceElements)
}

func (s *System) GroupEnabled(key string) bool { return !s.disabled[key] }

// elementsChanged is called by elements whose parameters were modified.
func (s *System) elementsChanged() {
	s.invalidate(sourceElements)
}

func (s *System) PotentialEnergy() float64 {
	var e float64
	s.eachEnabled(func(el Element) { e += el.PotentialEnergy() })
	return e
}

func (s *System) KineticEnergy() float64 {
	var e float64
	s.eachEnabled(func(el Element) { e += el.KineticEnergy() })
	return e
}

// GroupPotentialEnergy sums over a group regardless of whether it is enabled.
func (s *System) GroupPotentialEnergy(key string) float64 {
	var e float64
	for _, j := range s.groups[key] {
		e += s.elements[j].PotentialEnergy()
	}
	return e
}

func (s *System) GroupKineticEnergy(key string) float64 {
	var e float64
	for _, j := range s.groups[key] {
		e += s.elements[j].KineticEnergy()
	}
	return e
}
