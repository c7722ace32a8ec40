package fem

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// BarElement is a two-node truss with axial stiffness and axial damping.
// Its rest length must be positive.
type BarElement struct {
	s    *System
	dofs [4]Dof

	l0, ea, etaA, rhoA float64

	memo memo[[4]float64, barState]
}

type barState struct {
	l, ldot float64    // current length and its rate
	n       [2]float64 // unit vector from node 0 to node 1
	force   float64    // normal force, tension positive
}

func NewBarElement(s *System, n0, n1 Node, l0, ea, etaA, rhoA float64) *BarElement {
	return &BarElement{
		s:    s,
		dofs: [4]Dof{n0.X, n0.Y, n1.X, n1.Y},
		l0:   l0,
		ea:   ea,
		etaA: etaA,
		rhoA: rhoA,
	}
}

func (e *BarElement) element() {}

func (e *BarElement) Length() float64 { return e.l0 }

func (e *BarElement) SetLength(l0 float64) {
	e.l0 = l0
	e.changed()
}

func (e *BarElement) SetStiffness(ea float64) {
	e.ea = ea
	e.changed()
}

func (e *BarElement) SetDamping(etaA float64) {
	e.etaA = etaA
	e.changed()
}

func (e *BarElement) changed() {
	e.memo.reset()
	e.s.elementsChanged()
}

func (e *BarElement) computeState(u, v [4]float64) barState {
	dx, dy := u[2]-u[0], u[3]-u[1]
	l := math.Hypot(dx, dy)
	n := [2]float64{dx / l, dy / l}
	ldot := n[0]*(v[2]-v[0]) + n[1]*(v[3]-v[1])
	return barState{
		l:     l,
		ldot:  ldot,
		n:     n,
		force: e.ea/e.l0*(l-e.l0) + e.etaA/e.l0*ldot,
	}
}

func (e *BarElement) state() barState {
	var u, v [4]float64
	e.s.viewU(e.dofs[:]).Gather(u[:])
	e.s.viewV(e.dofs[:]).Gather(v[:])
	return e.memo.get(u, v, e.computeState)
}

// NormalForce is the current axial force including the damping part.
func (e *BarElement) NormalForce() float64 { return e.state().force }

func (e *BarElement) CurrentLength() float64 { return e.state().l }

func (e *BarElement) AddMasses() {
	m := 0.5 * e.rhoA * e.l0
	e.s.viewM(e.dofs[:]).AddVec([]float64{m, m, m, m})
}

func (e *BarElement) AddInternalForces() {
	st := e.state()
	fx, fy := st.force*st.n[0], st.force*st.n[1]
	e.s.viewQ(e.dofs[:]).AddVec([]float64{-fx, -fy, fx, fy})
}

// AddTangentStiffness adds the material part EA/L0 n nᵀ and the geometric
// part N/L (I - n nᵀ).
func (e *BarElement) AddTangentStiffness() {
	st := e.state()
	kn := e.ea / e.l0
	kg := st.force / st.l
	var blk [2][2]float64
	for i := range 2 {
		for j := range 2 {
			blk[i][j] = (kn - kg) * st.n[i] * st.n[j]
		}
		blk[i][i] += kg
	}
	e.s.viewK(e.dofs[:]).AddMat(blockPattern(blk))
}

func (e *BarElement) AddTangentDamping() {
	st := e.state()
	c := e.etaA / e.l0
	var blk [2][2]float64
	for i := range 2 {
		for j := range 2 {
			blk[i][j] = c * st.n[i] * st.n[j]
		}
	}
	e.s.viewD(e.dofs[:]).AddMat(blockPattern(blk))
}

func (e *BarElement) PotentialEnergy() float64 {
	dl := e.state().l - e.l0
	return 0.5 * e.ea / e.l0 * dl * dl
}

func (e *BarElement) KineticEnergy() float64 {
	var v [4]float64
	e.s.viewV(e.dofs[:]).Gather(v[:])
	m := 0.5 * e.rhoA * e.l0
	return kinetic(m, math.Hypot(v[0], v[1])) + kinetic(m, math.Hypot(v[2], v[3]))
}

// blockPattern expands a 2x2 block B acting on the difference of two node
// positions to the 4x4 matrix [[B, -B], [-B, B]].
func blockPattern(b [2][2]float64) *mat.SymDense {
	k := mat.NewSymDense(4, nil)
	for i := range 2 {
		for j := i; j < 2; j++ {
			k.SetSym(i, j, b[i][j])
			k.SetSym(i+2, j+2, b[i][j])
			k.SetSym(i, j+2, -b[i][j])
			k.SetSym(j, i+2, -b[i][j])
		}
	}
	return k
}
