package fem

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// BeamElement is a two-node co-rotational beam. Its strain measures are the
// elongation of the chord and the rotations of both end sections relative to
// the chord, ε = (L - L0, θ0, θ1). They are related to the local end forces
// (N, M0, M1) by
//
//	    | EA/L0  0       0      |
//	K = | 0      4EI/L0  2EI/L0 |
//	    | 0      2EI/L0  4EI/L0 |
//
// and an analogous damping matrix with etaA and etaI. The reference geometry
// is taken from the nodes' displacements at construction.
type BeamElement struct {
	s    *System
	dofs [6]Dof

	l0         float64
	d0         [2]float64 // reference chord
	phi0, phi1 float64    // reference section angles

	ea, ei, etaA, etaI float64
	rhoA, rhoI         float64

	memo memo[[6]float64, beamState]
}

type beamState struct {
	dx, dy, l float64
	eps       [3]float64 // (L - L0, θ0, θ1)
	force     [3]float64 // (N, M0, M1) including damping
	j         [3][6]float64
}

func NewBeamElement(s *System, n0, n1 Node, rhoA, rhoI float64) *BeamElement {
	e := &BeamElement{
		s:    s,
		dofs: [6]Dof{n0.X, n0.Y, n0.Phi, n1.X, n1.Y, n1.Phi},
		rhoA: rhoA,
		rhoI: rhoI,
	}
	var u [6]float64
	s.viewU(e.dofs[:]).Gather(u[:])
	e.d0 = [2]float64{u[3] - u[0], u[4] - u[1]}
	e.l0 = math.Hypot(e.d0[0], e.d0[1])
	e.phi0, e.phi1 = u[2], u[5]
	return e
}

func (e *BeamElement) element() {}

func (e *BeamElement) Length() float64 { return e.l0 }

func (e *BeamElement) SetStiffness(ea, ei float64) {
	e.ea, e.ei = ea, ei
	e.changed()
}

func (e *BeamElement) SetDamping(etaA, etaI float64) {
	e.etaA, e.etaI = etaA, etaI
	e.changed()
}

func (e *BeamElement) changed() {
	e.memo.reset()
	e.s.elementsChanged()
}

func (e *BeamElement) computeState(u, v [6]float64) beamState {
	var st beamState
	st.dx, st.dy = u[3]-u[0], u[4]-u[1]
	st.l = math.Hypot(st.dx, st.dy)

	// chord rotation relative to the reference chord
	cross := e.d0[0]*st.dy - e.d0[1]*st.dx
	dot := e.d0[0]*st.dx + e.d0[1]*st.dy
	alpha := math.Atan2(cross, dot)

	st.eps = [3]float64{
		st.l - e.l0,
		u[2] - e.phi0 - alpha,
		u[5] - e.phi1 - alpha,
	}

	c, s := st.dx/st.l, st.dy/st.l
	l2 := st.l * st.l
	dAlpha := [6]float64{st.dy / l2, -st.dx / l2, 0, -st.dy / l2, st.dx / l2, 0}
	st.j[0] = [6]float64{-c, -s, 0, c, s, 0}
	for k := range 6 {
		st.j[1][k] = -dAlpha[k]
		st.j[2][k] = -dAlpha[k]
	}
	st.j[1][2] += 1
	st.j[2][5] += 1

	var rate [3]float64
	for i := range 3 {
		for k := range 6 {
			rate[i] += st.j[i][k] * v[k]
		}
	}
	ke, de := e.local(e.ea, e.ei), e.local(e.etaA, e.etaI)
	for i := range 3 {
		for k := range 3 {
			st.force[i] += ke[i][k]*st.eps[k] + de[i][k]*rate[k]
		}
	}
	return st
}

// local returns the 3x3 section matrix for axial and bending coefficients.
func (e *BeamElement) local(axial, bending float64) [3][3]float64 {
	return [3][3]float64{
		{axial / e.l0, 0, 0},
		{0, 4 * bending / e.l0, 2 * bending / e.l0},
		{0, 2 * bending / e.l0, 4 * bending / e.l0},
	}
}

func (e *BeamElement) state() beamState {
	var u, v [6]float64
	e.s.viewU(e.dofs[:]).Gather(u[:])
	e.s.viewV(e.dofs[:]).Gather(v[:])
	return e.memo.get(u, v, e.computeState)
}

// Strains returns the axial strain and the mean curvature change of the element.
func (e *BeamElement) Strains() (epsilon, kappa float64) {
	st := e.state()
	return st.eps[0] / e.l0, (st.eps[2] - st.eps[1]) / e.l0
}

// Forces returns the normal force and the end moments (N, M0, M1).
func (e *BeamElement) Forces() [3]float64 { return e.state().force }

func (e *BeamElement) masses() (m, i float64) {
	m = 0.5 * e.rhoA * e.l0
	i = e.rhoA*e.l0*e.l0*e.l0/24 + 0.5*e.rhoI*e.l0
	return m, i
}

func (e *BeamElement) AddMasses() {
	m, i := e.masses()
	e.s.viewM(e.dofs[:]).AddVec([]float64{m, m, i, m, m, i})
}

func (e *BeamElement) AddInternalForces() {
	st := e.state()
	q := make([]float64, 6)
	for k := range 6 {
		for i := range 3 {
			q[k] += st.j[i][k] * st.force[i]
		}
	}
	e.s.viewQ(e.dofs[:]).AddVec(q)
}

// AddTangentStiffness adds Jᵀ K J plus the geometric part
// N ∂²L/∂u² - (M0 + M1) ∂²α/∂u².
func (e *BeamElement) AddTangentStiffness() {
	st := e.state()
	k := e.project(st, e.local(e.ea, e.ei))

	l := st.l
	l3, l4 := l*l*l, l*l*l*l
	hl := [2][2]float64{
		{st.dy * st.dy / l3, -st.dx * st.dy / l3},
		{-st.dx * st.dy / l3, st.dx * st.dx / l3},
	}
	ha := [2][2]float64{
		{2 * st.dx * st.dy / l4, (st.dy*st.dy - st.dx*st.dx) / l4},
		{(st.dy*st.dy - st.dx*st.dx) / l4, -2 * st.dx * st.dy / l4},
	}
	var blk [2][2]float64
	for i := range 2 {
		for j := range 2 {
			blk[i][j] = st.force[0]*hl[i][j] - (st.force[1]+st.force[2])*ha[i][j]
		}
	}
	translational := [4]int{0, 1, 3, 4}
	g := blockPattern(blk)
	for i := range 4 {
		for j := i; j < 4; j++ {
			ti, tj := translational[i], translational[j]
			k.SetSym(ti, tj, k.At(ti, tj)+g.At(i, j))
		}
	}
	e.s.viewK(e.dofs[:]).AddMat(k)
}

func (e *BeamElement) AddTangentDamping() {
	st := e.state()
	e.s.viewD(e.dofs[:]).AddMat(e.project(st, e.local(e.etaA, e.etaI)))
}

// project returns Jᵀ C J.
func (e *BeamElement) project(st beamState, c [3][3]float64) *mat.SymDense {
	j := mat.NewDense(3, 6, nil)
	for i := range 3 {
		j.SetRow(i, st.j[i][:])
	}
	cm := mat.NewDense(3, 3, nil)
	for r := range 3 {
		cm.SetRow(r, c[r][:])
	}

	var cj, jcj mat.Dense
	cj.Mul(cm, j)
	jcj.Mul(j.T(), &cj)

	k := mat.NewSymDense(6, nil)
	for r := range 6 {
		for s := r; s < 6; s++ {
			k.SetSym(r, s, jcj.At(r, s))
		}
	}
	return k
}

func (e *BeamElement) PotentialEnergy() float64 {
	st := e.state()
	ke := e.local(e.ea, e.ei)
	var w float64
	for i := range 3 {
		for k := range 3 {
			w += 0.5 * st.eps[i] * ke[i][k] * st.eps[k]
		}
	}
	return w
}

func (e *BeamElement) KineticEnergy() float64 {
	var v [6]float64
	e.s.viewV(e.dofs[:]).Gather(v[:])
	m, i := e.masses()
	return kinetic(m, math.Hypot(v[0], v[1])) + kinetic(i, v[2]) +
		kinetic(m, math.Hypot(v[3], v[4])) + kinetic(i, v[5])
}
