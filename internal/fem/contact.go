package fem

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// ContactElement keeps point 2 from passing through the segment from point 0
// to point 1. The signed distance of point 2 from the line is
//
//	e = cross(P1 - P0, P2 - P0) / L0
//
// with L0 the segment length at construction. Contact is active while e < 0
// and the projection of point 2 falls within the segment; the penalty
// potential is ½ k e². Out of contact the element contributes nothing.
type ContactElement struct {
	s    *System
	dofs [6]Dof

	l0, k float64

	memo memo[[6]float64, contactState]
}

type contactState struct {
	active bool
	e      float64
	de     [6]float64
}

// contactHessian is the constant Hessian of the cross product over
// (x0, y0, x1, y1, x2, y2), upper triangle.
var contactHessian = [...]struct {
	i, j int
	v    float64
}{
	{0, 3, 1}, {0, 5, -1},
	{1, 2, -1}, {1, 4, 1},
	{2, 5, 1}, {3, 4, -1},
}

func NewContactElement(s *System, n0, n1, n2 Node, k float64) *ContactElement {
	e := &ContactElement{
		s:    s,
		dofs: [6]Dof{n0.X, n0.Y, n1.X, n1.Y, n2.X, n2.Y},
		k:    k,
	}
	var u [6]float64
	s.viewU(e.dofs[:]).Gather(u[:])
	e.l0 = math.Hypot(u[2]-u[0], u[3]-u[1])
	return e
}

func (e *ContactElement) element() {}

func (e *ContactElement) computeState(u, _ [6]float64) contactState {
	ax, ay := u[2]-u[0], u[3]-u[1]
	bx, by := u[4]-u[0], u[5]-u[1]

	gap := (ax*by - ay*bx) / e.l0
	t := (ax*bx + ay*by) / (ax*ax + ay*ay)
	if gap >= 0 || t < 0 || t > 1 {
		return contactState{}
	}
	return contactState{
		active: true,
		e:      gap,
		de: [6]float64{
			(u[3] - u[5]) / e.l0,
			(u[4] - u[2]) / e.l0,
			(u[5] - u[1]) / e.l0,
			(u[0] - u[4]) / e.l0,
			(u[1] - u[3]) / e.l0,
			(u[2] - u[0]) / e.l0,
		},
	}
}

func (e *ContactElement) state() contactState {
	var u [6]float64
	e.s.viewU(e.dofs[:]).Gather(u[:])
	return e.memo.get(u, [6]float64{}, e.computeState)
}

// Gap returns the signed distance of point 2 from the segment when in
// contact, and zero otherwise.
func (e *ContactElement) Gap() float64 { return e.state().e }

func (e *ContactElement) AddMasses() {}

func (e *ContactElement) AddInternalForces() {
	st := e.state()
	if !st.active {
		return
	}
	q := make([]float64, 6)
	for i := range 6 {
		q[i] = e.k * st.e * st.de[i]
	}
	e.s.viewQ(e.dofs[:]).AddVec(q)
}

func (e *ContactElement) AddTangentStiffness() {
	st := e.state()
	if !st.active {
		return
	}
	k := mat.NewSymDense(6, nil)
	for i := range 6 {
		for j := i; j < 6; j++ {
			k.SetSym(i, j, e.k*st.de[i]*st.de[j])
		}
	}
	for _, h := range contactHessian {
		k.SetSym(h.i, h.j, k.At(h.i, h.j)+e.k*st.e*h.v/e.l0)
	}
	e.s.viewK(e.dofs[:]).AddMat(k)
}

func (e *ContactElement) AddTangentDamping() {}

func (e *ContactElement) PotentialEnergy() float64 {
	st := e.state()
	return 0.5 * e.k * st.e * st.e
}

func (e *ContactElement) KineticEnergy() float64 { return 0 }
