package fem

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// RotationalConstraint ties node 1 to a point that moves rigidly with node 0.
// The offset between the nodes at construction is stored in the frame of
// node 0's rotation; deviations from it are penalised with stiffness k.
type RotationalConstraint struct {
	s    *System
	dofs [5]Dof

	k      float64
	rx, ry float64 // offset in the rotated frame of node 0

	memo memo[[5]float64, constraintState]
}

type constraintState struct {
	c      [2]float64
	dc     [2][5]float64
	ddcPhi [2]float64 // second derivatives with respect to phi0, all others vanish
}

func NewRotationalConstraint(s *System, n0, n1 Node, k float64) *RotationalConstraint {
	e := &RotationalConstraint{
		s:    s,
		dofs: [5]Dof{n0.X, n0.Y, n0.Phi, n1.X, n1.Y},
		k:    k,
	}
	var u [5]float64
	s.viewU(e.dofs[:]).Gather(u[:])
	sn, cs := math.Sincos(u[2])
	dx, dy := u[3]-u[0], u[4]-u[1]
	e.rx = cs*dx + sn*dy
	e.ry = -sn*dx + cs*dy
	return e
}

func (e *RotationalConstraint) element() {}

func (e *RotationalConstraint) computeState(u, _ [5]float64) constraintState {
	sn, cs := math.Sincos(u[2])
	ox := cs*e.rx - sn*e.ry
	oy := sn*e.rx + cs*e.ry
	return constraintState{
		c: [2]float64{u[3] - u[0] - ox, u[4] - u[1] - oy},
		dc: [2][5]float64{
			{-1, 0, oy, 1, 0},
			{0, -1, -ox, 0, 1},
		},
		ddcPhi: [2]float64{ox, oy},
	}
}

func (e *RotationalConstraint) state() constraintState {
	var u [5]float64
	e.s.viewU(e.dofs[:]).Gather(u[:])
	return e.memo.get(u, [5]float64{}, e.computeState)
}

// Residual returns the deviation (c1, c2) of node 1 from its target point.
func (e *RotationalConstraint) Residual() [2]float64 { return e.state().c }

func (e *RotationalConstraint) AddMasses() {}

func (e *RotationalConstraint) AddInternalForces() {
	st := e.state()
	q := make([]float64, 5)
	for i := range 5 {
		q[i] = e.k * (st.c[0]*st.dc[0][i] + st.c[1]*st.dc[1][i])
	}
	e.s.viewQ(e.dofs[:]).AddVec(q)
}

func (e *RotationalConstraint) AddTangentStiffness() {
	st := e.state()
	k := mat.NewSymDense(5, nil)
	for i := range 5 {
		for j := i; j < 5; j++ {
			k.SetSym(i, j, e.k*(st.dc[0][i]*st.dc[0][j]+st.dc[1][i]*st.dc[1][j]))
		}
	}
	k.SetSym(2, 2, k.At(2, 2)+e.k*(st.c[0]*st.ddcPhi[0]+st.c[1]*st.ddcPhi[1]))
	e.s.viewK(e.dofs[:]).AddMat(k)
}

func (e *RotationalConstraint) AddTangentDamping() {}

func (e *RotationalConstraint) PotentialEnergy() float64 {
	c := e.state().c
	return 0.5 * e.k * (c[0]*c[0] + c[1]*c[1])
}

func (e *RotationalConstraint) KineticEnergy() float64 { return 0 }
