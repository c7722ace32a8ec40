package fem

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func twoBars() (*System, *BarElement, *BarElement) {
	s := NewSystem()
	n0 := s.CreateNode(0, 0, 0, [3]bool{false, false, false})
	n1 := s.CreateNode(1, 0, 0, [3]bool{true, true, false})
	n2 := s.CreateNode(2, 0, 0, [3]bool{true, false, false})
	b0 := NewBarElement(s, n0, n1, 1, 10, 0, 2)
	b1 := NewBarElement(s, n1, n2, 1, 20, 0, 2)
	s.AddElement("left", b0)
	s.AddElement("right", b1)
	s.AddElement("right", NewPointMass(s, n2, 0.5))
	return s, b0, b1
}

func Test_system01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("system01. lazy assembly")

	s, _, _ := twoBars()
	chk.IntAssert(s.Dofs(), 3)

	k := s.K()
	s.K()
	s.K()
	chk.IntAssert(s.Assemblies(Stiffness), 1)
	chk.Float64(tst, "K00", 1e-15, k.At(0, 0), 30)
	chk.Float64(tst, "K02", 1e-15, k.At(0, 2), -20)

	// external forces only affect accelerations
	s.SetP([]float64{0, 0, 1})
	s.K()
	s.Q()
	chk.IntAssert(s.Assemblies(Stiffness), 1)
	chk.IntAssert(s.Assemblies(InternalForces), 1)
	chk.Float64(tst, "a2", 1e-15, s.A()[2], 1/(1+0.5))
	chk.IntAssert(s.Assemblies(Accelerations), 1)
	chk.IntAssert(s.Assemblies(Masses), 1)

	// velocities invalidate internal forces but not stiffness
	s.SetV([]float64{0, 0, 0})
	s.K()
	s.Q()
	chk.IntAssert(s.Assemblies(Stiffness), 1)
	chk.IntAssert(s.Assemblies(InternalForces), 2)

	// displacements invalidate everything but masses
	s.SetU([]float64{1.1, 0, 2})
	s.K()
	s.D()
	s.A()
	chk.IntAssert(s.Assemblies(Stiffness), 2)
	chk.IntAssert(s.Assemblies(Damping), 1)
	chk.IntAssert(s.Assemblies(Masses), 1)
	chk.Float64(tst, "q0", 1e-13, s.Q()[0], 10*0.1-20*(-0.1))
	chk.Float64(tst, "reaction", 1e-13, s.Reactions()[0], -10*0.1)
}

func Test_system02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("system02. dof accessors")

	s, _, _ := twoBars()
	fixed := Dof{Type: Fixed, Index: 0}
	active := Dof{Type: Active, Index: 2}

	chk.Float64(tst, "u fixed", 0, s.GetU(fixed), 0)
	chk.Float64(tst, "v fixed", 0, s.GetV(fixed), 0)
	chk.Float64(tst, "u active", 0, s.GetU(active), 2)

	// moving the support stretches the left bar
	s.SetUAt(fixed, -0.5)
	chk.Float64(tst, "reaction", 1e-13, s.GetQ(fixed), -10*0.5)
	chk.Float64(tst, "q0", 1e-13, s.GetQ(Dof{Active, 0}), 10*0.5)

	s.SetPAt(active, 3)
	chk.Float64(tst, "p", 0, s.GetP(active), 3)
	chk.Float64(tst, "a", 1e-15, s.GetA(active), 3/1.5)
	chk.Float64(tst, "m", 0, s.GetM(active), 1.5)
	chk.Float64(tst, "m fixed", 0, s.GetM(fixed), 0)

	defer func() {
		if recover() == nil {
			tst.Errorf("setting a force at a fixed dof must panic")
		}
	}()
	s.SetPAt(fixed, 1)
}

func Test_system03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("system03. groups")

	s, b0, b1 := twoBars()
	chk.IntAssert(len(s.Elements()), 3)
	chk.IntAssert(len(s.Group("right")), 2)

	bars := GroupElements[*BarElement](s, "right")
	chk.IntAssert(len(bars), 1)
	if bars[0] != b1 {
		tst.Errorf("wrong bar in group right")
	}
	chk.IntAssert(len(GroupElements[*PointMass](s, "right")), 1)
	chk.IntAssert(len(GroupElements[*PointMass](s, "left")), 0)

	s.SetU([]float64{1.1, 0, 2.3})
	wLeft := b0.PotentialEnergy()
	wRight := b1.PotentialEnergy()
	chk.Float64(tst, "W", 1e-14, s.PotentialEnergy(), wLeft+wRight)
	chk.Float64(tst, "W right", 1e-14, s.GroupPotentialEnergy("right"), wRight)

	s.M()
	s.SetGroupEnabled("right", false)
	chk.Float64(tst, "W left only", 1e-14, s.PotentialEnergy(), wLeft)
	chk.Float64(tst, "m2", 0, s.M()[2], 0)
	chk.Float64(tst, "K00", 1e-13, s.K().At(0, 0), 10)
	chk.IntAssert(s.Assemblies(Masses), 2)
	if s.GroupEnabled("right") {
		tst.Errorf("group right should be disabled")
	}

	// changing an element parameter invalidates the assembly
	s.SetGroupEnabled("right", true)
	b1.SetLength(1.2)
	chk.Float64(tst, "N", 1e-13, b1.NormalForce(), 0)
	chk.Float64(tst, "q2", 1e-13, s.Q()[2], 0)
}

func Test_view01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("view01. vector and matrix views")

	active := []float64{1, 2, 3}
	fixed := []float64{10}
	dofs := []Dof{{Active, 2}, {Fixed, 0}, {Active, 0}}

	vw := NewVectorView(dofs, active, fixed)
	chk.Float64(tst, "at 0", 0, vw.At(0), 3)
	chk.Float64(tst, "at 1", 0, vw.At(1), 10)
	vw.AddVec([]float64{1, 1, 1})
	chk.Float64(tst, "active 2", 0, active[2], 4)
	chk.Float64(tst, "active 0", 0, active[0], 2)
	chk.Float64(tst, "fixed", 0, fixed[0], 11)

	noFixed := NewVectorView(dofs, active, nil)
	chk.Float64(tst, "fixed without store", 0, noFixed.At(1), 0)
	noFixed.Add(1, 5)
	chk.Float64(tst, "fixed unchanged", 0, fixed[0], 11)

	s, _, _ := twoBars()
	k := s.K()
	before := k.At(0, 2)
	mv := NewMatrixView(dofs, k)
	mv.Add(0, 2, 1.5)
	mv.Add(0, 1, 100)
	chk.Float64(tst, "K(2,0)", 1e-15, k.At(2, 0), before+1.5)
	chk.Float64(tst, "K(0,2)", 1e-15, k.At(0, 2), before+1.5)
}
