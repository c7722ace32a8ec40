package fem

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

var free = [3]bool{true, true, true}

// numericalStiffness differentiates the internal forces with respect to the
// active displacements by central differences.
func numericalStiffness(s *System, h float64) [][]float64 {
	n := s.Dofs()
	u0 := append([]float64(nil), s.U()...)
	k := make([][]float64, n)
	for i := range k {
		k[i] = make([]float64, n)
	}
	u := make([]float64, n)
	for j := 0; j < n; j++ {
		copy(u, u0)
		u[j] = u0[j] + h
		s.SetU(u)
		qp := append([]float64(nil), s.Q()...)
		u[j] = u0[j] - h
		s.SetU(u)
		qm := s.Q()
		for i := 0; i < n; i++ {
			k[i][j] = (qp[i] - qm[i]) / (2 * h)
		}
	}
	s.SetU(u0)
	return k
}

func numericalDamping(s *System, h float64) [][]float64 {
	n := s.Dofs()
	v0 := append([]float64(nil), s.V()...)
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
	}
	v := make([]float64, n)
	for j := 0; j < n; j++ {
		copy(v, v0)
		v[j] = v0[j] + h
		s.SetV(v)
		qp := append([]float64(nil), s.Q()...)
		v[j] = v0[j] - h
		s.SetV(v)
		qm := s.Q()
		for i := 0; i < n; i++ {
			d[i][j] = (qp[i] - qm[i]) / (2 * h)
		}
	}
	s.SetV(v0)
	return d
}

// checkTangent compares the assembled tangent matrix with a numerical one,
// relative to the largest entry.
func checkTangent(tst *testing.T, name string, ana interface{ At(i, j int) float64 }, num [][]float64, tol float64) {
	scale := 0.0
	for i := range num {
		for j := range num[i] {
			scale = math.Max(scale, math.Abs(ana.At(i, j)))
		}
	}
	if scale == 0 {
		tst.Errorf("%s: tangent matrix is zero", name)
		return
	}
	for i := range num {
		for j := range num[i] {
			if d := math.Abs(ana.At(i, j) - num[i][j]); d > tol*scale {
				tst.Errorf("%s[%d][%d]: analytical %g, numerical %g", name, i, j, ana.At(i, j), num[i][j])
			}
			if d := math.Abs(num[i][j] - num[j][i]); d > tol*scale {
				tst.Errorf("%s: numerical tangent not symmetric at (%d, %d): %g vs %g", name, i, j, num[i][j], num[j][i])
			}
		}
	}
	if chk.Verbose {
		io.Pforan("%s: scale = %g\n", name, scale)
	}
}

func Test_bar01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bar01. bar stiffness and damping")

	s := NewSystem()
	n0 := s.CreateNode(0.1, -0.2, 0, free)
	n1 := s.CreateNode(1.0, 0.3, 0, free)
	bar := NewBarElement(s, n0, n1, 0.9, 12.0, 0.5, 0.7)
	s.AddElement("bar", bar)

	configs := [][]float64{
		{0.1, -0.2, 0, 1.0, 0.3, 0},
		{0.0, 0.0, 0, 0.3, 1.2, 0},
		{-0.5, 0.4, 0, 0.2, -0.7, 0},
	}
	for _, u := range configs {
		s.SetU(u)
		checkTangent(tst, "bar K", s.K(), numericalStiffness(s, 1e-8), 1e-5)
		checkTangent(tst, "bar D", s.D(), numericalDamping(s, 1e-8), 1e-5)
	}

	// closed form
	s.SetU([]float64{0, 0, 0, 3, 4, 0})
	chk.Float64(tst, "L", 1e-15, bar.CurrentLength(), 5)
	chk.Float64(tst, "N", 1e-13, bar.NormalForce(), 12.0/0.9*(5-0.9))
	chk.Float64(tst, "W", 1e-12, bar.PotentialEnergy(), 0.5*12.0/0.9*4.1*4.1)
	chk.Float64(tst, "q[3]", 1e-13, s.Q()[3], 12.0/0.9*4.1*0.6)

	// unstretched bar reduces to the linear truss stiffness
	s.SetU([]float64{0, 0, 0, 0.9, 0, 0})
	k := s.K()
	chk.Float64(tst, "K00", 1e-13, k.At(0, 0), 12.0/0.9)
	chk.Float64(tst, "K03", 1e-13, k.At(0, 3), -12.0/0.9)
	chk.Float64(tst, "K11", 1e-13, k.At(1, 1), 0)

	// velocity along the bar gives a damping force
	s.SetV([]float64{0, 0, 0, 2, 0, 0})
	chk.Float64(tst, "N damped", 1e-13, bar.NormalForce(), 0.5/0.9*2)
	chk.Float64(tst, "Ekin", 1e-13, bar.KineticEnergy(), 0.5*(0.5*0.7*0.9)*4)
}

func Test_beam01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("beam01. beam stiffness and damping")

	s := NewSystem()
	n0 := s.CreateNode(0.0, 0.0, 0.1, free)
	n1 := s.CreateNode(1.0, 0.2, 0.3, free)
	beam := NewBeamElement(s, n0, n1, 0.8, 0.05)
	beam.SetStiffness(15.0, 2.0)
	beam.SetDamping(0.3, 0.1)
	s.AddElement("limb", beam)

	configs := [][]float64{
		{0.0, 0.0, 0.1, 1.0, 0.2, 0.3},
		{0.05, -0.02, 0.4, 0.9, 0.45, -0.2},
		{-0.1, 0.1, -0.6, 0.6, 0.9, 1.1},
		{0.3, 0.0, 2.0, -0.5, 0.6, 2.5},
	}
	for _, u := range configs {
		s.SetU(u)
		s.SetV([]float64{0.1, -0.3, 0.2, 0.5, 0.1, -0.4})
		checkTangent(tst, "beam D", s.D(), numericalDamping(s, 1e-8), 1e-5)
		s.SetV(make([]float64, 6))
		checkTangent(tst, "beam K", s.K(), numericalStiffness(s, 1e-8), 1e-5)
	}
}

func Test_beam02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("beam02. rigid body motion and energy")

	s := NewSystem()
	n0 := s.CreateNode(0.2, 0.1, 0.3, free)
	n1 := s.CreateNode(1.1, 0.6, 0.5, free)
	beam := NewBeamElement(s, n0, n1, 1, 1)
	beam.SetStiffness(20.0, 3.0)
	s.AddElement("limb", beam)

	// translation plus rotation by psi about node 0 leaves the beam unstrained
	psi := 0.7
	sn, cs := math.Sincos(psi)
	dx, dy := 0.9, 0.5
	s.SetU([]float64{
		-1.0, 2.0, 0.3 + psi,
		-1.0 + cs*dx - sn*dy, 2.0 + sn*dx + cs*dy, 0.5 + psi,
	})
	for i, q := range s.Q() {
		chk.Float64(tst, io.Sf("q[%d]", i), 1e-13, q, 0)
	}
	chk.Float64(tst, "W", 1e-15, beam.PotentialEnergy(), 0)
	eps, kappa := beam.Strains()
	chk.Float64(tst, "epsilon", 1e-14, eps, 0)
	chk.Float64(tst, "kappa", 1e-14, kappa, 0)

	// internal forces are the gradient of the potential energy
	u0 := []float64{0.25, 0.05, 0.1, 1.0, 0.8, 0.9}
	s.SetU(u0)
	q := append([]float64(nil), s.Q()...)
	u := make([]float64, 6)
	h := 1e-6
	for j := range u0 {
		copy(u, u0)
		u[j] = u0[j] + h
		s.SetU(u)
		wp := s.PotentialEnergy()
		u[j] = u0[j] - h
		s.SetU(u)
		wm := s.PotentialEnergy()
		chk.AnaNum(tst, io.Sf("dW/du[%d]", j), 1e-7, q[j], (wp-wm)/(2*h), chk.Verbose)
	}

	// pure bending: equal and opposite end rotations
	s.SetU([]float64{0.2, 0.1, 0.3 - 0.05, 1.1, 0.6, 0.5 + 0.05})
	_, kappa = beam.Strains()
	l0 := math.Hypot(0.9, 0.5)
	chk.Float64(tst, "kappa", 1e-14, kappa, 0.1/l0)
	f := beam.Forces()
	chk.Float64(tst, "M0", 1e-13, f[1], 3.0/l0*(-4*0.05+2*0.05))
	chk.Float64(tst, "M1", 1e-13, f[2], 3.0/l0*(-2*0.05+4*0.05))
}

func Test_constraint01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("constraint01. rotational constraint")

	s := NewSystem()
	n0 := s.CreateNode(0.0, 0.0, 0.2, free)
	n1 := s.CreateNode(0.3, -0.1, 0, [3]bool{true, true, false})
	c := NewRotationalConstraint(s, n0, n1, 7.0)
	s.AddElement("string", c)

	chk.IntAssert(s.Dofs(), 5)
	r := c.Residual()
	chk.Float64(tst, "c1", 1e-15, r[0], 0)
	chk.Float64(tst, "c2", 1e-15, r[1], 0)

	configs := [][]float64{
		{0.0, 0.0, 0.2, 0.3, -0.1},
		{0.1, 0.05, 0.9, 0.2, 0.3},
		{-0.2, 0.3, -1.4, 0.5, -0.4},
	}
	for _, u := range configs {
		s.SetU(u)
		checkTangent(tst, "constraint K", s.K(), numericalStiffness(s, 1e-8), 1e-5)
	}

	// rotating both nodes rigidly about node 0 keeps the residual at zero
	sn, cs := math.Sincos(1.0)
	s.SetU([]float64{0, 0, 1.2, cs*0.3 + sn*0.1, sn*0.3 - cs*0.1})
	r = c.Residual()
	chk.Float64(tst, "c1 rotated", 1e-15, r[0], 0)
	chk.Float64(tst, "c2 rotated", 1e-15, r[1], 0)
	chk.Float64(tst, "W rotated", 1e-15, s.PotentialEnergy(), 0)
}

func Test_contact01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("contact01. contact gating and stiffness")

	s := NewSystem()
	n0 := s.CreateNode(0, 0, 0, [3]bool{true, true, false})
	n1 := s.CreateNode(1, 0, 0, [3]bool{true, true, false})
	n2 := s.CreateNode(0.4, 0.05, 0, [3]bool{true, true, false})
	c := NewContactElement(s, n0, n1, n2, 50.0)
	s.AddElement("contact", c)

	// point above the segment: no contact, no contribution
	chk.Float64(tst, "gap", 0, c.Gap(), 0)
	chk.Float64(tst, "W", 0, s.PotentialEnergy(), 0)
	for i, q := range s.Q() {
		chk.Float64(tst, io.Sf("q[%d]", i), 0, q, 0)
	}

	// penetrating but beyond the segment end
	s.SetU([]float64{0, 0, 1, 0, 1.2, -0.1})
	chk.Float64(tst, "gap beyond end", 0, c.Gap(), 0)

	// penetrating within the segment
	s.SetU([]float64{0, 0, 1, 0, 0.4, -0.05})
	chk.Float64(tst, "gap", 1e-15, c.Gap(), -0.05)
	chk.Float64(tst, "W", 1e-15, s.PotentialEnergy(), 0.5*50*0.05*0.05)
	chk.Float64(tst, "q[5]", 1e-14, s.Q()[5], 50*(-0.05)*1)

	configs := [][]float64{
		{0.02, 0.01, 1.05, -0.03, 0.5, -0.1},
		{0.1, -0.2, 0.8, 0.6, 0.6, 0.0},
	}
	for _, u := range configs {
		s.SetU(u)
		if c.Gap() >= 0 {
			tst.Fatalf("expected contact for %v", u)
		}
		checkTangent(tst, "contact K", s.K(), numericalStiffness(s, 1e-8), 1e-5)
	}
}

func Test_mass01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mass01. point mass")

	s := NewSystem()
	n := s.CreateNode(1, 2, 0, [3]bool{true, false, false})
	pm := NewPointMass(s, n, 0.25)
	s.AddElement("arrow", pm)

	chk.IntAssert(s.Dofs(), 1)
	chk.Float64(tst, "M", 0, s.M()[0], 0.25)
	s.SetV([]float64{4})
	chk.Float64(tst, "Ekin", 1e-15, s.KineticEnergy(), 0.5*0.25*16)
	s.SetP([]float64{1})
	chk.Float64(tst, "a", 1e-15, s.A()[0], 4)
}
