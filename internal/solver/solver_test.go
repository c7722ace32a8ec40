package solver_test

import (
	"math"

	"github.com/bow-simulation/virtualbow-sub001/internal/fem"
	"github.com/bow-simulation/virtualbow-sub001/internal/solver"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var xOnly = [3]bool{true, false, false}

// oscillator is a mass on a bar whose other end is fixed, free to move along x.
func oscillator(ea, eta, m float64) (*fem.System, fem.Node) {
	s := fem.NewSystem()
	n0 := s.CreateNode(0, 0, 0, [3]bool{})
	n1 := s.CreateNode(1, 0, 0, xOnly)
	s.AddElement("bar", fem.NewBarElement(s, n0, n1, 1, ea, eta, 0))
	s.AddElement("mass", fem.NewPointMass(s, n1, m))
	return s, n1
}

var _ = Describe("EigenvalueSolver", func() {
	It("finds the frequency and damping ratio of a single oscillator", func() {
		s, _ := oscillator(4, 0.2, 0.25)
		mode, err := solver.NewEigenvalueSolver(s).ComputeMinimumFrequency()
		Expect(err).NotTo(HaveOccurred())
		Expect(mode.Omega).To(BeNumerically("~", 4, 1e-10))
		Expect(mode.Zeta).To(BeNumerically("~", 0.2/(2*0.25*4), 1e-10))
	})

	It("orders the modes of a two mass chain", func() {
		s := fem.NewSystem()
		n0 := s.CreateNode(0, 0, 0, [3]bool{})
		n1 := s.CreateNode(1, 0, 0, xOnly)
		n2 := s.CreateNode(2, 0, 0, xOnly)
		s.AddElement("bars", fem.NewBarElement(s, n0, n1, 1, 1, 0, 0))
		s.AddElement("bars", fem.NewBarElement(s, n1, n2, 1, 1, 0, 0))
		s.AddElement("masses", fem.NewPointMass(s, n1, 1))
		s.AddElement("masses", fem.NewPointMass(s, n2, 1))

		es := solver.NewEigenvalueSolver(s)
		modes, err := es.ComputeModes()
		Expect(err).NotTo(HaveOccurred())
		Expect(modes).To(HaveLen(2))
		Expect(modes[0].Omega).To(BeNumerically("~", math.Sqrt((3-math.Sqrt(5))/2), 1e-10))
		Expect(modes[1].Omega).To(BeNumerically("~", math.Sqrt((3+math.Sqrt(5))/2), 1e-10))
		Expect(modes[0].Zeta).To(BeNumerically("~", 0, 1e-10))

		maxMode, err := es.ComputeMaximumFrequency()
		Expect(err).NotTo(HaveOccurred())
		Expect(maxMode).To(Equal(modes[1]))
	})

	It("fails without an oscillating mode", func() {
		s, _ := oscillator(0, 0, 1)
		_, err := solver.NewEigenvalueSolver(s).ComputeModes()
		Expect(err).To(MatchError(solver.ErrNoOscillation))

		overdamped, _ := oscillator(1, 10, 1)
		_, err = solver.NewEigenvalueSolver(overdamped).ComputeMaximumFrequency()
		Expect(err).To(MatchError(solver.ErrNoOscillation))
	})
})

var _ = Describe("EstimateTimestep", func() {
	It("scales the stability limit 2/ω", func() {
		s, _ := oscillator(9, 0, 1)
		dt, err := solver.EstimateTimestep(s, 0.5)
		Expect(err).NotTo(HaveOccurred())
		Expect(dt).To(BeNumerically("~", 0.5*2/3, 1e-12))
	})

	It("fails for a system without stiffness", func() {
		s, _ := oscillator(0, 0, 1)
		_, err := solver.EstimateTimestep(s, 0.5)
		Expect(err).To(MatchError(solver.ErrZeroFrequency))
	})

	It("rejects a system without degrees of freedom", func() {
		s := fem.NewSystem()
		s.CreateNode(0, 0, 0, [3]bool{})
		_, err := solver.EstimateTimestep(s, 0.5)
		Expect(err).To(MatchError(solver.ErrDecompositionFailed))
		_, err = solver.DampedTimestep(s, 0.5)
		Expect(err).To(MatchError(solver.ErrDecompositionFailed))
		_, err = solver.NewEigenvalueSolver(s).ComputeModes()
		Expect(err).To(MatchError(solver.ErrDecompositionFailed))
	})

	It("rejects a dof without mass", func() {
		s, _ := oscillator(1, 0, 0)
		_, err := solver.EstimateTimestep(s, 0.5)
		Expect(err).To(MatchError(solver.ErrDecompositionFailed))
		_, err = solver.DampedTimestep(s, 0.5)
		Expect(err).To(MatchError(solver.ErrDecompositionFailed))
	})
})

var _ = Describe("DampedTimestep", func() {
	// largest displacement from rest within five seconds
	amplitude := func(s *fem.System, mass fem.Node, dt float64) float64 {
		s.SetUAt(mass.X, 1.1)
		ds := solver.NewDynamicSolver(s, dt, 1/dt, nil)
		peak := 0.0
		for s.Time() < 5 && peak < 1e3 {
			ds.Step()
			peak = math.Max(peak, math.Abs(s.GetU(mass.X)-1))
		}
		return peak
	}

	It("equals the undamped estimate without damping", func() {
		s, _ := oscillator(9, 0, 1)
		dt, err := solver.DampedTimestep(s, 0.5)
		Expect(err).NotTo(HaveOccurred())
		Expect(dt).To(BeNumerically("~", 0.5*2/3, 1e-12))
	})

	It("shrinks the step of a heavily damped oscillator", func() {
		// ω = 10, ζ = 0.4
		s, mass := oscillator(100, 8, 1)
		undamped, err := solver.EstimateTimestep(s, 0.9)
		Expect(err).NotTo(HaveOccurred())
		dt, err := solver.DampedTimestep(s, 0.9)
		Expect(err).NotTo(HaveOccurred())
		Expect(dt).To(BeNumerically("~", 0.9*0.2*(math.Sqrt(1+4*0.4*0.4)-2*0.4), 1e-12))

		Expect(amplitude(s, mass, dt)).To(BeNumerically("<=", 0.1+1e-12))

		s, mass = oscillator(100, 8, 1)
		Expect(amplitude(s, mass, undamped)).To(BeNumerically(">", 1))
	})

	It("keeps an overdamped oscillator bounded", func() {
		// ω = 1, ζ = 5
		s, mass := oscillator(1, 10, 1)
		dt, err := solver.DampedTimestep(s, 0.9)
		Expect(err).NotTo(HaveOccurred())
		Expect(dt).To(BeNumerically("<", 0.9*2*(math.Sqrt(101)-10)))
		Expect(amplitude(s, mass, dt)).To(BeNumerically("<=", 0.1+1e-12))

		undamped, err := solver.EstimateTimestep(s, 0.9)
		Expect(err).NotTo(HaveOccurred())
		s, mass = oscillator(1, 10, 1)
		Expect(amplitude(s, mass, undamped)).To(BeNumerically(">", 1))
	})
})

var _ = Describe("StaticSolver", func() {
	// an inclined bar whose free end slides along x at height h
	const (
		ea = 100.0
		h  = 0.5
	)
	l0 := math.Hypot(1, h)
	force := func(x float64) float64 {
		l := math.Hypot(x, h)
		return ea / l0 * (l - l0) * x / l
	}

	var (
		s   *fem.System
		end fem.Node
	)
	BeforeEach(func() {
		s = fem.NewSystem()
		n0 := s.CreateNode(0, 0, 0, [3]bool{})
		end = s.CreateNode(1, h, 0, xOnly)
		s.AddElement("bar", fem.NewBarElement(s, n0, end, l0, ea, 0, 1))
	})

	It("matches the closed form force of a single bar", func() {
		ss := solver.NewStaticSolver(s, end.X, solver.DefaultStaticSettings())
		out := ss.SolveEquilibrium(1.3)
		Expect(out.State).To(Equal(solver.Success))
		Expect(out.Iterations).To(BeNumerically("<=", 10))
		Expect(s.GetU(end.X)).To(BeNumerically("~", 1.3, 1e-9))
		Expect(s.GetP(end.X)).To(BeNumerically("~", force(1.3), 1e-6*math.Abs(force(1.3))))
		Expect(ss.LoadParameter()).To(Equal(s.GetP(end.X)))
	})

	It("restores the state when the iteration fails", func() {
		set := solver.DefaultStaticSettings()
		set.IterMax = 1
		set.EpsilonAbs = 0
		ss := solver.NewStaticSolver(s, end.X, set)
		out := ss.SolveEquilibrium(0.2)
		Expect(out.State).To(Equal(solver.NoConvergence))
		Expect(out.Err()).To(MatchError(solver.ErrNoConvergence))
		Expect(s.GetU(end.X)).To(Equal(1.0))
		Expect(s.GetP(end.X)).To(Equal(0.0))
	})

	It("reports a singular stiffness matrix", func() {
		loose := fem.NewSystem()
		n0 := loose.CreateNode(0, 0, 0, [3]bool{})
		n1 := loose.CreateNode(1, 0, 0, [3]bool{true, true, false})
		loose.AddElement("bar", fem.NewBarElement(loose, n0, n1, 1, 1, 0, 1))
		out := solver.NewStaticSolver(loose, n1.X, solver.DefaultStaticSettings()).SolveEquilibrium(1.1)
		Expect(out.State).To(Equal(solver.DecompositionFailed))
		Expect(out.Err()).To(MatchError(solver.ErrDecompositionFailed))
	})

	It("follows the equilibrium path through the snap-through region", func() {
		set := solver.DefaultStaticSettings()
		set.StepInit = 0.05
		set.StepMax = 0.1
		ss := solver.NewStaticSolver(s, end.X, set)

		var xs []float64
		err := ss.SolveEquilibriumPath(-1.0, func() bool {
			x := s.GetU(end.X)
			Expect(s.GetP(end.X)).To(BeNumerically("~", force(x), 1e-6*math.Max(1, math.Abs(force(x)))))
			xs = append(xs, x)
			return true
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(xs[len(xs)-1]).To(BeNumerically("~", -1.0, 1e-9))
		for i := 1; i < len(xs); i++ {
			Expect(xs[i]).To(BeNumerically("<", xs[i-1]))
		}
	})

	It("stops when the callback says so", func() {
		ss := solver.NewStaticSolver(s, end.X, solver.DefaultStaticSettings())
		calls := 0
		err := ss.SolveEquilibriumPath(1.5, func() bool {
			calls++
			return calls < 3
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(calls).To(Equal(3))
		Expect(s.GetU(end.X)).To(BeNumerically("<", 1.5))
	})

	It("fails fatally when steps shrink below the minimum", func() {
		loose := fem.NewSystem()
		n0 := loose.CreateNode(0, 0, 0, [3]bool{})
		n1 := loose.CreateNode(1, 0, 0, [3]bool{true, true, false})
		loose.AddElement("bar", fem.NewBarElement(loose, n0, n1, 1, 1, 0, 1))
		err := solver.NewStaticSolver(loose, n1.X, solver.DefaultStaticSettings()).SolveEquilibriumPath(1.1, nil)
		Expect(err).To(MatchError(solver.ErrStepTooSmall))
		Expect(err).To(MatchError(solver.ErrDecompositionFailed))

		var se *solver.SolverError
		Expect(err).To(BeAssignableToTypeOf(se))
	})
})

var _ = Describe("DynamicSolver", func() {
	// maximum relative deviation of the total energy over five periods
	energyDeviation := func(dt float64) float64 {
		s, mass := oscillator(1, 0, 1)
		s.SetUAt(mass.X, 1.1)
		e0 := s.KineticEnergy() + s.PotentialEnergy()

		ds := solver.NewDynamicSolver(s, dt, 1/dt, nil)
		dev := 0.0
		for s.Time() < 10*math.Pi {
			Expect(ds.Step()).To(BeTrue())
			e := s.KineticEnergy() + s.PotentialEnergy()
			dev = math.Max(dev, math.Abs(e-e0)/e0)
		}
		return dev
	}

	It("conserves the energy of an undamped oscillator to second order", func() {
		coarse := energyDeviation(0.02)
		fine := energyDeviation(0.01)
		Expect(coarse).To(BeNumerically("<", 1.5*0.02*0.02))
		Expect(fine / coarse).To(BeNumerically("~", 0.25, 0.1))
	})

	It("takes sub-steps to match the sampling rate", func() {
		s, _ := oscillator(1, 0, 1)
		ds := solver.NewDynamicSolver(s, 0.003, 100, nil)
		Expect(ds.SubSteps()).To(Equal(4))
		Expect(ds.Step()).To(BeTrue())
		Expect(s.Time()).To(BeNumerically("~", 0.012, 1e-15))
	})

	It("stops as soon as the predicate fires", func() {
		s, mass := oscillator(1, 0, 1)
		s.SetUAt(mass.X, 1.1)
		ds := solver.NewDynamicSolver(s, 1e-3, 0.5, func() bool {
			return s.GetU(mass.X) < 1
		})
		Expect(ds.Step()).To(BeFalse())
		// a quarter period of ω = 1
		Expect(s.Time()).To(BeNumerically("~", math.Pi/2, 2e-3))
	})

	It("starts from rest with the initial acceleration", func() {
		s, mass := oscillator(1, 0, 2)
		s.SetPAt(mass.X, 1)
		dt := 0.01
		solver.NewDynamicSolver(s, dt, 2/dt, nil).Step()
		Expect(s.GetU(mass.X)).To(BeNumerically("~", 1+0.5*dt*dt*0.5, 1e-12))
		Expect(s.GetV(mass.X)).To(BeNumerically("~", dt*0.5, 1e-6))
	})
})
