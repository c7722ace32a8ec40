package model

import (
	"math"

	"github.com/bow-simulation/virtualbow-sub001/internal/analysis"
	"github.com/bow-simulation/virtualbow-sub001/internal/fem"
	"github.com/bow-simulation/virtualbow-sub001/internal/numerics"
)

// States are time (or draw) indexed samples of a simulation. Forces and
// energies refer to the whole bow, positions to the simulated upper half.
// Per element arrays are indexed [state][layer][element].
type States struct {
	Time        []float64 `json:"time"`
	DrawLength  []float64 `json:"draw_length"`
	DrawForce   []float64 `json:"draw_force"`
	StringForce []float64 `json:"string_force"`
	GripForce   []float64 `json:"grip_force"`

	ArrowPos []float64 `json:"arrow_pos"`
	ArrowVel []float64 `json:"arrow_vel"`
	ArrowAcc []float64 `json:"arrow_acc"`

	LimbX   [][]float64 `json:"limb_x"`
	LimbY   [][]float64 `json:"limb_y"`
	LimbPhi [][]float64 `json:"limb_phi"`
	StringX [][]float64 `json:"string_x"`
	StringY [][]float64 `json:"string_y"`

	StrainBack  [][][]float64 `json:"strain_back"`
	StrainBelly [][][]float64 `json:"strain_belly"`
	StressBack  [][][]float64 `json:"stress_back"`
	StressBelly [][][]float64 `json:"stress_belly"`

	EPotLimbs  []float64 `json:"e_pot_limbs"`
	EKinLimbs  []float64 `json:"e_kin_limbs"`
	EPotString []float64 `json:"e_pot_string"`
	EKinString []float64 `json:"e_kin_string"`
	EKinArrow  []float64 `json:"e_kin_arrow"`
}

func (st *States) Len() int { return len(st.Time) }

// arrow is the arrow's state when it no longer moves with the string.
type arrow struct {
	pos, vel, acc float64
}

// record appends the current state of b. A nil free arrow moves with the
// string center.
func (st *States) record(b *Bow, free *arrow) {
	s := b.System
	c := b.Center()

	st.Time = append(st.Time, s.Time())
	st.DrawLength = append(st.DrawLength, s.GetU(c.X))
	st.DrawForce = append(st.DrawForce, 2*s.GetP(c.X))
	st.StringForce = append(st.StringForce, b.StringForce())
	st.GripForce = append(st.GripForce, -2*s.GetQ(b.Root().X))

	if free == nil {
		free = &arrow{s.GetU(c.X), s.GetV(c.X), s.GetA(c.X)}
		st.EKinArrow = append(st.EKinArrow, 2*b.Arrow.KineticEnergy())
	} else {
		st.EKinArrow = append(st.EKinArrow, 2*kineticArrow(b, free.vel))
	}
	st.ArrowPos = append(st.ArrowPos, free.pos)
	st.ArrowVel = append(st.ArrowVel, free.vel)
	st.ArrowAcc = append(st.ArrowAcc, free.acc)

	lx, ly, lphi := nodeValues(b, b.LimbNodes)
	sx, sy, _ := nodeValues(b, b.StringNodes)
	st.LimbX = append(st.LimbX, lx)
	st.LimbY = append(st.LimbY, ly)
	st.LimbPhi = append(st.LimbPhi, lphi)
	st.StringX = append(st.StringX, sx)
	st.StringY = append(st.StringY, sy)

	epsBack, epsBelly, sigBack, sigBelly := layerValues(b)
	st.StrainBack = append(st.StrainBack, epsBack)
	st.StrainBelly = append(st.StrainBelly, epsBelly)
	st.StressBack = append(st.StressBack, sigBack)
	st.StressBelly = append(st.StressBelly, sigBelly)

	// point masses of the string stay enabled, so the string group includes them
	st.EPotLimbs = append(st.EPotLimbs, 2*s.GroupPotentialEnergy(GroupLimb))
	st.EKinLimbs = append(st.EKinLimbs, 2*s.GroupKineticEnergy(GroupLimb))
	st.EPotString = append(st.EPotString, 2*(s.GroupPotentialEnergy(GroupString)+s.GroupPotentialEnergy(GroupContact)))
	st.EKinString = append(st.EKinString, 2*s.GroupKineticEnergy(GroupString))
}

func kineticArrow(b *Bow, v float64) float64 {
	return 0.5 * b.Arrow.Mass() * v * v
}

func nodeValues(b *Bow, nodes []fem.Node) (x, y, phi []float64) {
	s := b.System
	x = make([]float64, len(nodes))
	y = make([]float64, len(nodes))
	phi = make([]float64, len(nodes))
	for i, n := range nodes {
		x[i], y[i], phi[i] = s.GetU(n.X), s.GetU(n.Y), s.GetU(n.Phi)
	}
	return x, y, phi
}

// layerValues evaluates strain and stress at the back and belly of each
// layer at the element midpoints.
func layerValues(b *Bow) (epsBack, epsBelly, sigBack, sigBelly [][]float64) {
	lp := b.Limb
	nl, ne := len(lp.Layers), len(b.Beams)
	epsBack, epsBelly = make([][]float64, nl), make([][]float64, nl)
	sigBack, sigBelly = make([][]float64, nl), make([][]float64, nl)
	for k, layer := range lp.Layers {
		epsBack[k], epsBelly[k] = make([]float64, ne), make([]float64, ne)
		sigBack[k], sigBelly[k] = make([]float64, ne), make([]float64, ne)
		for i, beam := range b.Beams {
			eps, kappa := beam.Strains()
			zn := midpoint(lp.ZNeutral, i)
			epsBack[k][i] = eps + kappa*(midpoint(layer.ZBack, i)-zn)
			epsBelly[k][i] = eps + kappa*(midpoint(layer.ZBelly, i)-zn)
			sigBack[k][i] = layer.E * epsBack[k][i]
			sigBelly[k][i] = layer.E * epsBelly[k][i]
		}
	}
	return epsBack, epsBelly, sigBack, sigBelly
}

// Common holds properties of the bow that do not depend on the simulation mode.
type Common struct {
	Limb          *LimbProperties `json:"limb"`
	StringLength  float64         `json:"string_length"`
	StringMass    float64         `json:"string_mass"`
	LimbMass      float64         `json:"limb_mass"`
	DampingLimb   float64         `json:"damping_limb"`
	DampingString float64         `json:"damping_string"`
}

// StressPeak locates an extreme layer stress. S is the arc length of the
// element midpoint.
type StressPeak struct {
	Value float64 `json:"value"`
	State int     `json:"state"`
	Layer int     `json:"layer"`
	S     float64 `json:"s"`
}

// Peak is the largest value of a series together with its state index.
type Peak struct {
	Value float64 `json:"value"`
	State int     `json:"state"`
}

type Statics struct {
	States States `json:"states"`

	FinalDrawForce float64    `json:"final_draw_force"`
	DrawingWork    float64    `json:"drawing_work"`
	StorageFactor  float64    `json:"storage_factor"`
	MaxStringForce Peak       `json:"max_string_force"`
	MaxGripForce   Peak       `json:"max_grip_force"`
	MaxTension     StressPeak `json:"max_tension"`
	MaxCompression StressPeak `json:"max_compression"`
}

type Dynamics struct {
	States States `json:"states"`

	FinalArrowVelocity float64    `json:"final_arrow_velocity"`
	FinalArrowEnergy   float64    `json:"final_arrow_energy"`
	Efficiency         float64    `json:"efficiency"`
	DepartureTime      float64    `json:"departure_time"`
	DepartureIndex     int        `json:"departure_index"`
	MaxStringForce     Peak       `json:"max_string_force"`
	MaxGripForce       Peak       `json:"max_grip_force"`
	MaxTension         StressPeak `json:"max_tension"`
	MaxCompression     StressPeak `json:"max_compression"`
	EnergyError        float64    `json:"energy_error"`
	Timestep           float64    `json:"timestep"`

	// dominant frequency of the string center after departure, zero if the
	// record is too short
	VibrationFrequency float64 `json:"vibration_frequency"`
}

// Output is the result of a simulation. Dynamics is nil for static runs.
type Output struct {
	Common   Common    `json:"common"`
	Statics  *Statics  `json:"statics"`
	Dynamics *Dynamics `json:"dynamics,omitempty"`
}

// NewStatics summarises the states of a static draw. The storage factor
// compares the drawing work with a linear draw curve through the final
// draw force.
func NewStatics(states States, limb *LimbProperties) *Statics {
	st := &Statics{States: states}
	n := states.Len()
	if n == 0 {
		return st
	}
	st.FinalDrawForce = states.DrawForce[n-1]
	st.DrawingWork = numerics.Trapz(states.DrawLength, states.DrawForce)
	if linear := 0.5 * (states.DrawLength[n-1] - states.DrawLength[0]) * st.FinalDrawForce; linear > 0 {
		st.StorageFactor = st.DrawingWork / linear
	}
	st.MaxStringForce = maxAbs(states.StringForce)
	st.MaxGripForce = maxAbs(states.GripForce)
	st.MaxTension, st.MaxCompression = stressPeaks(&states, limb)
	return st
}

// NewDynamics summarises the states of a shot. departure is the index of
// the state at which the arrow left the string, drawingWork the energy
// stored by the static draw.
func NewDynamics(states States, limb *LimbProperties, departure int, drawingWork, energyError float64) *Dynamics {
	dy := &Dynamics{States: states, DepartureIndex: departure, EnergyError: energyError}
	if departure < 0 || departure >= states.Len() {
		return dy
	}
	dy.DepartureTime = states.Time[departure]
	dy.FinalArrowVelocity = math.Abs(states.ArrowVel[departure])
	dy.FinalArrowEnergy = states.EKinArrow[departure]
	if drawingWork > 0 {
		dy.Efficiency = dy.FinalArrowEnergy / drawingWork
	}
	dy.MaxStringForce = maxAbs(states.StringForce)
	dy.MaxGripForce = maxAbs(states.GripForce)
	dy.MaxTension, dy.MaxCompression = stressPeaks(&states, limb)
	dy.VibrationFrequency = vibrationFrequency(&states, departure)
	return dy
}

func vibrationFrequency(states *States, departure int) float64 {
	n := states.Len()
	if len(states.StringX) != n || n-departure < 2 || !(states.Time[n-1] > states.Time[departure]) {
		return 0
	}
	x := make([]float64, 0, n-departure)
	for _, sx := range states.StringX[departure:] {
		x = append(x, sx[len(sx)-1])
	}
	rate := float64(len(x)-1) / (states.Time[n-1] - states.Time[departure])
	f, err := analysis.DominantFrequency(x, rate)
	if err != nil {
		return 0
	}
	return f
}

func maxAbs(x []float64) Peak {
	p := Peak{State: -1}
	for i, v := range x {
		if p.State < 0 || math.Abs(v) > math.Abs(p.Value) {
			p = Peak{Value: v, State: i}
		}
	}
	return p
}

// stressPeaks scans back and belly stresses of all layers for the largest
// tension and the largest compression.
func stressPeaks(states *States, limb *LimbProperties) (tension, compression StressPeak) {
	for i := range states.StressBack {
		for k := range states.StressBack[i] {
			for _, sigma := range [][]float64{states.StressBack[i][k], states.StressBelly[i][k]} {
				for e, v := range sigma {
					peak := StressPeak{Value: v, State: i, Layer: k, S: midpoint(limb.S, e)}
					if v > tension.Value {
						tension = peak
					}
					if v < compression.Value {
						compression = peak
					}
				}
			}
		}
	}
	return tension, compression
}
