package model

import (
	"math"

	"github.com/bow-simulation/virtualbow-sub001/internal/fem"
)

// Element groups of the bow system.
const (
	GroupLimb    = "limb"
	GroupString  = "string"
	GroupContact = "contact"
	GroupArrow   = "arrow"
)

// penaltyFactor scales the stiffness of the string tip attachment and the
// contacts relative to the axial stiffness of one string element.
const penaltyFactor = 10

// Bow is the finite element model of the upper half of a symmetric bow. The
// string runs from the limb tip (index 0) to the string center on the
// symmetry axis y = 0.
type Bow struct {
	System *fem.System
	Limb   *LimbProperties

	LimbNodes   []fem.Node
	StringNodes []fem.Node

	Beams      []*fem.BeamElement
	Bars       []*fem.BarElement
	Attachment *fem.RotationalConstraint
	Contacts   []*fem.ContactElement
	Arrow      *fem.PointMass

	stringEA float64
}

// NewBow builds the bow with a straight string from the belly of the limb
// tip to the point (stringX, 0). The string's rest length is the straight
// length, so it starts out free of tension.
func NewBow(in *InputData, limb *LimbProperties, stringX float64) *Bow {
	s := fem.NewSystem()
	b := &Bow{System: s, Limb: limb}

	for i := range limb.Nodes() {
		free := i > 0
		b.LimbNodes = append(b.LimbNodes, s.CreateNode(limb.X[i], limb.Y[i], limb.Phi[i], [3]bool{free, free, free}))
	}
	for i := range limb.Nodes() - 1 {
		beam := fem.NewBeamElement(s, b.LimbNodes[i], b.LimbNodes[i+1], midpoint(limb.RhoA, i), midpoint(limb.RhoI, i))
		beam.SetStiffness(midpoint(limb.EA, i), midpoint(limb.EI, i))
		b.Beams = append(b.Beams, beam)
		s.AddElement(GroupLimb, beam)
	}

	n := in.Settings.NStringElements
	xt, yt := limb.Belly(limb.Nodes() - 1)
	length := math.Hypot(stringX-xt, yt)
	b.stringEA = in.String.StrandStiffness * float64(in.String.NStrands)
	rhoA := in.String.StrandDensity * float64(in.String.NStrands)

	for j := range n + 1 {
		eta := float64(j) / float64(n)
		x, y := xt+eta*(stringX-xt), (1-eta)*yt
		center := j == n
		b.StringNodes = append(b.StringNodes, s.CreateNode(x, y, 0, [3]bool{true, !center, false}))
	}
	for j := range n {
		bar := fem.NewBarElement(s, b.StringNodes[j], b.StringNodes[j+1], length/float64(n), b.stringEA, 0, rhoA)
		b.Bars = append(b.Bars, bar)
		s.AddElement(GroupString, bar)
	}

	k := penaltyFactor * b.stringEA * float64(n) / length
	tip := b.LimbNodes[len(b.LimbNodes)-1]
	b.Attachment = fem.NewRotationalConstraint(s, tip, b.StringNodes[0], k)
	s.AddElement(GroupString, b.Attachment)

	// The contact line runs from tip to root so that string nodes on the
	// belly side have a positive gap.
	for i := len(b.LimbNodes) - 1; i > 0; i-- {
		for j := 1; j < n; j++ {
			c := fem.NewContactElement(s, b.LimbNodes[i], b.LimbNodes[i-1], b.StringNodes[j], k)
			b.Contacts = append(b.Contacts, c)
			s.AddElement(GroupContact, c)
		}
	}

	s.AddElement(GroupLimb, fem.NewPointMass(s, tip, in.Masses.LimbTip))
	s.AddElement(GroupString, fem.NewPointMass(s, b.StringNodes[0], in.Masses.StringTip))
	s.AddElement(GroupString, fem.NewPointMass(s, b.Center(), in.Masses.StringCenter/2))
	b.Arrow = fem.NewPointMass(s, b.Center(), in.Masses.Arrow/2)
	s.AddElement(GroupArrow, b.Arrow)

	return b
}

// Center is the string center node, which carries the arrow.
func (b *Bow) Center() fem.Node { return b.StringNodes[len(b.StringNodes)-1] }

// Root is the fixed limb node at the handle.
func (b *Bow) Root() fem.Node { return b.LimbNodes[0] }

// Tip is the last limb node.
func (b *Bow) Tip() fem.Node { return b.LimbNodes[len(b.LimbNodes)-1] }

// StringLength returns the rest length of the half string.
func (b *Bow) StringLength() float64 {
	var l float64
	for _, bar := range b.Bars {
		l += bar.Length()
	}
	return l
}

// SetStringLength distributes the rest length l of the half string evenly
// over its elements.
func (b *Bow) SetStringLength(l float64) {
	for _, bar := range b.Bars {
		bar.SetLength(l / float64(len(b.Bars)))
	}
}

// StringForce is the normal force in the string element at the center.
func (b *Bow) StringForce() float64 {
	return b.Bars[len(b.Bars)-1].NormalForce()
}

// SetDamping makes the limb and string damping proportional to their
// stiffness with coefficients betaLimb and betaString.
func (b *Bow) SetDamping(betaLimb, betaString float64) {
	for i, beam := range b.Beams {
		beam.SetDamping(betaLimb*midpoint(b.Limb.EA, i), betaLimb*midpoint(b.Limb.EI, i))
	}
	for _, bar := range b.Bars {
		bar.SetDamping(betaString * b.stringEA)
	}
}
