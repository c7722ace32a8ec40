package model

import (
	"math"

	"github.com/bow-simulation/virtualbow-sub001/internal/geometry"
	"github.com/bow-simulation/virtualbow-sub001/internal/numerics"
)

// LayerProperties are the per-node values of one layer. Z offsets are
// measured from the back of the limb towards the belly.
type LayerProperties struct {
	Name   string    `json:"name"`
	E      float64   `json:"E"`
	Rho    float64   `json:"rho"`
	Height []float64 `json:"height"`
	ZBack  []float64 `json:"z_back"`
	ZBelly []float64 `json:"z_belly"`
}

// LimbProperties is the discretised limb: geometry and cross section
// properties at each node, from the root (index 0) to the tip.
type LimbProperties struct {
	Length float64   `json:"length"`
	S      []float64 `json:"s"`

	// back of the limb
	XBack []float64 `json:"x_back"`
	YBack []float64 `json:"y_back"`
	Phi   []float64 `json:"phi"`

	// neutral axis, where the nodes are placed
	X        []float64 `json:"x"`
	Y        []float64 `json:"y"`
	ZNeutral []float64 `json:"z_neutral"`

	Width  []float64 `json:"width"`
	Height []float64 `json:"height"`

	EA   []float64 `json:"EA"`
	EI   []float64 `json:"EI"`
	RhoA []float64 `json:"rhoA"`
	RhoI []float64 `json:"rhoI"`

	Layers []LayerProperties `json:"layers"`
}

// ProfileCurve builds the back of the limb from the input, starting at the
// end of the handle.
func ProfileCurve(in *InputData) (*geometry.ProfileCurve, error) {
	d := in.Dimensions
	curve, err := geometry.NewProfileCurve(in.Profile, -d.HandleSetback, d.HandleLength/2, math.Pi/2+d.HandleAngle)
	if err != nil {
		return nil, invalid("profile", "%v", err)
	}
	return curve, nil
}

func NewLimbProperties(in *InputData) (*LimbProperties, error) {
	curve, err := ProfileCurve(in)
	if err != nil {
		return nil, err
	}
	width, err := distribution("width", in.Width)
	if err != nil {
		return nil, err
	}
	heights := make([]func(float64) float64, len(in.Layers))
	for i, l := range in.Layers {
		if heights[i], err = distribution("layers."+l.Name+".height", l.Height); err != nil {
			return nil, err
		}
	}

	n := in.Settings.NLimbElements + 1
	lp := &LimbProperties{
		Length:   curve.Length(),
		S:        numerics.Linspace(0, curve.Length(), n),
		XBack:    make([]float64, n),
		YBack:    make([]float64, n),
		Phi:      make([]float64, n),
		X:        make([]float64, n),
		Y:        make([]float64, n),
		ZNeutral: make([]float64, n),
		Width:    make([]float64, n),
		Height:   make([]float64, n),
		EA:       make([]float64, n),
		EI:       make([]float64, n),
		RhoA:     make([]float64, n),
		RhoI:     make([]float64, n),
		Layers:   make([]LayerProperties, len(in.Layers)),
	}
	for k, l := range in.Layers {
		lp.Layers[k] = LayerProperties{
			Name:   l.Name,
			E:      l.E,
			Rho:    l.Rho,
			Height: make([]float64, n),
			ZBack:  make([]float64, n),
			ZBelly: make([]float64, n),
		}
	}

	for i, s := range lp.S {
		rel := s / lp.Length
		p := curve.Point(s)
		lp.XBack[i], lp.YBack[i] = p.Position.X, p.Position.Y
		lp.Phi[i] = p.Angle
		w := width(rel)
		lp.Width[i] = w

		var z, es, rs float64
		for k := range lp.Layers {
			layer := &lp.Layers[k]
			h := heights[k](rel)
			zc := z + h/2
			layer.Height[i], layer.ZBack[i], layer.ZBelly[i] = h, z, z+h
			lp.EA[i] += layer.E * w * h
			lp.RhoA[i] += layer.Rho * w * h
			es += layer.E * w * h * zc
			rs += layer.Rho * w * h * zc
			z += h
		}
		if !(z > 0) {
			return nil, invalid("layers", "total height vanishes at s = %g", s)
		}
		lp.Height[i] = z
		zn := es / lp.EA[i]
		lp.ZNeutral[i] = zn

		for k := range lp.Layers {
			layer := &lp.Layers[k]
			h := layer.Height[i]
			dz := layer.ZBack[i] + h/2 - zn
			lp.EI[i] += layer.E * w * (h*h*h/12 + h*dz*dz)
			lp.RhoI[i] += layer.Rho * w * (h*h*h/12 + h*dz*dz)
		}

		sn, cs := math.Sincos(p.Angle)
		lp.X[i] = lp.XBack[i] + zn*sn
		lp.Y[i] = lp.YBack[i] - zn*cs
	}
	return lp, nil
}

// Nodes is the number of nodes along the limb.
func (lp *LimbProperties) Nodes() int { return len(lp.S) }

// Belly returns the position of the belly surface at node i.
func (lp *LimbProperties) Belly(i int) (x, y float64) {
	sn, cs := math.Sincos(lp.Phi[i])
	return lp.XBack[i] + lp.Height[i]*sn, lp.YBack[i] - lp.Height[i]*cs
}

// midpoint averages a per-node property over element i.
func midpoint(values []float64, i int) float64 {
	return 0.5 * (values[i] + values[i+1])
}

// distribution interpolates (relative position, value) pairs. Outside the
// given positions the end values are continued.
func distribution(field string, points [][2]float64) (func(float64) float64, error) {
	if len(points) == 1 {
		v := points[0][1]
		return func(float64) float64 { return v }, nil
	}
	x := make([]float64, len(points))
	y := make([]float64, len(points))
	for i, p := range points {
		x[i], y[i] = p[0], p[1]
	}
	spline, err := numerics.NewCubicSpline(x, y, true)
	if err != nil {
		return nil, invalid(field, "%v", err)
	}
	lo, hi := spline.ArgMin(), spline.ArgMax()
	return func(rel float64) float64 {
		return math.Max(spline.Value(numerics.Clamp(rel, lo, hi)), 0)
	}, nil
}
