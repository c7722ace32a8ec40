package metrics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/bow-simulation/virtualbow-sub001/internal/fem"
)

// Dissipation integrates the power vᵀ D v lost to damping over time. Each
// observation contributes the current power times the time since the last one.
type Dissipation struct {
	name    string
	work    float64
	last    float64
	samples int
}

func NewDissipation() *Dissipation {
	return &Dissipation{
		name: "dissipation",
	}
}

func (d *Dissipation) Name() string {
	return d.name
}

func (d *Dissipation) Observe(s *fem.System) {
	t := s.Time()
	if d.samples > 0 {
		d.work += Power(s) * (t - d.last)
	}
	d.last = t
	d.samples++
}

func (d *Dissipation) Value() float64 {
	return d.work
}

func (d *Dissipation) Reset() {
	d.work = 0
	d.last = 0
	d.samples = 0
}

// Power returns the rate vᵀ D v at which damping removes energy.
func Power(s *fem.System) float64 {
	v := mat.NewVecDense(s.Dofs(), append([]float64(nil), s.V()...))
	if v.Len() == 0 {
		return 0
	}
	return mat.Inner(v, s.D(), v)
}
