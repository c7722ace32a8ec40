package fem

// Quantity names one of the derived values a System assembles on demand.
type Quantity int

const (
	Accelerations Quantity = iota
	InternalForces
	Masses
	Stiffness
	Damping
	numQuantities
)

func (q Quantity) String() string {
	return [...]string{"accelerations", "internal forces", "masses", "stiffness", "damping"}[q]
}

type source int

const (
	sourceU source = iota
	sourceV
	sourceP
	sourceElements
	numSources
)

// dependents lists the quantities that become stale when a source changes.
var dependents = [numSources][]Quantity{
	sourceU:        {InternalForces, Stiffness, Damping, Accelerations},
	sourceV:        {InternalForces, Accelerations},
	sourceP:        {Accelerations},
	sourceElements: {Masses, InternalForces, Stiffness, Damping, Accelerations},
}

// lazy is a derived value that is recomputed on the first read after it was
// invalidated.
type lazy struct {
	valid   bool
	count   int
	compute func()
}

func (l *lazy) get() {
	if l.valid {
		return
	}
	l.compute()
	l.count++
	l.valid = true
}

func (l *lazy) invalidate() {
	l.valid = false
}
