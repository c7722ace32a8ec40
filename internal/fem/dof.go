package fem

import "fmt"

type DofType int

const (
	Active DofType = iota
	Fixed
)

func (t DofType) String() string {
	switch t {
	case Active:
		return "active"
	case Fixed:
		return "fixed"
	}
	return fmt.Sprintf("DofType(%d)", int(t))
}

// Dof identifies one scalar unknown. Index addresses the active or the fixed
// store of its System depending on Type.
type Dof struct {
	Type  DofType
	Index int
}

func (d Dof) String() string {
	return fmt.Sprintf("%s[%d]", d.Type, d.Index)
}

// Node is one material point with in-plane position and rotation.
type Node struct {
	X, Y, Phi Dof
}

// Dofs returns the node's DOFs in the order x, y, phi.
func (n Node) Dofs() [3]Dof {
	return [3]Dof{n.X, n.Y, n.Phi}
}
