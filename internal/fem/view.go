package fem

import "gonum.org/v1/gonum/mat"

// VectorView presents the global values addressed by a list of DOFs as a
// local vector. Reads of fixed DOFs come from the fixed store, or zero if
// there is none. Add accumulates into the active store and into the fixed
// store only if one is supplied.
type VectorView struct {
	dofs   []Dof
	active []float64
	fixed  []float64
}

func NewVectorView(dofs []Dof, active, fixed []float64) VectorView {
	return VectorView{dofs: dofs, active: active, fixed: fixed}
}

func (vw VectorView) Len() int { return len(vw.dofs) }

func (vw VectorView) At(i int) float64 {
	dof := vw.dofs[i]
	if dof.Type == Active {
		return vw.active[dof.Index]
	}
	if vw.fixed == nil {
		return 0
	}
	return vw.fixed[dof.Index]
}

// Gather copies the local values into dst, which must have Len() elements.
func (vw VectorView) Gather(dst []float64) {
	for i := range vw.dofs {
		dst[i] = vw.At(i)
	}
}

func (vw VectorView) Add(i int, value float64) {
	dof := vw.dofs[i]
	if dof.Type == Active {
		vw.active[dof.Index] += value
	} else if vw.fixed != nil {
		vw.fixed[dof.Index] += value
	}
}

func (vw VectorView) AddVec(values []float64) {
	for i, v := range values {
		vw.Add(i, v)
	}
}

// MatrixView presents the rows and columns of a global symmetric matrix that
// belong to a list of DOFs as a local matrix. Only pairs of active DOFs are
// stored; contributions to fixed DOFs are dropped.
type MatrixView struct {
	dofs []Dof
	m    *mat.SymDense
}

func NewMatrixView(dofs []Dof, m *mat.SymDense) MatrixView {
	return MatrixView{dofs: dofs, m: m}
}

// Add accumulates value at local (i, j). Since the storage is symmetric the
// same value also appears at (j, i).
func (mv MatrixView) Add(i, j int, value float64) {
	di, dj := mv.dofs[i], mv.dofs[j]
	if di.Type != Active || dj.Type != Active {
		return
	}
	mv.m.SetSym(di.Index, dj.Index, mv.m.At(di.Index, dj.Index)+value)
}

// AddMat accumulates a symmetric local matrix. Only its upper triangle is read.
func (mv MatrixView) AddMat(local mat.Matrix) {
	n := len(mv.dofs)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if v := local.At(i, j); v != 0 {
				mv.Add(i, j, v)
			}
		}
	}
}
