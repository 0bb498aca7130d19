package poisson

import (
	"fmt"

	"github.com/notargets/gopoisson/dofs"
	"github.com/notargets/gopoisson/types"
)

// BoundaryData is the prescribed value of every Dirichlet DoF, ordered by DoF
type BoundaryData struct {
	DoFs   []int
	Values []float64
}

// InterpolateBoundaryValues evaluates g at the support points of the DoFs on the selected boundary parts
func InterpolateBoundaryValues(dm *dofs.DoFMap, ids []int, g BoundaryValue) (bd BoundaryData) {
	bd.DoFs = dm.BoundaryDoFs(ids)
	bd.Values = make([]float64, len(bd.DoFs))
	for k, dof := range bd.DoFs {
		bd.Values[k] = g.Eval(dm.Support[dof], dm.Mesh.Dim)
	}
	return
}

/*
ApplyBoundaryValues eliminates the Dirichlet DoFs from the system.

Each boundary row becomes an identity row with the prescribed value on the right hand side, and the
matching column is moved to the right hand side of the remaining rows, so A stays symmetric. The
prescribed values are also written into x, which makes them exact in a solution started from x.
*/
func ApplyBoundaryValues(sys *System, bd BoundaryData, x []float64) (err error) {
	if len(bd.DoFs) == 0 {
		return fmt.Errorf("%w: no Dirichlet boundary DoFs, the Laplacian is only semi-definite",
			types.ErrSingularSystem)
	}
	A := sys.A
	for k, i := range bd.DoFs {
		g := bd.Values[k]
		cols, vals := A.Row(i)
		for n, j := range cols {
			if j == i {
				vals[n] = 1
				continue
			}
			sys.B[j] -= A.At(j, i) * g
			A.Set(j, i, 0)
			vals[n] = 0
		}
		sys.B[i] = g
		x[i] = g
	}
	for i, d := range A.Diagonal() {
		if !(d > 0) {
			return fmt.Errorf("%w: diagonal entry %d is %v after boundary elimination",
				types.ErrSingularSystem, i, d)
		}
	}
	return
}
