package poisson

import (
	"fmt"

	"github.com/notargets/gopoisson/dofs"
	"github.com/notargets/gopoisson/element"
	"github.com/notargets/gopoisson/utils"
	"gonum.org/v1/gonum/mat"
)

// System is the global linear system A x = b of one solve
type System struct {
	A *utils.CSR
	B []float64
}

/*
Assemble integrates the Laplace stiffness matrix and the load vector of the source term over every active
cell with a Gauss rule of p+1 points per axis, and sums the cell contributions into a fresh system.

Cell contributions to constrained DoFs are redistributed onto their masters, so the result is the
condensed system. Constrained rows are left as identity rows with a zero right hand side, and the
constrained entries are recovered with DoFMap.Distribute after the solve.
*/
func Assemble(dm *dofs.DoFMap, sp *utils.SparsityPattern, src Source) (sys *System, err error) {
	var (
		fe     = dm.FE
		m      = dm.Mesh
		dim    = m.Dim
		nn     = fe.NumNodes
		values = element.NewValues(fe, element.NewGaussRule(dim, fe.Degree+1))
		K      = mat.NewDense(nn, nn, nil)
		F      = mat.NewVecDense(nn, nil)
	)
	sys = &System{
		A: utils.NewCSR(sp),
		B: make([]float64, dm.NumDoFs),
	}
	for i, c := range dm.Cells {
		if err = values.Reinit(m.CellCorners(c)); err != nil {
			err = fmt.Errorf("cell %d: %w", c, err)
			return
		}
		K.Zero()
		F.Zero()
		for q, jxw := range values.JxW {
			var (
				phi  = values.Phi[q]
				grad = values.Grad[q]
				f    = src.Eval(values.Points[q], dim)
			)
			for a := 0; a < nn; a++ {
				for b := 0; b < nn; b++ {
					var dot float64
					for d := 0; d < dim; d++ {
						dot += grad[a][d] * grad[b][d]
					}
					K.Set(a, b, K.At(a, b)+dot*jxw)
				}
				F.SetVec(a, F.AtVec(a)+phi[a]*f*jxw)
			}
		}
		sys.scatter(dm, dm.CellDoFs[i], K, F)
	}
	for _, con := range dm.Constraints {
		sys.A.Set(con.DoF, con.DoF, 1)
		sys.B[con.DoF] = 0
	}
	return
}

// scatter adds a cell matrix and vector into the global system, expanding constrained DoFs
func (sys *System) scatter(dm *dofs.DoFMap, cellDoFs []int, K *mat.Dense, F *mat.VecDense) {
	expand := make([][]dofs.Entry, len(cellDoFs))
	for a, dof := range cellDoFs {
		if con, ok := dm.Constraint(dof); ok {
			expand[a] = con.Entries
		} else {
			expand[a] = []dofs.Entry{{DoF: dof, Weight: 1}}
		}
	}
	for a, ea := range expand {
		for _, ei := range ea {
			sys.B[ei.DoF] += ei.Weight * F.AtVec(a)
			for b, eb := range expand {
				kab := K.At(a, b)
				for _, ej := range eb {
					sys.A.Add(ei.DoF, ej.DoF, ei.Weight*ej.Weight*kab)
				}
			}
		}
	}
}
