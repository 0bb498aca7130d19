package poisson

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/notargets/gopoisson/dofs"
	"github.com/notargets/gopoisson/element"
	"github.com/notargets/gopoisson/mesh"
	"github.com/notargets/gopoisson/solver"
	"github.com/notargets/gopoisson/types"
	"github.com/notargets/gopoisson/utils"
)

/*
Problem runs the pipeline mesh -> DoFs -> sparsity -> assembly -> boundary elimination -> CG.

The mesh, DoF map and sparsity pattern are built once by Prepare and reused by every Solve, so changing
only the boundary value with SetBoundaryValue does not rebuild them. Every Solve assembles a new system.
*/
type Problem struct {
	Params  Parameters
	Mesh    *mesh.Mesh
	FE      *element.Lagrange
	DoFs    *dofs.DoFMap
	Pattern *utils.SparsityPattern
}

// Result is what a solve hands to an exporter: the mesh, one value per DoF and where each DoF sits
type Result struct {
	Mesh       *mesh.Mesh
	DoFs       *dofs.DoFMap
	Solution   []float64
	Iterations int
	Residual   float64
	Converged  bool
}

func (r *Result) NumDoFs() int { return len(r.Solution) }

// Location returns the physical support point of a DoF
func (r *Result) Location(dof int) mesh.Point { return r.DoFs.Support[dof] }

func (r *Result) Locations() []mesh.Point { return r.DoFs.Support }

// NewProblem validates the parameters, no mesh exists until Prepare
func NewProblem(p Parameters) (pb *Problem, err error) {
	if err = p.Validate(); err != nil {
		return
	}
	pb = &Problem{Params: p}
	return
}

func (pb *Problem) Prepared() bool { return pb.Pattern != nil }

func (pb *Problem) Prepare() (err error) {
	if pb.Prepared() {
		return
	}
	p := &pb.Params
	var (
		m      *mesh.Mesh
		family element.Family
		fe     *element.Lagrange
		dm     *dofs.DoFMap
	)
	if m, err = p.NewMesh(); err != nil {
		return
	}
	if family, err = element.FamilyOf(m.Dim); err != nil {
		return
	}
	if fe, err = element.NewLagrange(family, p.Degree); err != nil {
		return
	}
	if dm, err = dofs.Distribute(m, fe); err != nil {
		return
	}
	pb.Mesh, pb.FE, pb.DoFs = m, fe, dm
	pb.Pattern = dofs.MakeSparsityPattern(dm)
	pb.logf("   Number of active cells:       %d\n", m.NumActive())
	pb.logf("   Total number of cells:        %d\n", len(m.Cells))
	pb.logf("   Number of degrees of freedom: %d\n", dm.NumDoFs)
	if len(dm.Constraints) != 0 {
		pb.logf("   Number of hanging node constraints: %d\n", len(dm.Constraints))
	}
	return
}

// SetBoundaryValue replaces the Dirichlet data, keeping the prepared mesh and DoF map
func (pb *Problem) SetBoundaryValue(bv BoundaryValue) { pb.Params.Boundary = bv }

/*
Solve assembles and solves the system on the prepared mesh, preparing it first if needed.

When CG reaches its iteration cap the returned error wraps types.ErrNotConverged and the Result still
holds the last iterate, Converged is false.
*/
func (pb *Problem) Solve() (res *Result, err error) {
	if err = pb.Prepare(); err != nil {
		return
	}
	var (
		p   = &pb.Params
		dm  = pb.DoFs
		sys *System
		x   = make([]float64, dm.NumDoFs)
		pc  solver.Preconditioner
	)
	if sys, err = Assemble(dm, pb.Pattern, p.Source); err != nil {
		return
	}
	bd := InterpolateBoundaryValues(dm, p.BoundaryIDs, p.Boundary)
	if err = ApplyBoundaryValues(sys, bd, x); err != nil {
		return
	}
	switch p.Preconditioner {
	case JacobiPreconditioner:
		if pc, err = solver.NewJacobi(sys.A.Diagonal()); err != nil {
			return
		}
	default:
		pc = solver.Identity{}
	}
	cg, solveErr := solver.CG(sys.A, x, sys.B, pc, p.Control)
	if solveErr != nil && !errors.Is(solveErr, types.ErrNotConverged) {
		err = solveErr
		return
	}
	dm.Distribute(x)
	for k, dof := range bd.DoFs {
		x[dof] = bd.Values[k]
	}
	if utils.IsNan(x) {
		err = fmt.Errorf("%w: solution contains NaN", types.ErrSingularSystem)
		return
	}
	res = &Result{
		Mesh:       pb.Mesh,
		DoFs:       dm,
		Solution:   x,
		Iterations: cg.Iterations,
		Residual:   cg.Residual,
		Converged:  cg.Converged,
	}
	if solveErr != nil {
		pb.warnf("   Warning: %v\n", solveErr)
		err = solveErr
		return
	}
	pb.logf("   %d CG iterations needed to obtain convergence.\n", cg.Iterations)
	pb.logf("   %s\n", utils.GetMemUsage())
	return
}

// Run validates, prepares and solves in one call
func Run(p Parameters) (res *Result, err error) {
	var pb *Problem
	if pb, err = NewProblem(p); err != nil {
		return
	}
	return pb.Solve()
}

func (pb *Problem) logf(format string, args ...interface{}) {
	if !pb.Params.Verbose {
		return
	}
	var w io.Writer = os.Stdout
	if pb.Params.Out != nil {
		w = pb.Params.Out
	}
	fmt.Fprintf(w, format, args...)
}

func (pb *Problem) warnf(format string, args ...interface{}) {
	var w io.Writer = os.Stderr
	if pb.Params.Out != nil {
		w = pb.Params.Out
	}
	fmt.Fprintf(w, format, args...)
}
