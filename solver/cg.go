package solver

import (
	"fmt"
	"math"

	"github.com/notargets/gopoisson/types"
	"gonum.org/v1/gonum/floats"
)

// Operator is the action of a square matrix on a vector, dst = A x
type Operator interface {
	MulVec(dst, x []float64)
}

// Preconditioner applies an approximation of A^-1, dst = P^-1 r
type Preconditioner interface {
	Apply(dst, r []float64)
}

type Identity struct{}

func (Identity) Apply(dst, r []float64) { copy(dst, r) }

// Jacobi scales by the inverse of the matrix diagonal
type Jacobi struct {
	invDiag []float64
}

func NewJacobi(diag []float64) (pc *Jacobi, err error) {
	pc = &Jacobi{invDiag: make([]float64, len(diag))}
	for i, d := range diag {
		if d <= 0 || math.IsNaN(d) {
			err = fmt.Errorf("%w: Jacobi preconditioner needs a positive diagonal, row %d has %v",
				types.ErrSingularSystem, i, d)
			return
		}
		pc.invDiag[i] = 1 / d
	}
	return
}

func (pc *Jacobi) Apply(dst, r []float64) {
	for i, v := range r {
		dst[i] = v * pc.invDiag[i]
	}
}

// Control bounds the iteration: stop when |r|_2 <= Tolerance or after MaxIterations steps
type Control struct {
	MaxIterations int
	Tolerance     float64
}

func DefaultControl() Control {
	return Control{MaxIterations: 1000, Tolerance: 1.e-12}
}

type Result struct {
	Iterations int
	Residual   float64
	Converged  bool
}

/*
CG solves A x = b for symmetric positive definite A, starting from the x passed in.

The residual is checked before the first step, so a system whose initial guess already satisfies the
tolerance returns with zero iterations. When MaxIterations is exhausted x holds the last iterate and the
error wraps types.ErrNotConverged. A search direction with p.Ap <= 0 means A is not positive definite.
*/
func CG(A Operator, x, b []float64, pc Preconditioner, ctl Control) (res Result, err error) {
	n := len(b)
	if len(x) != n {
		err = fmt.Errorf("dimension mismatch: len(x) = %d, len(b) = %d", len(x), n)
		return
	}
	if pc == nil {
		pc = Identity{}
	}
	var (
		r  = make([]float64, n)
		z  = make([]float64, n)
		p  = make([]float64, n)
		Ap = make([]float64, n)
	)
	A.MulVec(Ap, x)
	floats.SubTo(r, b, Ap)
	res.Residual = floats.Norm(r, 2)
	if res.Residual <= ctl.Tolerance {
		res.Converged = true
		return
	}
	pc.Apply(z, r)
	copy(p, z)
	rz := floats.Dot(r, z)
	for res.Iterations < ctl.MaxIterations {
		A.MulVec(Ap, p)
		pAp := floats.Dot(p, Ap)
		if pAp <= 0 || math.IsNaN(pAp) {
			err = fmt.Errorf("%w: p.Ap = %v at iteration %d", types.ErrSingularSystem, pAp, res.Iterations)
			return
		}
		alpha := rz / pAp
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, Ap)
		res.Iterations++
		res.Residual = floats.Norm(r, 2)
		if res.Residual <= ctl.Tolerance {
			res.Converged = true
			return
		}
		pc.Apply(z, r)
		rzNew := floats.Dot(r, z)
		beta := rzNew / rz
		rz = rzNew
		// p = z + beta p
		floats.AddScaledTo(p, z, beta, p)
	}
	err = fmt.Errorf("%w: residual %g after %d iterations, tolerance %g",
		types.ErrNotConverged, res.Residual, res.Iterations, ctl.Tolerance)
	return
}
