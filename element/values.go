package element

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Q1 returns the multilinear corner weights of reference point xi for a cell with 2^dim corners
// numbered lexicographically (bit a of the corner index is the side along axis a).
func Q1(dim int, xi [3]float64, w []float64, dw [][3]float64) {
	nc := 1 << dim
	for c := 0; c < nc; c++ {
		val := 1.
		var g [3]float64
		for b := 0; b < dim; b++ {
			g[b] = 1
		}
		for a := 0; a < dim; a++ {
			var f, df float64
			if c>>a&1 == 1 {
				f, df = 0.5*(1+xi[a]), 0.5
			} else {
				f, df = 0.5*(1-xi[a]), -0.5
			}
			val *= f
			for b := 0; b < dim; b++ {
				if b == a {
					g[b] *= df
				} else {
					g[b] *= f
				}
			}
		}
		w[c] = val
		if dw != nil {
			dw[c] = g
		}
	}
}

// MapPoint maps reference point xi into the physical cell spanned by corners
func MapPoint(dim int, corners [][3]float64, xi [3]float64) (x [3]float64) {
	w := make([]float64, 1<<dim)
	Q1(dim, xi, w, nil)
	for c, wc := range w {
		for a := 0; a < dim; a++ {
			x[a] += wc * corners[c][a]
		}
	}
	return
}

/*
Values holds shape function data of one element at the points of one quadrature rule.
Reference data is computed once, Reinit maps it onto a physical cell.
*/
type Values struct {
	FE      *Lagrange
	Rule    *Rule
	Phi     [][]float64    // [q][n] shape values
	RefGrad [][][3]float64 // [q][n] reference gradients

	// Valid after Reinit
	Grad   [][][3]float64 // [q][n] physical gradients
	JxW    []float64      // |det J| * w_q
	Points [][3]float64   // physical quadrature points

	geoW   [][]float64    // [q][corner] Q1 weights
	geoDW  [][][3]float64 // [q][corner] Q1 reference gradients
	jac    *mat.Dense
	jacInv *mat.Dense
}

func NewValues(fe *Lagrange, rule *Rule) (v *Values) {
	var (
		nq  = rule.Len()
		nc  = 1 << fe.Dim
		dim = fe.Dim
	)
	v = &Values{
		FE:      fe,
		Rule:    rule,
		Phi:     make([][]float64, nq),
		RefGrad: make([][][3]float64, nq),
		Grad:    make([][][3]float64, nq),
		JxW:     make([]float64, nq),
		Points:  make([][3]float64, nq),
		geoW:    make([][]float64, nq),
		geoDW:   make([][][3]float64, nq),
		jac:     mat.NewDense(dim, dim, nil),
		jacInv:  mat.NewDense(dim, dim, nil),
	}
	for q, xi := range rule.Points {
		v.Phi[q] = make([]float64, fe.NumNodes)
		v.RefGrad[q] = make([][3]float64, fe.NumNodes)
		v.Grad[q] = make([][3]float64, fe.NumNodes)
		fe.Eval(xi, v.Phi[q], v.RefGrad[q])
		v.geoW[q] = make([]float64, nc)
		v.geoDW[q] = make([][3]float64, nc)
		Q1(dim, xi, v.geoW[q], v.geoDW[q])
	}
	return
}

// Reinit computes the Jacobian at every quadrature point of the cell spanned by corners and maps the
// shape function gradients to physical coordinates with the inverse Jacobian transpose.
func (v *Values) Reinit(corners [][3]float64) (err error) {
	dim := v.FE.Dim
	for q := range v.Rule.Points {
		var x [3]float64
		v.jac.Zero()
		for c, X := range corners {
			for a := 0; a < dim; a++ {
				x[a] += v.geoW[q][c] * X[a]
				for b := 0; b < dim; b++ {
					v.jac.Set(a, b, v.jac.At(a, b)+X[a]*v.geoDW[q][c][b])
				}
			}
		}
		v.Points[q] = x
		det := mat.Det(v.jac)
		if det == 0 || math.IsNaN(det) {
			return fmt.Errorf("degenerate cell, Jacobian determinant is %v at quadrature point %d", det, q)
		}
		if err = v.jacInv.Inverse(v.jac); err != nil {
			return fmt.Errorf("unable to invert cell Jacobian: %w", err)
		}
		v.JxW[q] = math.Abs(det) * v.Rule.Weights[q]
		for n, rg := range v.RefGrad[q] {
			var g [3]float64
			for a := 0; a < dim; a++ {
				for b := 0; b < dim; b++ {
					g[a] += v.jacInv.At(b, a) * rg[b]
				}
			}
			v.Grad[q][n] = g
		}
	}
	return
}
