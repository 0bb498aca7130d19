package element

import (
	"fmt"
	"sync"
)

// Rule is a tensor-product quadrature rule on the reference cell [-1,1]^Dim.
// Points beyond Dim are zero.
type Rule struct {
	Dim     int
	Points  [][3]float64
	Weights []float64
}

type rule1D struct {
	x, w []float64
}

var (
	gaussTable   = map[int]rule1D{}
	gaussTableMu sync.Mutex
)

// Gauss1D returns the n-point Gauss-Legendre rule on [-1,1], exact for polynomials of degree 2n-1.
// Rules are generated once per order and shared.
func Gauss1D(n int) (x, w []float64) {
	if n < 1 {
		panic(fmt.Errorf("a Gauss rule needs at least one point, have %d", n))
	}
	gaussTableMu.Lock()
	defer gaussTableMu.Unlock()
	r, ok := gaussTable[n]
	if !ok {
		r.x, r.w = JacobiGQ(0, 0, n-1)
		gaussTable[n] = r
	}
	return r.x, r.w
}

// NewGaussRule builds the tensor-product Gauss rule with n points per axis.
// Points are ordered lexicographically with the first axis running fastest.
func NewGaussRule(dim, n int) (r *Rule) {
	x, w := Gauss1D(n)
	var (
		nz = 1
		ny = 1
	)
	if dim > 1 {
		ny = n
	}
	if dim > 2 {
		nz = n
	}
	r = &Rule{Dim: dim}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < n; i++ {
				var (
					pt  [3]float64
					wgt = w[i]
				)
				pt[0] = x[i]
				if dim > 1 {
					pt[1] = x[j]
					wgt *= w[j]
				}
				if dim > 2 {
					pt[2] = x[k]
					wgt *= w[k]
				}
				r.Points = append(r.Points, pt)
				r.Weights = append(r.Weights, wgt)
			}
		}
	}
	return
}

func (r *Rule) Len() int { return len(r.Weights) }
