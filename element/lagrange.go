package element

import (
	"fmt"
	"sync"

	"github.com/notargets/gopoisson/types"
)

// Family tags the reference cell of a tensor-product element
type Family uint8

const (
	Quadrilateral Family = iota
	Hexahedron
)

func (f Family) String() string {
	switch f {
	case Quadrilateral:
		return "Quadrilateral"
	case Hexahedron:
		return "Hexahedron"
	}
	return fmt.Sprintf("Family(%d)", f)
}

func (f Family) Dim() int {
	if f == Hexahedron {
		return 3
	}
	return 2
}

func FamilyOf(dim int) (Family, error) {
	switch dim {
	case 2:
		return Quadrilateral, nil
	case 3:
		return Hexahedron, nil
	}
	return 0, fmt.Errorf("%w: no tensor-product element family in %d dimensions", types.ErrInvalidDomain, dim)
}

/*
Lagrange is the continuous tensor-product Lagrange element Q_p on [-1,1]^d.

Support points per axis are the p+1 Gauss-Lobatto points, so vertices and edges carry nodes at the
reference corners and edge ends. Local nodes are numbered lexicographically, n = i + (p+1)*j + (p+1)^2*k.
*/
type Lagrange struct {
	Family   Family
	Dim      int
	Degree   int
	Nodes1D  []float64
	NumNodes int
	denom    []float64 // prod_{m != i} (x_i - x_m)
}

var (
	lagrangeCache   = map[[2]int]*Lagrange{}
	lagrangeCacheMu sync.Mutex
)

// NewLagrange returns the Q_p element for the family, shared per (family, degree).
func NewLagrange(family Family, degree int) (le *Lagrange, err error) {
	if degree < 1 {
		err = fmt.Errorf("%w: degree must be >= 1, have %d", types.ErrInvalidDegree, degree)
		return
	}
	lagrangeCacheMu.Lock()
	defer lagrangeCacheMu.Unlock()
	key := [2]int{int(family), degree}
	if le = lagrangeCache[key]; le != nil {
		return
	}
	le = &Lagrange{
		Family:  family,
		Dim:     family.Dim(),
		Degree:  degree,
		Nodes1D: JacobiGL(0, 0, degree),
	}
	le.NumNodes = 1
	for d := 0; d < le.Dim; d++ {
		le.NumNodes *= degree + 1
	}
	le.denom = make([]float64, degree+1)
	for i, xi := range le.Nodes1D {
		le.denom[i] = 1
		for m, xm := range le.Nodes1D {
			if m != i {
				le.denom[i] *= xi - xm
			}
		}
	}
	lagrangeCache[key] = le
	return
}

// NodeIJK returns the per-axis support point indices of local node n
func (le *Lagrange) NodeIJK(n int) (ijk [3]int) {
	np := le.Degree + 1
	for d := 0; d < le.Dim; d++ {
		ijk[d] = n % np
		n /= np
	}
	return
}

func (le *Lagrange) NodeIndex(ijk [3]int) (n int) {
	np := le.Degree + 1
	for d := le.Dim - 1; d >= 0; d-- {
		n = n*np + ijk[d]
	}
	return
}

// RefNode returns the reference coordinates of local node n
func (le *Lagrange) RefNode(n int) (xi [3]float64) {
	ijk := le.NodeIJK(n)
	for d := 0; d < le.Dim; d++ {
		xi[d] = le.Nodes1D[ijk[d]]
	}
	return
}

// Basis1D evaluates the 1D Lagrange polynomials and their derivatives at x
func (le *Lagrange) Basis1D(x float64, v, dv []float64) {
	nodes := le.Nodes1D
	for i := range nodes {
		var (
			val  = 1.
			dval = 0.
		)
		for m, xm := range nodes {
			if m == i {
				continue
			}
			// product rule: d/dx prod (x - x_m) accumulates one dropped factor at a time
			dval = dval*(x-xm) + val
			val *= x - xm
		}
		v[i] = val / le.denom[i]
		if dv != nil {
			dv[i] = dval / le.denom[i]
		}
	}
}

// Eval fills vals[n] = phi_n(xi) and, if grads is not nil, grads[n] = reference gradient of phi_n.
func (le *Lagrange) Eval(xi [3]float64, vals []float64, grads [][3]float64) {
	var (
		np = le.Degree + 1
		v  [3][]float64
		dv [3][]float64
	)
	for d := 0; d < le.Dim; d++ {
		v[d], dv[d] = make([]float64, np), make([]float64, np)
		le.Basis1D(xi[d], v[d], dv[d])
	}
	for n := 0; n < le.NumNodes; n++ {
		ijk := le.NodeIJK(n)
		val := 1.
		for d := 0; d < le.Dim; d++ {
			val *= v[d][ijk[d]]
		}
		vals[n] = val
		if grads == nil {
			continue
		}
		var g [3]float64
		for d := 0; d < le.Dim; d++ {
			g[d] = 1
			for e := 0; e < le.Dim; e++ {
				if e == d {
					g[d] *= dv[e][ijk[e]]
				} else {
					g[d] *= v[e][ijk[e]]
				}
			}
		}
		grads[n] = g
	}
}

// FaceNodes returns the local nodes lying on face f = 2*axis + side
func (le *Lagrange) FaceNodes(f int) (nodes []int) {
	axis, side := f/2, f%2
	target := 0
	if side == 1 {
		target = le.Degree
	}
	for n := 0; n < le.NumNodes; n++ {
		if le.NodeIJK(n)[axis] == target {
			nodes = append(nodes, n)
		}
	}
	return
}
