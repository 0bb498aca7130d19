package mesh

import (
	"fmt"
	"math"

	"github.com/notargets/gopoisson/types"
)

// BaseCellSize is the target edge length of the coarse box cells before refinement
var BaseCellSize = 1.

// DefaultAnnulusCells is the number of base cells repeated around the annulus center
const DefaultAnnulusCells = 8

// Repetitions returns the number of coarse cells along each box axis
func Repetitions(lengths []float64) (reps []int) {
	reps = make([]int, len(lengths))
	for a, l := range lengths {
		reps[a] = int(math.Ceil(l/BaseCellSize - 1e-9))
		if reps[a] < 1 {
			reps[a] = 1
		}
	}
	return
}

/*
NewBox meshes the axis aligned box [0,L0]x[0,L1](x[0,L2]) with a structured grid of coarse cells.
Boundary faces are colorized: the face on side s of axis a carries boundary id 2*a+s.
*/
func NewBox(lengths []float64) (m *Mesh, err error) {
	if err = ValidateBox(lengths); err != nil {
		return
	}
	var (
		dim  = len(lengths)
		reps = Repetitions(lengths)
		nv   [3]int
		h    [3]float64
	)
	for a := 0; a < 3; a++ {
		nv[a] = 1
		if a < dim {
			nv[a] = reps[a] + 1
			h[a] = lengths[a] / float64(reps[a])
		}
	}
	m = New(dim)
	m.Kind = Box
	for k := 0; k < nv[2]; k++ {
		for j := 0; j < nv[1]; j++ {
			for i := 0; i < nv[0]; i++ {
				m.AddVertex(Point{float64(i) * h[0], float64(j) * h[1], float64(k) * h[2]})
			}
		}
	}
	vertexIndex := func(i, j, k int) int { return i + nv[0]*(j+nv[1]*k) }
	nc := [3]int{1, 1, 1}
	copy(nc[:], reps)
	verts := make([]int, 1<<dim)
	for k := 0; k < nc[2]; k++ {
		for j := 0; j < nc[1]; j++ {
			for i := 0; i < nc[0]; i++ {
				for corner := range verts {
					verts[corner] = vertexIndex(i+corner&1, j+corner>>1&1, k+corner>>2&1)
				}
				m.AddCell(verts)
			}
		}
	}
	m.markBoundary(func(c, f int) int { return f })
	return
}

func ValidateBox(lengths []float64) error {
	if len(lengths) != 2 && len(lengths) != 3 {
		return fmt.Errorf("%w: a box needs 2 or 3 lengths, have %d", types.ErrInvalidDomain, len(lengths))
	}
	for a, l := range lengths {
		if !(l > 0) || math.IsInf(l, 0) {
			return fmt.Errorf("%w: box length %d must be positive and finite, have %v",
				types.ErrInvalidDomain, a, l)
		}
	}
	return nil
}

// Shell is the manifold of a 2D annulus: vertices created on a boundary edge are pushed onto the circle
// the edge belongs to, all other new vertices are straight-sided averages.
type Shell struct {
	Center       Point
	Inner, Outer float64
}

func (s Shell) NewVertex(m *Mesh, parents []int) Point {
	p := Centroid(m, parents)
	if len(parents) != 2 {
		return p
	}
	for _, r := range []float64{s.Inner, s.Outer} {
		if s.onCircle(m.Vertices[parents[0]], r) && s.onCircle(m.Vertices[parents[1]], r) {
			return s.project(p, r)
		}
	}
	return p
}

func (s Shell) Radius(p Point) float64 {
	return math.Hypot(p[0]-s.Center[0], p[1]-s.Center[1])
}

func (s Shell) onCircle(p Point, r float64) bool {
	return math.Abs(s.Radius(p)-r) <= 1e-10*r
}

func (s Shell) project(p Point, r float64) Point {
	d := s.Radius(p)
	return Point{
		s.Center[0] + (p[0]-s.Center[0])*r/d,
		s.Center[1] + (p[1]-s.Center[1])*r/d,
	}
}

/*
NewAnnulus meshes the 2D ring between radii inner and outer around center with nCells quadrilaterals,
one base cell repeated around the center. Reference axis 0 runs outward, axis 1 counterclockwise.
The inner circle carries boundary id 0, the outer circle boundary id 1.
*/
func NewAnnulus(center Point, inner, outer float64, nCells int) (m *Mesh, err error) {
	if err = ValidateAnnulus(inner, outer, nCells); err != nil {
		return
	}
	m = New(2)
	m.Kind = Annulus
	shell := Shell{Center: center, Inner: inner, Outer: outer}
	m.Manifold = shell
	for _, r := range []float64{inner, outer} {
		for i := 0; i < nCells; i++ {
			theta := 2 * math.Pi * float64(i) / float64(nCells)
			m.AddVertex(Point{center[0] + r*math.Cos(theta), center[1] + r*math.Sin(theta)})
		}
	}
	for i := 0; i < nCells; i++ {
		next := (i + 1) % nCells
		m.AddCell([]int{i, nCells + i, next, nCells + next})
	}
	m.markBoundary(func(c, f int) int { return f })
	return
}

func ValidateAnnulus(inner, outer float64, nCells int) error {
	switch {
	case !(inner > 0) || math.IsInf(outer, 0):
		return fmt.Errorf("%w: radii must be positive and finite, have inner %v outer %v",
			types.ErrInvalidDomain, inner, outer)
	case !(inner < outer):
		return fmt.Errorf("%w: inner radius %v must be smaller than outer radius %v",
			types.ErrInvalidDomain, inner, outer)
	case nCells < 3:
		return fmt.Errorf("%w: an annulus needs at least 3 base cells, have %d", types.ErrInvalidDomain, nCells)
	}
	return nil
}
