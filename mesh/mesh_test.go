package mesh

import (
	"errors"
	"math"
	"testing"

	"github.com/notargets/gopoisson/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quadArea(m *Mesh, c int) float64 {
	v := m.Cells[c].Vertices
	ring := []Point{m.Vertices[v[0]], m.Vertices[v[1]], m.Vertices[v[3]], m.Vertices[v[2]]}
	var a float64
	for i := range ring {
		j := (i + 1) % 4
		a += ring[i][0]*ring[j][1] - ring[j][0]*ring[i][1]
	}
	return 0.5 * a
}

func activeArea(m *Mesh) (area float64) {
	for _, c := range m.ActiveCells() {
		area += quadArea(m, c)
	}
	return
}

func cloneMesh(m *Mesh) (vertices []Point, cells []Cell) {
	vertices = append([]Point(nil), m.Vertices...)
	for _, c := range m.Cells {
		cc := c
		cc.Vertices = append([]int(nil), c.Vertices...)
		cc.Children = append([]int(nil), c.Children...)
		cc.Boundary = append([]int(nil), c.Boundary...)
		cells = append(cells, cc)
	}
	return
}

func TestNewBox(t *testing.T) {
	m, err := NewBox([]float64{2, 4})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Dim)
	assert.Equal(t, Box, m.Kind)
	assert.Equal(t, 8, m.NumActive())
	assert.Equal(t, 15, len(m.Vertices))
	assert.Equal(t, []int{0, 1, 2, 3}, m.BoundaryIDs())
	// first cell sits in the corner at the origin: low faces on the boundary, high faces interior
	assert.Equal(t, []int{0, -1, 2, -1}, m.Cells[0].Boundary)
	assert.InDelta(t, 8., activeArea(m), 1e-14)

	m3, err := NewBox([]float64{1, 1, 2.5})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 3}, Repetitions([]float64{1, 1, 2.5}))
	assert.Equal(t, 3, m3.NumActive())
	assert.Equal(t, 16, len(m3.Vertices))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, m3.BoundaryIDs())

	for _, bad := range [][]float64{{1}, {1, 2, 3, 4}, {1, 0}, {-1, 2}, {1, math.NaN()}, {1, math.Inf(1)}} {
		_, err = NewBox(bad)
		assert.True(t, errors.Is(err, types.ErrInvalidDomain), "lengths %v", bad)
	}
}

func TestRefineGlobal(t *testing.T) {
	for k := 0; k <= 4; k++ {
		m, err := NewBox([]float64{2, 4})
		require.NoError(t, err)
		m.RefineGlobal(k)
		n := 1 << k
		assert.Equal(t, 8*n*n, m.NumActive())
		assert.Equal(t, (2*n+1)*(4*n+1), len(m.Vertices))
		assert.InDelta(t, 8., activeArea(m), 1e-12)
	}
	m, err := NewBox([]float64{1, 1, 2})
	require.NoError(t, err)
	m.RefineGlobal(2)
	assert.Equal(t, 2*64, m.NumActive())
	assert.Equal(t, 5*5*9, len(m.Vertices))
	for _, c := range m.ActiveCells() {
		assert.Equal(t, 2, m.Cells[c].Level)
		assert.False(t, m.unbalanced(c))
	}
	// children inherit boundary faces only on the parent's boundary side
	var onBoundary int
	for _, c := range m.ActiveCells() {
		if m.Cells[c].Boundary[4] == 4 {
			onBoundary++
			assert.InDelta(t, 0., m.Vertices[m.Cells[c].Vertices[0]][2], 1e-15)
		}
	}
	assert.Equal(t, 16, onBoundary)
}

func TestNewAnnulus(t *testing.T) {
	_, err := NewAnnulus(Point{}, 2, 1, DefaultAnnulusCells)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrInvalidDomain))
	_, err = NewAnnulus(Point{}, 1, 1, DefaultAnnulusCells)
	assert.True(t, errors.Is(err, types.ErrInvalidDomain))
	_, err = NewAnnulus(Point{}, 0, 1, DefaultAnnulusCells)
	assert.True(t, errors.Is(err, types.ErrInvalidDomain))
	_, err = NewAnnulus(Point{}, 1, 2, 2)
	assert.True(t, errors.Is(err, types.ErrInvalidDomain))

	center := Point{1, 0}
	m, err := NewAnnulus(center, 1, 2, DefaultAnnulusCells)
	require.NoError(t, err)
	assert.Equal(t, Annulus, m.Kind)
	assert.Equal(t, 8, m.NumActive())
	assert.Equal(t, []int{0, 1}, m.BoundaryIDs())
	for c := range m.Cells {
		assert.Equal(t, []int{0, 1, -1, -1}, m.Cells[c].Boundary)
		assert.Greater(t, quadArea(m, c), 0.)
	}
	exact := math.Pi * (4 - 1)
	coarse := activeArea(m)
	m.RefineGlobal(3)
	fine := activeArea(m)
	assert.Greater(t, fine, coarse)
	assert.InDelta(t, exact, fine, 0.01*exact)
	shell := m.Manifold.(Shell)
	for _, c := range m.ActiveCells() {
		cell := m.Cells[c]
		for f, id := range cell.Boundary {
			if id < 0 {
				continue
			}
			r := []float64{1, 2}[id]
			for _, v := range m.FaceVertices(c, f) {
				assert.InDelta(t, r, shell.Radius(m.Vertices[v]), 1e-12)
			}
		}
	}
}

func TestRefineNearBoundary(t *testing.T) {
	m, err := NewAnnulus(Point{}, 1, 2, DefaultAnnulusCells)
	require.NoError(t, err)
	pred := NearCircle(Point{}, 1, 1e-6)
	refined := m.RefineNearBoundary(pred, 3)
	assert.Greater(t, refined, 0)
	// every cell touching the inner circle went through all three passes
	var maxLevel int
	for _, c := range m.ActiveCells() {
		if pred(m, c) {
			assert.Equal(t, 3, m.Cells[c].Level)
		}
		if m.Cells[c].Level > maxLevel {
			maxLevel = m.Cells[c].Level
		}
		assert.False(t, m.unbalanced(c))
	}
	assert.Equal(t, 3, maxLevel)
	// outer cells were left coarser
	var coarser int
	for _, c := range m.ActiveCells() {
		if m.Cells[c].Level < 3 {
			coarser++
		}
	}
	assert.Greater(t, coarser, 0)

	// nothing qualifies: the mesh is unchanged
	vertices, cells := cloneMesh(m)
	none := NearCircle(Point{}, 10, 1e-6)
	assert.Equal(t, 0, m.RefineNearBoundary(none, 3))
	v2, c2 := cloneMesh(m)
	assert.Equal(t, vertices, v2)
	assert.Equal(t, cells, c2)

	// zero passes with the inner circle predicate leave the mesh unchanged
	assert.Equal(t, 0, m.RefineNearBoundary(pred, 0))
	v2, c2 = cloneMesh(m)
	assert.Equal(t, vertices, v2)
	assert.Equal(t, cells, c2)

	// the inner circle predicate is not idempotent, another pass splits the circle cells again
	assert.Greater(t, m.RefineNearBoundary(pred, 1), 0)
	for _, c := range m.ActiveCells() {
		if pred(m, c) {
			assert.Equal(t, 4, m.Cells[c].Level)
		}
		assert.False(t, m.unbalanced(c))
	}
}

func TestBalance(t *testing.T) {
	// repeatedly refining the corner cell of a box forces its neighbors to follow
	m, err := NewBox([]float64{4, 4})
	require.NoError(t, err)
	corner := func(m *Mesh, c int) bool {
		for _, v := range m.Cells[c].Vertices {
			if m.Vertices[v] == (Point{}) {
				return true
			}
		}
		return false
	}
	m.RefineNearBoundary(corner, 4)
	for _, c := range m.ActiveCells() {
		assert.False(t, m.unbalanced(c))
	}
	assert.InDelta(t, 16., activeArea(m), 1e-12)

	// refining next to a coarse neighbor twice splits the neighbor too
	m2, err := NewBox([]float64{2, 1})
	require.NoError(t, err)
	m2.RefineNearBoundary(corner, 1)
	assert.True(t, m2.Cells[1].Active())
	touchesX1 := func(m *Mesh, c int) bool {
		if m.Cells[c].Level == 0 {
			return false
		}
		for _, v := range m.Cells[c].Vertices {
			if m.Vertices[v][0] == 1 {
				return true
			}
		}
		return false
	}
	m2.RefineNearBoundary(touchesX1, 1)
	assert.False(t, m2.Cells[1].Active())
	for _, c := range m2.ActiveCells() {
		assert.False(t, m2.unbalanced(c))
	}
	assert.InDelta(t, 2., activeArea(m2), 1e-14)

	m3, err := NewBox([]float64{2, 2, 2})
	require.NoError(t, err)
	m3.RefineNearBoundary(corner, 3)
	var vol float64
	for _, c := range m3.ActiveCells() {
		assert.False(t, m3.unbalanced(c))
		h := math.Pow(0.5, float64(m3.Cells[c].Level))
		vol += h * h * h
	}
	assert.InDelta(t, 8., vol, 1e-12)
}

func TestDomainKind(t *testing.T) {
	dk, err := ParseDomainKind("annulus")
	require.NoError(t, err)
	assert.Equal(t, Annulus, dk)
	assert.Equal(t, "Box", Box.String())
	_, err = ParseDomainKind("sphere")
	assert.True(t, errors.Is(err, types.ErrInvalidDomain))
}
