package mesh

import (
	"fmt"
	"sort"
	"strings"

	"github.com/notargets/gopoisson/types"
)

type Point [3]float64

// DomainKind tags the geometry a mesh was generated for
type DomainKind uint8

const (
	Box DomainKind = iota
	Annulus
)

var domainNames = map[DomainKind]string{
	Box:     "Box",
	Annulus: "Annulus",
}

func (dk DomainKind) String() string {
	if name, ok := domainNames[dk]; ok {
		return name
	}
	return fmt.Sprintf("DomainKind(%d)", dk)
}

func ParseDomainKind(name string) (dk DomainKind, err error) {
	for k, n := range domainNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return k, nil
		}
	}
	err = fmt.Errorf("%w: unknown domain kind %q, use Box or Annulus", types.ErrInvalidDomain, name)
	return
}

/*
Cell is a quadrilateral (2D) or hexahedron (3D) stored in the mesh arena.

Corners are numbered lexicographically: bit a of the local corner index selects the low (0) or high (1)
side along reference axis a. Face f = 2*axis + side. Parent and Children index into Mesh.Cells.
*/
type Cell struct {
	Vertices   []int
	Level      int
	Parent     int // -1 for a top level cell
	ChildIndex int // position within the parent, same bit convention as the corners
	Children   []int
	Boundary   []int // boundary id per face, -1 for an interior face
	RefineFlag bool
}

func (c *Cell) Active() bool { return len(c.Children) == 0 }

// Manifold places the vertex created when an edge, face or cell is split
type Manifold interface {
	NewVertex(m *Mesh, parents []int) Point
}

type Mesh struct {
	Dim         int
	Kind        DomainKind
	Vertices    []Point
	Cells       []Cell
	NumTopLevel int
	Manifold    Manifold // nil places new vertices at the average of their parents

	edgeMid map[types.EdgeKey]int
	faceMid map[types.FaceKey]int
}

func New(dim int) (m *Mesh) {
	m = &Mesh{
		Dim:     dim,
		edgeMid: make(map[types.EdgeKey]int),
		faceMid: make(map[types.FaceKey]int),
	}
	return
}

func (m *Mesh) AddVertex(p Point) int {
	m.Vertices = append(m.Vertices, p)
	return len(m.Vertices) - 1
}

// AddCell appends a top level cell, only valid before any refinement
func (m *Mesh) AddCell(verts []int) int {
	if len(verts) != m.VerticesPerCell() {
		panic(fmt.Errorf("a %dD cell has %d vertices, have %d", m.Dim, m.VerticesPerCell(), len(verts)))
	}
	boundary := make([]int, m.FacesPerCell())
	for f := range boundary {
		boundary[f] = -1
	}
	m.Cells = append(m.Cells, Cell{
		Vertices: append([]int(nil), verts...),
		Parent:   -1,
		Boundary: boundary,
	})
	m.NumTopLevel = len(m.Cells)
	return len(m.Cells) - 1
}

func (m *Mesh) VerticesPerCell() int { return 1 << m.Dim }
func (m *Mesh) FacesPerCell() int    { return 2 * m.Dim }

// FaceVertices returns the vertices of face f in face local lexicographic order
func (m *Mesh) FaceVertices(c, f int) (verts []int) {
	axis, side := f/2, f%2
	for corner, v := range m.Cells[c].Vertices {
		if corner>>axis&1 == side {
			verts = append(verts, v)
		}
	}
	return
}

func (m *Mesh) CellCorners(c int) (corners [][3]float64) {
	verts := m.Cells[c].Vertices
	corners = make([][3]float64, len(verts))
	for i, v := range verts {
		corners[i] = m.Vertices[v]
	}
	return
}

// ActiveCells returns the leaves of the refinement tree in arena order
func (m *Mesh) ActiveCells() (active []int) {
	for c := range m.Cells {
		if m.Cells[c].Active() {
			active = append(active, c)
		}
	}
	return
}

func (m *Mesh) NumActive() (n int) {
	for c := range m.Cells {
		if m.Cells[c].Active() {
			n++
		}
	}
	return
}

// Midpoint returns the vertex that splits the edge (2 vertices) or, in 3D, the face (4 vertices) spanned
// by verts, if a refinement has created it.
func (m *Mesh) Midpoint(verts []int) (v int, ok bool) {
	switch len(verts) {
	case 2:
		v, ok = m.edgeMid[types.NewEdgeKey([2]int{verts[0], verts[1]})]
	case 4:
		if m.Dim == 3 {
			v, ok = m.faceMid[types.NewFaceKey(verts)]
		}
	}
	return
}

// markBoundary assigns boundary ids to faces of top level cells that are not shared with another cell
func (m *Mesh) markBoundary(id func(c, f int) int) {
	count := make(map[types.FaceKey]int)
	for c := 0; c < m.NumTopLevel; c++ {
		for f := 0; f < m.FacesPerCell(); f++ {
			count[types.NewFaceKey(m.FaceVertices(c, f))]++
		}
	}
	for c := 0; c < m.NumTopLevel; c++ {
		for f := 0; f < m.FacesPerCell(); f++ {
			if count[types.NewFaceKey(m.FaceVertices(c, f))] == 1 {
				m.Cells[c].Boundary[f] = id(c, f)
			} else {
				m.Cells[c].Boundary[f] = -1
			}
		}
	}
}

// BoundaryIDs returns the sorted set of boundary ids present on active cells
func (m *Mesh) BoundaryIDs() (ids []int) {
	seen := make(map[int]bool)
	for _, c := range m.ActiveCells() {
		for _, id := range m.Cells[c].Boundary {
			if id >= 0 && !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Ints(ids)
	return
}

func (m *Mesh) newVertexLocation(parents []int) Point {
	if m.Manifold != nil {
		return m.Manifold.NewVertex(m, parents)
	}
	return Centroid(m, parents)
}

// Centroid is the straight-sided placement: the average of the parent vertices
func Centroid(m *Mesh, parents []int) (p Point) {
	for _, v := range parents {
		for a := 0; a < 3; a++ {
			p[a] += m.Vertices[v][a]
		}
	}
	for a := 0; a < 3; a++ {
		p[a] /= float64(len(parents))
	}
	return
}
