package mesh

import (
	"math"

	"github.com/notargets/gopoisson/types"
)

// CellPredicate selects cells for local refinement
type CellPredicate func(m *Mesh, c int) bool

// NearCircle flags cells having a vertex within relTol*radius of the circle around center
func NearCircle(center Point, radius, relTol float64) CellPredicate {
	return func(m *Mesh, c int) bool {
		for _, v := range m.Cells[c].Vertices {
			p := m.Vertices[v]
			if math.Abs(math.Hypot(p[0]-center[0], p[1]-center[1])-radius) <= relTol*radius {
				return true
			}
		}
		return false
	}
}

// RefineGlobal splits every active cell into 2^dim children, levels times
func (m *Mesh) RefineGlobal(levels int) {
	for l := 0; l < levels; l++ {
		for _, c := range m.ActiveCells() {
			m.Cells[c].RefineFlag = true
		}
		m.ExecuteRefinement()
	}
}

/*
RefineNearBoundary runs up to passes rounds of flagging the active cells selected by pred and refining
them. A round that flags nothing ends the loop, so the mesh is left untouched when no cell qualifies.
Returns the number of cells split, including those split to keep the mesh balanced.
*/
func (m *Mesh) RefineNearBoundary(pred CellPredicate, passes int) (refined int) {
	for pass := 0; pass < passes; pass++ {
		var flagged int
		for _, c := range m.ActiveCells() {
			if pred(m, c) {
				m.Cells[c].RefineFlag = true
				flagged++
			}
		}
		if flagged == 0 {
			break
		}
		refined += m.ExecuteRefinement()
	}
	return
}

/*
ExecuteRefinement splits every flagged active cell, then keeps splitting cells until no edge or face of an
active cell is subdivided more than once by its neighbors, so at most one hanging node level exists.
*/
func (m *Mesh) ExecuteRefinement() (refined int) {
	for {
		var flagged []int
		for c := range m.Cells {
			cell := &m.Cells[c]
			if !cell.RefineFlag {
				continue
			}
			if cell.Active() {
				flagged = append(flagged, c)
			} else {
				cell.RefineFlag = false
			}
		}
		if len(flagged) == 0 {
			return
		}
		for _, c := range flagged {
			m.refineCell(c)
			refined++
		}
		for _, c := range m.ActiveCells() {
			if m.unbalanced(c) {
				m.Cells[c].RefineFlag = true
			}
		}
	}
}

func (m *Mesh) refineCell(c int) {
	var (
		d      = m.Dim
		parent = m.Cells[c]
		nsub   = 1
	)
	for a := 0; a < d; a++ {
		nsub *= 3
	}
	// sub-vertex grid {0,1,2}^d: 0 and 2 are the parent sides, 1 the midpoint
	sub := make([]int, nsub)
	for s := range sub {
		g := base3(s, d)
		var parents []int
		for corner, v := range parent.Vertices {
			keep := true
			for a := 0; a < d; a++ {
				bit := corner >> a & 1
				if (g[a] == 0 && bit == 1) || (g[a] == 2 && bit == 0) {
					keep = false
					break
				}
			}
			if keep {
				parents = append(parents, v)
			}
		}
		sub[s] = m.splitVertex(parents)
	}
	children := make([]int, 1<<d)
	for o := range children {
		verts := make([]int, 1<<d)
		for b := range verts {
			var s, mul = 0, 1
			for a := 0; a < d; a++ {
				s += (o>>a&1 + b>>a&1) * mul
				mul *= 3
			}
			verts[b] = sub[s]
		}
		boundary := make([]int, 2*d)
		for f := range boundary {
			axis, side := f/2, f%2
			if o>>axis&1 == side {
				boundary[f] = parent.Boundary[f]
			} else {
				boundary[f] = -1
			}
		}
		m.Cells = append(m.Cells, Cell{
			Vertices:   verts,
			Level:      parent.Level + 1,
			Parent:     c,
			ChildIndex: o,
			Boundary:   boundary,
		})
		children[o] = len(m.Cells) - 1
	}
	m.Cells[c].Children = children
	m.Cells[c].RefineFlag = false
}

// splitVertex returns the vertex splitting the entity spanned by parents, creating it once per entity
func (m *Mesh) splitVertex(parents []int) (v int) {
	var ok bool
	switch {
	case len(parents) == 1:
		return parents[0]
	case len(parents) == 2:
		key := types.NewEdgeKey([2]int{parents[0], parents[1]})
		if v, ok = m.edgeMid[key]; !ok {
			v = m.AddVertex(m.newVertexLocation(parents))
			m.edgeMid[key] = v
		}
		return
	case len(parents) == 4 && m.Dim == 3:
		key := types.NewFaceKey(parents)
		if v, ok = m.faceMid[key]; !ok {
			v = m.AddVertex(m.newVertexLocation(parents))
			m.faceMid[key] = v
		}
		return
	}
	return m.AddVertex(m.newVertexLocation(parents))
}

// unbalanced reports whether an edge or face of active cell c has been split twice by finer neighbors
func (m *Mesh) unbalanced(c int) bool {
	verts := m.Cells[c].Vertices
	for corner, v0 := range verts {
		for a := 0; a < m.Dim; a++ {
			if corner>>a&1 == 1 {
				continue
			}
			v1 := verts[corner|1<<a]
			mid, ok := m.edgeMid[types.NewEdgeKey([2]int{v0, v1})]
			if !ok {
				continue
			}
			if _, ok = m.edgeMid[types.NewEdgeKey([2]int{v0, mid})]; ok {
				return true
			}
			if _, ok = m.edgeMid[types.NewEdgeKey([2]int{mid, v1})]; ok {
				return true
			}
		}
	}
	if m.Dim < 3 {
		return false
	}
	for f := 0; f < m.FacesPerCell(); f++ {
		grid, ok := m.faceGrid(m.FaceVertices(c, f))
		if !ok {
			continue
		}
		for o := 0; o < 4; o++ {
			ou, ov := o&1, o>>1&1
			quad := []int{
				grid[ou][ov], grid[ou+1][ov],
				grid[ou][ov+1], grid[ou+1][ov+1],
			}
			if _, ok = m.faceMid[types.NewFaceKey(quad)]; ok {
				return true
			}
		}
	}
	return false
}

// faceGrid returns the 3x3 vertex grid of a split quadrilateral face given in face lexicographic order
func (m *Mesh) faceGrid(fv []int) (grid [3][3]int, ok bool) {
	var center int
	if center, ok = m.faceMid[types.NewFaceKey(fv)]; !ok {
		return
	}
	grid[0][0], grid[2][0], grid[0][2], grid[2][2] = fv[0], fv[1], fv[2], fv[3]
	grid[1][1] = center
	edges := [4][3]int{
		{0, 1, 0}, // v = 0 edge between fv0 and fv1, stored at grid[1][0]
		{2, 3, 2}, // v = 2
		{0, 2, 0}, // u = 0
		{1, 3, 2}, // u = 2
	}
	for i, e := range edges {
		mid, found := m.edgeMid[types.NewEdgeKey([2]int{fv[e[0]], fv[e[1]]})]
		if !found {
			return grid, false
		}
		if i < 2 {
			grid[1][e[2]] = mid
		} else {
			grid[e[2]][1] = mid
		}
	}
	return
}

func base3(s, d int) (g [3]int) {
	for a := 0; a < d; a++ {
		g[a] = s % 3
		s /= 3
	}
	return
}
