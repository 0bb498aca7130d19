package dofs

import (
	"fmt"
	"math"
	"sort"

	"github.com/notargets/gopoisson/element"
	"github.com/notargets/gopoisson/mesh"
	"github.com/notargets/gopoisson/utils"
)

/*
NodeKey identifies a support point topologically: the corner vertices of the smallest mesh entity that
contains it, with the multilinear weights of the point on that entity. Every cell sharing the entity
produces the same key, whatever its local orientation, because the Gauss-Lobatto points are exactly
symmetric and the weights are products of (1-x)/2 and (1+x)/2.
*/
type NodeKey struct {
	N int
	V [8]int
	W [8]float64
}

func newNodeKey(verts []int, weights []float64) (key NodeKey) {
	idx := make([]int, 0, len(verts))
	for i, w := range weights {
		if w != 0 {
			idx = append(idx, i)
		}
	}
	sort.Slice(idx, func(a, b int) bool { return verts[idx[a]] < verts[idx[b]] })
	key.N = len(idx)
	for n, i := range idx {
		key.V[n], key.W[n] = verts[i], weights[i]
	}
	return
}

// Location is the weighted average of the key vertices
func (key NodeKey) Location(m *mesh.Mesh) (p mesh.Point) {
	for n := 0; n < key.N; n++ {
		x := m.Vertices[key.V[n]]
		for a := 0; a < 3; a++ {
			p[a] += key.W[n] * x[a]
		}
	}
	return
}

// Entry is one master of a constrained degree of freedom
type Entry struct {
	DoF    int
	Weight float64
}

// Constraint expresses a hanging degree of freedom as a weighted sum of unconstrained ones
type Constraint struct {
	DoF     int
	Entries []Entry
}

/*
DoFMap numbers the degrees of freedom of a continuous Q_p space on the active cells of a mesh.

Nodes shared between cells get one number. Nodes on the fine side of a refined edge or face that are not
also nodes of the coarse neighbor are constrained: their value follows from the coarse cell's shape
functions. Constrained DoFs keep their own number so they can be written into solution vectors.
*/
type DoFMap struct {
	Mesh        *mesh.Mesh
	FE          *element.Lagrange
	NumDoFs     int
	Cells       []int   // active cells, in the order of CellDoFs
	CellDoFs    [][]int // global DoF of each local node
	Support     []mesh.Point
	Constraints []Constraint // sorted by DoF
	constraint  map[int]int  // DoF -> index into Constraints
}

type pendingConstraint struct {
	masters []NodeKey
	weights []float64
}

func Distribute(m *mesh.Mesh, fe *element.Lagrange) (dm *DoFMap, err error) {
	if fe.Dim != m.Dim {
		err = fmt.Errorf("element is %dD but the mesh is %dD", fe.Dim, m.Dim)
		return
	}
	dm = &DoFMap{
		Mesh:       m,
		FE:         fe,
		Cells:      m.ActiveCells(),
		constraint: make(map[int]int),
	}
	cellKeys := make([][]NodeKey, len(dm.Cells))
	for i, c := range dm.Cells {
		cellKeys[i] = dm.cellNodeKeys(c)
	}

	var (
		pending = make(map[NodeKey]pendingConstraint)
		order   []NodeKey
	)
	for i, c := range dm.Cells {
		if err = dm.hangingNodes(c, cellKeys[i], pending, &order); err != nil {
			return
		}
	}

	// Hanging keys with a single unit master are the same support point as the master
	alias := make(map[NodeKey]NodeKey)
	for _, key := range order {
		pc := pending[key]
		if len(pc.masters) == 1 && math.Abs(pc.weights[0]-1) < utils.NODETOL {
			alias[key] = pc.masters[0]
			delete(pending, key)
		}
	}
	resolve := func(key NodeKey) NodeKey {
		for i := 0; i < 16; i++ {
			next, ok := alias[key]
			if !ok {
				break
			}
			key = next
		}
		return key
	}

	numbering := make(map[NodeKey]int)
	dm.CellDoFs = make([][]int, len(dm.Cells))
	for i, keys := range cellKeys {
		dofs := make([]int, len(keys))
		for n, key := range keys {
			key = resolve(key)
			dof, ok := numbering[key]
			if !ok {
				dof = dm.NumDoFs
				numbering[key] = dof
				dm.Support = append(dm.Support, key.Location(m))
				dm.NumDoFs++
			}
			dofs[n] = dof
		}
		dm.CellDoFs[i] = dofs
	}

	for _, key := range order {
		pc, ok := pending[key]
		if !ok {
			continue
		}
		dof, ok := numbering[key]
		if !ok {
			err = fmt.Errorf("hanging support point %v is not a node of any active cell", key.Location(m))
			return
		}
		con := Constraint{DoF: dof}
		for j, mk := range pc.masters {
			mdof, found := numbering[resolve(mk)]
			if !found {
				err = fmt.Errorf("master support point %v is not numbered", mk.Location(m))
				return
			}
			con.Entries = append(con.Entries, Entry{DoF: mdof, Weight: pc.weights[j]})
		}
		dm.Constraints = append(dm.Constraints, con)
	}
	sort.Slice(dm.Constraints, func(a, b int) bool { return dm.Constraints[a].DoF < dm.Constraints[b].DoF })
	for i, con := range dm.Constraints {
		dm.constraint[con.DoF] = i
	}
	err = dm.closeConstraints()
	return
}

// cellNodeKeys returns the key of every local node of cell c, in local node order
func (dm *DoFMap) cellNodeKeys(c int) (keys []NodeKey) {
	var (
		fe      = dm.FE
		verts   = dm.Mesh.Cells[c].Vertices
		nc      = len(verts)
		weights = make([]float64, nc)
	)
	keys = make([]NodeKey, fe.NumNodes)
	for n := range keys {
		ijk := fe.NodeIJK(n)
		for corner := 0; corner < nc; corner++ {
			w := 1.
			for a := 0; a < fe.Dim; a++ {
				x := fe.Nodes1D[ijk[a]]
				if corner>>a&1 == 0 {
					w *= (1 - x) / 2
				} else {
					w *= (1 + x) / 2
				}
			}
			weights[corner] = w
		}
		keys[n] = newNodeKey(verts, weights)
	}
	return
}

/*
hangingNodes visits every edge, and in 3D every face, of cell c. When the entity has been split by a finer
neighbor, the support points of the fine side are expressed through the shape functions of c.
*/
func (dm *DoFMap) hangingNodes(c int, own []NodeKey, pending map[NodeKey]pendingConstraint,
	order *[]NodeKey) (err error) {
	var (
		m     = dm.Mesh
		fe    = dm.FE
		dim   = m.Dim
		verts = m.Cells[c].Vertices
		isOwn = make(map[NodeKey]int, len(own))
		vals  = make([]float64, fe.NumNodes)
	)
	for n, key := range own {
		isOwn[key] = n
	}
	for free := 1; free < 1<<dim-1; free++ {
		var freeAxes []int
		for a := 0; a < dim; a++ {
			if free>>a&1 == 1 {
				freeAxes = append(freeAxes, a)
			}
		}
		fixedMask := (1<<dim - 1) &^ free
		for sides := 0; sides < 1<<dim; sides++ {
			if sides&free != 0 {
				continue
			}
			var entity []int
			for corner := 0; corner < len(verts); corner++ {
				if corner&fixedMask == sides {
					entity = append(entity, verts[corner])
				}
			}
			if _, split := m.Midpoint(entity); !split {
				continue
			}
			sub := func(g [3]int) (v int, ok bool) {
				var parents []int
				for corner := 0; corner < len(verts); corner++ {
					match := true
					for a := 0; a < dim; a++ {
						if g[a] == 1 {
							continue
						}
						if corner>>a&1 != g[a]/2 {
							match = false
							break
						}
					}
					if match {
						parents = append(parents, verts[corner])
					}
				}
				if len(parents) == 1 {
					return parents[0], true
				}
				return m.Midpoint(parents)
			}
			if err = dm.fineNodes(c, freeAxes, sides, sub, isOwn, vals, own, pending, order); err != nil {
				return
			}
		}
	}
	return
}

func (dm *DoFMap) fineNodes(c int, freeAxes []int, sides int, sub func(g [3]int) (int, bool),
	isOwn map[NodeKey]int, vals []float64, own []NodeKey, pending map[NodeKey]pendingConstraint,
	order *[]NodeKey) (err error) {
	var (
		fe     = dm.FE
		dim    = dm.Mesh.Dim
		nf     = len(freeAxes)
		np     = fe.Degree + 1
		nTuple = 1
	)
	for i := 0; i < nf; i++ {
		nTuple *= np
	}
	for child := 0; child < 1<<nf; child++ {
		// corners of the child entity, as sub-grid vertices
		corners := make([]int, 1<<nf)
		for b := range corners {
			var g [3]int
			for a := 0; a < dim; a++ {
				g[a] = 2 * (sides >> a & 1)
			}
			for i, a := range freeAxes {
				g[a] = child>>i&1 + b>>i&1
			}
			v, ok := sub(g)
			if !ok {
				err = fmt.Errorf("cell %d: refined entity is missing a sub-vertex", c)
				return
			}
			corners[b] = v
		}
		weights := make([]float64, len(corners))
		for t := 0; t < nTuple; t++ {
			var (
				xi [3]float64
				tt = t
			)
			for a := 0; a < dim; a++ {
				xi[a] = float64(2*(sides>>a&1) - 1)
			}
			x := make([]float64, nf)
			for i, a := range freeAxes {
				x[i] = fe.Nodes1D[tt%np]
				tt /= np
				xi[a] = (x[i] + float64(2*(child>>i&1)) - 1) / 2
			}
			for b := range corners {
				w := 1.
				for i := range freeAxes {
					if b>>i&1 == 0 {
						w *= (1 - x[i]) / 2
					} else {
						w *= (1 + x[i]) / 2
					}
				}
				weights[b] = w
			}
			key := newNodeKey(corners, weights)
			if _, ok := isOwn[key]; ok {
				continue
			}
			if _, ok := pending[key]; ok {
				continue
			}
			fe.Eval(xi, vals, nil)
			var pc pendingConstraint
			for n, v := range vals {
				if math.Abs(v) > utils.NODETOL {
					pc.masters = append(pc.masters, own[n])
					pc.weights = append(pc.weights, v)
				}
			}
			pending[key] = pc
			*order = append(*order, key)
		}
	}
	return
}

// closeConstraints substitutes constrained masters until every entry refers to an unconstrained DoF
func (dm *DoFMap) closeConstraints() (err error) {
	for pass := 0; ; pass++ {
		changed := false
		for i := range dm.Constraints {
			var (
				con     = &dm.Constraints[i]
				entries []Entry
				expand  bool
			)
			for _, e := range con.Entries {
				if j, ok := dm.constraint[e.DoF]; ok {
					expand = true
					for _, me := range dm.Constraints[j].Entries {
						entries = append(entries, Entry{DoF: me.DoF, Weight: e.Weight * me.Weight})
					}
				} else {
					entries = append(entries, e)
				}
			}
			if expand {
				con.Entries = mergeEntries(entries)
				changed = true
			}
		}
		if !changed {
			return
		}
		if pass > 16 {
			return fmt.Errorf("hanging node constraints do not close after %d passes", pass)
		}
	}
}

func mergeEntries(entries []Entry) (merged []Entry) {
	sum := make(map[int]float64)
	for _, e := range entries {
		if _, ok := sum[e.DoF]; !ok {
			merged = append(merged, Entry{DoF: e.DoF})
		}
		sum[e.DoF] += e.Weight
	}
	for i := range merged {
		merged[i].Weight = sum[merged[i].DoF]
	}
	sort.Slice(merged, func(a, b int) bool { return merged[a].DoF < merged[b].DoF })
	return
}

func (dm *DoFMap) IsConstrained(dof int) bool {
	_, ok := dm.constraint[dof]
	return ok
}

func (dm *DoFMap) Constraint(dof int) (con Constraint, ok bool) {
	var i int
	if i, ok = dm.constraint[dof]; ok {
		con = dm.Constraints[i]
	}
	return
}

// Distribute sets every constrained entry of x from its masters
func (dm *DoFMap) Distribute(x []float64) {
	for _, con := range dm.Constraints {
		var sum float64
		for _, e := range con.Entries {
			sum += e.Weight * x[e.DoF]
		}
		x[con.DoF] = sum
	}
}

/*
BoundaryDoFs returns the sorted DoFs whose support points lie on an active cell face carrying one of ids.
An empty ids selects every boundary face.
*/
func (dm *DoFMap) BoundaryDoFs(ids []int) (dofs []int) {
	var (
		want = make(map[int]bool, len(ids))
		seen = make(map[int]bool)
	)
	for _, id := range ids {
		want[id] = true
	}
	for i, c := range dm.Cells {
		for f, id := range dm.Mesh.Cells[c].Boundary {
			if id < 0 || (len(ids) > 0 && !want[id]) {
				continue
			}
			for _, n := range dm.FE.FaceNodes(f) {
				dof := dm.CellDoFs[i][n]
				if !seen[dof] {
					seen[dof] = true
					dofs = append(dofs, dof)
				}
			}
		}
	}
	sort.Ints(dofs)
	return
}
