package dofs

import (
	"github.com/notargets/gopoisson/utils"
)

/*
MakeSparsityPattern couples all DoFs that share a cell. A constrained DoF is replaced by its masters, since
its row and column are condensed away during assembly, and keeps only its diagonal entry.
*/
func MakeSparsityPattern(dm *DoFMap) (sp *utils.SparsityPattern) {
	sp = utils.NewSparsityPattern(dm.NumDoFs)
	for _, cellDoFs := range dm.CellDoFs {
		sp.AddBlock(dm.Condensed(cellDoFs))
	}
	for _, con := range dm.Constraints {
		sp.Add(con.DoF, con.DoF)
	}
	sp.Compress()
	return
}

// Condensed returns the unconstrained DoFs that the given DoFs depend on, in first appearance order
func (dm *DoFMap) Condensed(dofs []int) (out []int) {
	seen := make(map[int]bool, len(dofs))
	add := func(d int) {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	for _, d := range dofs {
		if con, ok := dm.Constraint(d); ok {
			for _, e := range con.Entries {
				add(e.DoF)
			}
			continue
		}
		add(d)
	}
	return
}
