package utils

import (
	"fmt"
	"sort"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

/*
SparsityPattern collects the (row, column) couplings of a square system before any values exist.
Entries are gathered per row in a set and sorted on Compress, after which the pattern is read-only.
*/
type SparsityPattern struct {
	N          int
	Rows       [][]int // sorted column indices per row, valid after Compress
	building   []map[int]struct{}
	compressed bool
}

func NewSparsityPattern(n int) (sp *SparsityPattern) {
	sp = &SparsityPattern{
		N:        n,
		building: make([]map[int]struct{}, n),
	}
	for i := range sp.building {
		sp.building[i] = make(map[int]struct{})
	}
	return
}

func (sp *SparsityPattern) Add(i, j int) {
	sp.checkWritable()
	sp.building[i][j] = struct{}{}
}

// AddBlock couples every pair of indices in dofs, both ways
func (sp *SparsityPattern) AddBlock(dofs []int) {
	sp.checkWritable()
	for _, i := range dofs {
		row := sp.building[i]
		for _, j := range dofs {
			row[j] = struct{}{}
		}
	}
}

func (sp *SparsityPattern) Compress() {
	if sp.compressed {
		return
	}
	sp.Rows = make([][]int, sp.N)
	for i, row := range sp.building {
		cols := make([]int, 0, len(row))
		for j := range row {
			cols = append(cols, j)
		}
		sort.Ints(cols)
		sp.Rows[i] = cols
	}
	sp.building = nil
	sp.compressed = true
}

func (sp *SparsityPattern) Compressed() bool { return sp.compressed }

func (sp *SparsityPattern) NNZ() (nnz int) {
	for _, row := range sp.Rows {
		nnz += len(row)
	}
	return
}

func (sp *SparsityPattern) Exists(i, j int) bool {
	row := sp.Rows[i]
	k := sort.SearchInts(row, j)
	return k < len(row) && row[k] == j
}

// Symmetric reports whether every (i, j) has a matching (j, i)
func (sp *SparsityPattern) Symmetric() bool {
	for i, row := range sp.Rows {
		for _, j := range row {
			if !sp.Exists(j, i) {
				return false
			}
		}
	}
	return true
}

func (sp *SparsityPattern) checkWritable() {
	if sp.compressed {
		panic(fmt.Errorf("attempt to add to a compressed sparsity pattern of size %d", sp.N))
	}
}

/*
CSR is a square compressed row matrix whose structure is fixed by a SparsityPattern.
Values live in the storage of the wrapped sparse.CSR, so M can be handed to gonum routines as a mat.Matrix
while Add and Set write into the same arrays.
*/
type CSR struct {
	M      *sparse.CSR
	N      int
	RowPtr []int
	ColInd []int
	Val    []float64
}

func NewCSR(sp *SparsityPattern) (A *CSR) {
	if !sp.Compressed() {
		sp.Compress()
	}
	var (
		nnz    = sp.NNZ()
		rowPtr = make([]int, sp.N+1)
		colInd = make([]int, 0, nnz)
	)
	for i, row := range sp.Rows {
		colInd = append(colInd, row...)
		rowPtr[i+1] = rowPtr[i] + len(row)
	}
	M := sparse.NewCSR(sp.N, sp.N, rowPtr, colInd, make([]float64, nnz))
	raw := M.RawMatrix()
	A = &CSR{
		M:      M,
		N:      sp.N,
		RowPtr: raw.Indptr,
		ColInd: raw.Ind,
		Val:    raw.Data,
	}
	return
}

// Dims, At and T satisfy the mat.Matrix interface.
func (A *CSR) Dims() (r, c int)   { return A.N, A.N }
func (A *CSR) T() mat.Matrix      { return A.M.T() }
func (A *CSR) Sparse() mat.Matrix { return A.M }

func (A *CSR) At(i, j int) float64 { return A.M.At(i, j) }

// find locates (i, j) in the fixed structure, sparse.CSR.Set would insert a missing entry instead
func (A *CSR) find(i, j int) int {
	cols := A.ColInd[A.RowPtr[i]:A.RowPtr[i+1]]
	k := sort.SearchInts(cols, j)
	if k < len(cols) && cols[k] == j {
		return A.RowPtr[i] + k
	}
	return -1
}

// Add accumulates into an existing entry, writing outside the pattern is a programming error
func (A *CSR) Add(i, j int, val float64) {
	k := A.find(i, j)
	if k < 0 {
		panic(fmt.Errorf("entry (%d, %d) is not in the sparsity pattern", i, j))
	}
	A.Val[k] += val
}

func (A *CSR) Set(i, j int, val float64) {
	k := A.find(i, j)
	if k < 0 {
		panic(fmt.Errorf("entry (%d, %d) is not in the sparsity pattern", i, j))
	}
	A.Val[k] = val
}

// Row returns views of the column indices and values stored in row i
func (A *CSR) Row(i int) (cols []int, vals []float64) {
	lo, hi := A.RowPtr[i], A.RowPtr[i+1]
	return A.ColInd[lo:hi], A.Val[lo:hi]
}

func (A *CSR) Diagonal() (diag []float64) {
	diag = make([]float64, A.N)
	for i := range diag {
		diag[i] = A.At(i, i)
	}
	return
}

// MulVec computes dst = A x, the library product accumulates so dst is cleared first
func (A *CSR) MulVec(dst, x []float64) {
	for i := range dst {
		dst[i] = 0
	}
	A.M.MulVecTo(dst, false, x)
}

func (A *CSR) NNZ() int { return len(A.Val) }

func (A *CSR) Zero() {
	for k := range A.Val {
		A.Val[k] = 0
	}
}
