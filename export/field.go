package export

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/ghodss/yaml"
	"github.com/notargets/gopoisson/poisson"
)

/*
Field is the handoff of one solve to a renderer: the active mesh as vertex coordinates and cell
connectivity, plus the scalar value at every DoF support point. Cell corners keep the lexicographic order
of the mesh, so a quadrilateral is drawn as corners 0, 1, 3, 2.
*/
type Field struct {
	Title      string      `json:"title"`
	Dim        int         `json:"dim"`
	Vertices   [][]float64 `json:"vertices"`
	Cells      [][]int     `json:"cells"`
	Points     [][]float64 `json:"points"`
	Values     []float64   `json:"values"`
	Iterations int         `json:"iterations"`
	Converged  bool        `json:"converged"`
}

func NewField(title string, res *poisson.Result) (f *Field) {
	var (
		m   = res.Mesh
		dim = m.Dim
	)
	f = &Field{
		Title:      title,
		Dim:        dim,
		Values:     append([]float64(nil), res.Solution...),
		Iterations: res.Iterations,
		Converged:  res.Converged,
	}
	for _, v := range m.Vertices {
		f.Vertices = append(f.Vertices, append([]float64(nil), v[:dim]...))
	}
	for _, c := range m.ActiveCells() {
		f.Cells = append(f.Cells, append([]int(nil), m.Cells[c].Vertices...))
	}
	for _, p := range res.Locations() {
		f.Points = append(f.Points, append([]float64(nil), p[:dim]...))
	}
	return
}

func (f *Field) Range() (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range f.Values {
		min, max = math.Min(min, v), math.Max(max, v)
	}
	return
}

func (f *Field) WriteYAML(w io.Writer) (err error) {
	var data []byte
	if data, err = yaml.Marshal(f); err != nil {
		return
	}
	_, err = w.Write(data)
	return
}

func (f *Field) SaveYAML(path string) (err error) {
	var file *os.File
	if file, err = os.Create(path); err != nil {
		return
	}
	if err = f.WriteYAML(file); err != nil {
		file.Close()
		return
	}
	return file.Close()
}

func ReadYAML(data []byte) (f *Field, err error) {
	f = &Field{}
	if err = yaml.Unmarshal(data, f); err != nil {
		err = fmt.Errorf("unable to parse field: %w", err)
		return nil, err
	}
	if len(f.Points) != len(f.Values) {
		return nil, fmt.Errorf("field has %d points but %d values", len(f.Points), len(f.Values))
	}
	return
}
