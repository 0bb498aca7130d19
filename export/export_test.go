package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/notargets/gopoisson/poisson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solveBox(t *testing.T) *poisson.Result {
	p := poisson.DefaultParameters()
	p.Lengths = []float64{1, 1}
	p.Refinement = 2
	res, err := poisson.Run(p)
	require.NoError(t, err)
	return res
}

func TestField(t *testing.T) {
	res := solveBox(t)
	f := NewField("unit square", res)
	assert.Equal(t, 2, f.Dim)
	assert.Len(t, f.Cells, 16)
	assert.Len(t, f.Points, 25)
	assert.Len(t, f.Values, 25)
	for _, cell := range f.Cells {
		assert.Len(t, cell, 4)
		for _, v := range cell {
			assert.Less(t, v, len(f.Vertices))
		}
	}
	min, max := f.Range()
	assert.Equal(t, 1., min)
	assert.Greater(t, max, 1.)

	var buf bytes.Buffer
	require.NoError(t, f.WriteYAML(&buf))
	assert.Contains(t, buf.String(), "title: unit square")
	back, err := ReadYAML(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, f.Cells, back.Cells)
	assert.InDeltaSlice(t, f.Values, back.Values, 1e-12)

	_, err = ReadYAML([]byte("points: [[0, 0]]\nvalues: []\n"))
	assert.Error(t, err)
}

func TestSave(t *testing.T) {
	var (
		f   = NewField("unit square", solveBox(t))
		dir = t.TempDir()
	)
	yml := filepath.Join(dir, "u.yaml")
	require.NoError(t, f.SaveYAML(yml))
	data, err := os.ReadFile(yml)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	png := filepath.Join(dir, "u.png")
	require.NoError(t, f.SavePlot(png))
	info, err := os.Stat(png)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	assert.Error(t, (&Field{Title: "empty"}).SavePlot(filepath.Join(dir, "e.png")))
}
