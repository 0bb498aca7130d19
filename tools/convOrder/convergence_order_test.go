package main

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvergenceStudy(t *testing.T) {
	cs := NewConvergenceStudy("manual", 1)
	cs.Add(9, 0.1, 0.4)
	cs.Add(25, 0.025, 0.1)
	assert.True(t, math.IsNaN(cs.Rate(0)))
	assert.InDelta(t, 2., cs.Rate(1), 1.e-12)

	path := filepath.Join(t.TempDir(), "study.csv")
	require.NoError(t, cs.WriteCSV(path))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "errMAX", records[0][4])
	assert.Equal(t, "25", records[2][1])
	assert.Equal(t, "2.000", records[2][5])

	// a rewrite replaces the file, an unwritable path reports the error
	cs = NewConvergenceStudy("manual", 2)
	cs.Add(9, 0.1, 0.4)
	require.NoError(t, cs.WriteCSV(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	records, err = csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2", records[1][2])
	assert.Error(t, cs.WriteCSV(filepath.Join(t.TempDir(), "missing", "study.csv")))
}

func TestRunStudy(t *testing.T) {
	if testing.Short() {
		t.Skip("solves five meshes")
	}
	cs, err := RunStudy("unit square", 1, 5)
	require.NoError(t, err)
	require.Len(t, cs.numPTS, 4)
	assert.Equal(t, []int{9, 25, 81, 289}, cs.numPTS)
	for i := 1; i < len(cs.numPTS); i++ {
		assert.Less(t, cs.errMAX[i], cs.errMAX[i-1])
	}
	// Q1 converges at second order
	assert.Greater(t, cs.Rate(len(cs.numPTS)-1), 1.5)
}
