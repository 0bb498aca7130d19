package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/notargets/gopoisson/InputParameters"
	"github.com/notargets/gopoisson/export"
	"github.com/notargets/gopoisson/types"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParametersFrom(t *testing.T) {
	fileInput := []byte(`
Title: Test Case
Domain: Annulus
InnerRadius: 1
OuterRadius: 2
Refinement: 3
BoundaryValue: 5
`)
	path := filepath.Join(t.TempDir(), "input.yaml")
	require.NoError(t, os.WriteFile(path, fileInput, 0644))

	v := viper.New()
	v.Set("inputConditionsFile", path)
	v.Set("refinement", 1)
	v.Set("center", "1, 0")
	v.Set("boundaryIDs", "0")
	ip, err := parametersFrom(v)
	require.NoError(t, err)
	assert.Equal(t, "Test Case", ip.Title)
	assert.Equal(t, "Annulus", ip.Domain)
	assert.Equal(t, 5., ip.BoundaryValue)
	// explicitly set keys win over the file
	assert.Equal(t, 1, ip.Refinement)
	assert.Equal(t, []float64{1, 0}, ip.Center)
	assert.Equal(t, []int{0}, ip.BoundaryIDs)
	// everything else keeps the defaults
	assert.Equal(t, 1000, ip.MaxIterations)

	v = viper.New()
	v.Set("lengths", "2,x")
	_, err = parametersFrom(v)
	assert.Error(t, err)

	v = viper.New()
	v.Set("inputConditionsFile", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = parametersFrom(v)
	assert.Error(t, err)
}

func TestSolve(t *testing.T) {
	var (
		dir = t.TempDir()
		out bytes.Buffer
		ip  = InputParameters.NewPoissonParameters()
	)
	ip.Lengths = []float64{1, 1}
	ip.Refinement = 2
	outs := Outputs{
		YAMLFile: filepath.Join(dir, "u.yaml"),
		PlotFile: filepath.Join(dir, "u.png"),
	}
	res, err := Solve(ip, outs, true, &out)
	require.NoError(t, err)
	assert.Equal(t, 25, res.NumDoFs())
	assert.Contains(t, out.String(), "Number of degrees of freedom: 25")
	assert.Contains(t, out.String(), "Solution range: [1,")

	data, err := os.ReadFile(outs.YAMLFile)
	require.NoError(t, err)
	field, err := export.ReadYAML(data)
	require.NoError(t, err)
	assert.Equal(t, res.Solution, field.Values)
	_, err = os.Stat(outs.PlotFile)
	assert.NoError(t, err)

	ip.InnerRadius, ip.OuterRadius, ip.Domain = 2, 1, "Annulus"
	_, err = Solve(ip, Outputs{}, false, &out)
	assert.ErrorIs(t, err, types.ErrInvalidDomain)

	ip = InputParameters.NewPoissonParameters()
	ip.Refinement, ip.MaxIterations = 2, 1
	res, err = Solve(ip, Outputs{YAMLFile: filepath.Join(dir, "partial.yaml")}, false, &out)
	assert.ErrorIs(t, err, types.ErrNotConverged)
	require.NotNil(t, res)
	_, err = os.Stat(filepath.Join(dir, "partial.yaml"))
	assert.NoError(t, err)
}

func TestSolveCommand(t *testing.T) {
	var (
		out  bytes.Buffer
		yaml = filepath.Join(t.TempDir(), "box.yaml")
	)
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"solve", "--lengths", "1,2", "-r", "1", "-n", "2", "-o", yaml, "-v"})
	require.NoError(t, rootCmd.Execute())
	data, err := os.ReadFile(yaml)
	require.NoError(t, err)
	field, err := export.ReadYAML(data)
	require.NoError(t, err)
	// 2 coarse cells, refined once, Q2
	assert.Len(t, field.Values, 5*9)
	assert.Contains(t, out.String(), "CG iterations needed to obtain convergence")
}
