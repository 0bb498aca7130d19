/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/notargets/gopoisson/InputParameters"
	"github.com/notargets/gopoisson/export"
	"github.com/notargets/gopoisson/poisson"
	"github.com/notargets/gopoisson/types"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const exampleFile = `
########################################
Title: "Test Case"
Domain: Annulus # Can be "Box"
InnerRadius: 1
OuterRadius: 2
Refinement: 3
PolynomialOrder: 1
BoundaryCondition: Constant # Can be "SquaredNorm"
BoundaryValue: 5
SourceTerm: Constant # Can be "Quartic"
SourceValue: 1
########################################
`

// Outputs lists where the result of a solve is written, empty entries are skipped
type Outputs struct {
	YAMLFile string
	PlotFile string
}

// SolveCmd represents the solve command
var SolveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve the Poisson equation on a box or an annulus",
	Long: `
Builds the mesh, assembles and solves the finite element system and optionally writes the
solution field as YAML and as an image. Parameters come from the input file (-I), overridden by
the config file, GOPOISSON_* environment variables and flags.
` + "Example input file:" + exampleFile,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		if dir := viper.GetString("profile"); dir != "" {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.Quiet).Stop()
		}
		var ip *InputParameters.PoissonParameters
		if ip, err = parametersFrom(viper.GetViper()); err != nil {
			return
		}
		outs := Outputs{
			YAMLFile: viper.GetString("output"),
			PlotFile: viper.GetString("plot"),
		}
		_, err = Solve(ip, outs, viper.GetBool("verbose"), cmd.OutOrStdout())
		return
	},
}

func init() {
	rootCmd.AddCommand(SolveCmd)
	d := InputParameters.NewPoissonParameters()
	SolveCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters, see the example in --help")
	SolveCmd.Flags().String("title", d.Title, "title of the run")
	SolveCmd.Flags().StringP("domain", "D", d.Domain, "domain kind: Box or Annulus")
	SolveCmd.Flags().String("lengths", joinFloats(d.Lengths), "box lengths, comma separated, 2 or 3 values")
	SolveCmd.Flags().Float64("innerRadius", d.InnerRadius, "annulus inner radius")
	SolveCmd.Flags().Float64("outerRadius", d.OuterRadius, "annulus outer radius")
	SolveCmd.Flags().String("center", "0,0", "annulus center, comma separated")
	SolveCmd.Flags().Int("annulusCells", d.AnnulusCells, "number of base cells around the annulus")
	SolveCmd.Flags().IntP("refinement", "r", d.Refinement, "number of global refinements")
	SolveCmd.Flags().IntP("polynomialOrder", "n", d.PolynomialOrder, "polynomial degree of the Lagrange element")
	SolveCmd.Flags().String("boundaryCondition", d.BoundaryCondition, "boundary value: Constant or SquaredNorm")
	SolveCmd.Flags().Float64("boundaryValue", d.BoundaryValue, "value of a Constant boundary condition")
	SolveCmd.Flags().String("boundaryIDs", "", "comma separated boundary ids to apply the condition on, default all")
	SolveCmd.Flags().String("sourceTerm", d.SourceTerm, "source term: Constant or Quartic")
	SolveCmd.Flags().Float64("sourceValue", d.SourceValue, "value of a Constant source term")
	SolveCmd.Flags().Int("boundaryRefinementPasses", d.BoundaryRefinementPasses,
		"annulus refinement passes near the inner circle")
	SolveCmd.Flags().Float64("boundaryTolerance", d.BoundaryTolerance,
		"relative distance to the inner circle that flags a cell")
	SolveCmd.Flags().String("preconditioner", d.Preconditioner, "CG preconditioner: Identity or Jacobi")
	SolveCmd.Flags().Int("maxIterations", d.MaxIterations, "CG iteration cap")
	SolveCmd.Flags().Float64("tolerance", d.Tolerance, "CG absolute residual tolerance")
	SolveCmd.Flags().BoolP("verbose", "v", false, "print progress")
	SolveCmd.Flags().StringP("output", "o", "", "write the solution field to this YAML file")
	SolveCmd.Flags().StringP("plot", "p", "", "render the solution field to this image file (.png, .svg, .pdf)")
	SolveCmd.Flags().String("profile", "", "write a CPU profile into this directory")
	if err := viper.BindPFlags(SolveCmd.Flags()); err != nil {
		panic(err)
	}
}

/*
parametersFrom starts from the defaults, applies the input file if one is named, then every key that the
config file, the environment or a flag sets explicitly.
*/
func parametersFrom(v *viper.Viper) (ip *InputParameters.PoissonParameters, err error) {
	ip = InputParameters.NewPoissonParameters()
	if file := v.GetString("inputConditionsFile"); file != "" {
		if err = ip.ReadFile(file); err != nil {
			return
		}
	}
	setString := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	setInt := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	setFloat := func(key string, dst *float64) {
		if v.IsSet(key) {
			*dst = v.GetFloat64(key)
		}
	}
	setString("title", &ip.Title)
	setString("domain", &ip.Domain)
	setFloat("innerRadius", &ip.InnerRadius)
	setFloat("outerRadius", &ip.OuterRadius)
	setInt("annulusCells", &ip.AnnulusCells)
	setInt("refinement", &ip.Refinement)
	setInt("polynomialOrder", &ip.PolynomialOrder)
	setString("boundaryCondition", &ip.BoundaryCondition)
	setFloat("boundaryValue", &ip.BoundaryValue)
	setString("sourceTerm", &ip.SourceTerm)
	setFloat("sourceValue", &ip.SourceValue)
	setInt("boundaryRefinementPasses", &ip.BoundaryRefinementPasses)
	setFloat("boundaryTolerance", &ip.BoundaryTolerance)
	setString("preconditioner", &ip.Preconditioner)
	setInt("maxIterations", &ip.MaxIterations)
	setFloat("tolerance", &ip.Tolerance)
	if v.IsSet("lengths") {
		if ip.Lengths, err = parseFloats(v.GetString("lengths")); err != nil {
			return
		}
	}
	if v.IsSet("center") {
		if ip.Center, err = parseFloats(v.GetString("center")); err != nil {
			return
		}
	}
	if v.IsSet("boundaryIDs") {
		var ids []float64
		if ids, err = parseFloats(v.GetString("boundaryIDs")); err != nil {
			return
		}
		ip.BoundaryIDs = ip.BoundaryIDs[:0]
		for _, id := range ids {
			ip.BoundaryIDs = append(ip.BoundaryIDs, int(id))
		}
	}
	return
}

// Solve runs one problem and writes the requested outputs. A solve that hits the iteration cap still
// writes its outputs and reports the non-convergence as the error.
func Solve(ip *InputParameters.PoissonParameters, outs Outputs, verbose bool, w io.Writer) (res *poisson.Result,
	err error) {
	var p poisson.Parameters
	if p, err = ip.ToParameters(); err != nil {
		return
	}
	p.Verbose, p.Out = verbose, w
	if verbose {
		ip.Fprint(w)
	}
	res, err = poisson.Run(p)
	if err != nil && !errors.Is(err, types.ErrNotConverged) {
		return
	}
	solveErr := err
	field := export.NewField(ip.Title, res)
	if outs.YAMLFile != "" {
		if err = field.SaveYAML(outs.YAMLFile); err != nil {
			return
		}
	}
	if outs.PlotFile != "" {
		if err = field.SavePlot(outs.PlotFile); err != nil {
			return
		}
	}
	if verbose {
		min, max := field.Range()
		fmt.Fprintf(w, "   Solution range: [%g, %g]\n", min, max)
	}
	err = solveErr
	return
}

func parseFloats(s string) (vals []float64, err error) {
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		var val float64
		if val, err = strconv.ParseFloat(f, 64); err != nil {
			err = fmt.Errorf("unable to parse %q as a list of numbers: %w", s, err)
			return
		}
		vals = append(vals, val)
	}
	return
}

func joinFloats(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
