package InputParameters

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/ghodss/yaml"
	"github.com/notargets/gopoisson/mesh"
	"github.com/notargets/gopoisson/poisson"
)

// Parameters obtained from the YAML input file
type PoissonParameters struct {
	Title                    string    `yaml:"Title"`
	Domain                   string    `yaml:"Domain"` // Box or Annulus
	Lengths                  []float64 `yaml:"Lengths"`
	InnerRadius              float64   `yaml:"InnerRadius"`
	OuterRadius              float64   `yaml:"OuterRadius"`
	Center                   []float64 `yaml:"Center"`
	AnnulusCells             int       `yaml:"AnnulusCells"`
	Refinement               int       `yaml:"Refinement"`
	PolynomialOrder          int       `yaml:"PolynomialOrder"`
	BoundaryCondition        string    `yaml:"BoundaryCondition"` // Constant or SquaredNorm
	BoundaryValue            float64   `yaml:"BoundaryValue"`
	BoundaryIDs              []int     `yaml:"BoundaryIDs"`
	SourceTerm               string    `yaml:"SourceTerm"` // Constant or Quartic
	SourceValue              float64   `yaml:"SourceValue"`
	BoundaryRefinementPasses int       `yaml:"BoundaryRefinementPasses"`
	BoundaryTolerance        float64   `yaml:"BoundaryTolerance"`
	Preconditioner           string    `yaml:"Preconditioner"` // Identity or Jacobi
	MaxIterations            int       `yaml:"MaxIterations"`
	Tolerance                float64   `yaml:"Tolerance"`
}

// NewPoissonParameters returns the defaults that a parsed file overrides
func NewPoissonParameters() (ip *PoissonParameters) {
	d := poisson.DefaultParameters()
	ip = &PoissonParameters{
		Title:                    "Poisson",
		Domain:                   d.Domain.String(),
		Lengths:                  d.Lengths,
		InnerRadius:              d.InnerRadius,
		OuterRadius:              d.OuterRadius,
		AnnulusCells:             d.AnnulusCells,
		Refinement:               d.Refinement,
		PolynomialOrder:          d.Degree,
		BoundaryCondition:        d.Boundary.Kind.String(),
		BoundaryValue:            d.Boundary.Value,
		SourceTerm:               d.Source.Kind.String(),
		SourceValue:              d.Source.Value,
		BoundaryRefinementPasses: d.BoundaryPasses,
		BoundaryTolerance:        d.BoundaryTolerance,
		Preconditioner:           d.Preconditioner.String(),
		MaxIterations:            d.Control.MaxIterations,
		Tolerance:                d.Control.Tolerance,
	}
	return
}

func (ip *PoissonParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *PoissonParameters) ReadFile(path string) (err error) {
	var data []byte
	if data, err = os.ReadFile(path); err != nil {
		return
	}
	if err = ip.Parse(data); err != nil {
		err = fmt.Errorf("unable to parse %s: %w", path, err)
	}
	return
}

func (ip *PoissonParameters) Print() { ip.Fprint(os.Stdout) }

func (ip *PoissonParameters) Fprint(w io.Writer) {
	fmt.Fprintf(w, "\"%s\"\t\t= Title\n", ip.Title)
	fmt.Fprintf(w, "[%s]\t\t\t= Domain\n", ip.Domain)
	if dk, err := mesh.ParseDomainKind(ip.Domain); err == nil && dk == mesh.Annulus {
		fmt.Fprintf(w, "%8.5f\t\t= Inner Radius\n", ip.InnerRadius)
		fmt.Fprintf(w, "%8.5f\t\t= Outer Radius\n", ip.OuterRadius)
		fmt.Fprintf(w, "%v\t\t\t= Center\n", ip.Center)
		fmt.Fprintf(w, "[%d]\t\t\t\t= Boundary Refinement Passes\n", ip.BoundaryRefinementPasses)
	} else {
		fmt.Fprintf(w, "%v\t\t\t= Lengths\n", ip.Lengths)
	}
	fmt.Fprintf(w, "[%d]\t\t\t\t= Refinement\n", ip.Refinement)
	fmt.Fprintf(w, "[%d]\t\t\t\t= Polynomial Order\n", ip.PolynomialOrder)
	fmt.Fprintf(w, "[%s]\t\t= Boundary Condition\n", ip.BoundaryCondition)
	fmt.Fprintf(w, "%8.5f\t\t= Boundary Value\n", ip.BoundaryValue)
	fmt.Fprintf(w, "[%s]\t\t= Source Term\n", ip.SourceTerm)
	fmt.Fprintf(w, "%8.5f\t\t= Source Value\n", ip.SourceValue)
	fmt.Fprintf(w, "[%s]\t\t= Preconditioner\n", ip.Preconditioner)
	fmt.Fprintf(w, "[%d]\t\t\t= Max Iterations\n", ip.MaxIterations)
	fmt.Fprintf(w, "%8.2e\t\t= Tolerance\n", ip.Tolerance)
	ids := append([]int(nil), ip.BoundaryIDs...)
	sort.Ints(ids)
	if len(ids) != 0 {
		fmt.Fprintf(w, "%v\t\t\t= Boundary IDs\n", ids)
	}
}

// ToParameters converts the file representation into validated solver parameters
func (ip *PoissonParameters) ToParameters() (p poisson.Parameters, err error) {
	p = poisson.DefaultParameters()
	if p.Domain, err = mesh.ParseDomainKind(ip.Domain); err != nil {
		return
	}
	p.Lengths = append([]float64(nil), ip.Lengths...)
	p.InnerRadius, p.OuterRadius = ip.InnerRadius, ip.OuterRadius
	if len(ip.Center) > 3 {
		err = fmt.Errorf("center has %d coordinates, at most 3 allowed", len(ip.Center))
		return
	}
	copy(p.Center[:], ip.Center)
	p.AnnulusCells = ip.AnnulusCells
	p.Refinement = ip.Refinement
	p.Degree = ip.PolynomialOrder
	if p.Boundary.Kind, err = poisson.ParseBoundaryKind(ip.BoundaryCondition); err != nil {
		return
	}
	p.Boundary.Value = ip.BoundaryValue
	p.BoundaryIDs = append([]int(nil), ip.BoundaryIDs...)
	if p.Source.Kind, err = poisson.ParseSourceKind(ip.SourceTerm); err != nil {
		return
	}
	p.Source.Value = ip.SourceValue
	p.BoundaryPasses = ip.BoundaryRefinementPasses
	p.BoundaryTolerance = ip.BoundaryTolerance
	if p.Preconditioner, err = poisson.ParsePreconditionerKind(ip.Preconditioner); err != nil {
		return
	}
	p.Control.MaxIterations = ip.MaxIterations
	p.Control.Tolerance = ip.Tolerance
	err = p.Validate()
	return
}
