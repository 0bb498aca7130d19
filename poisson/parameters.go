package poisson

import (
	"fmt"
	"io"
	"math"

	"github.com/notargets/gopoisson/mesh"
	"github.com/notargets/gopoisson/solver"
	"github.com/notargets/gopoisson/types"
)

const (
	DefaultRefinement        = 4
	DefaultDegree            = 1
	DefaultBoundaryPasses    = 3
	DefaultBoundaryTolerance = 1.e-6
)

/*
Parameters fully describe one solve. The zero value is not usable, start from DefaultParameters.

For an annulus the mesh is refined Refinement times globally, then BoundaryPasses times near the inner
circle, flagging cells with a vertex within BoundaryTolerance*InnerRadius of it. BoundaryIDs restricts the
Dirichlet condition to the listed boundary parts, empty means the whole boundary.
*/
type Parameters struct {
	Domain       mesh.DomainKind
	Lengths      []float64 // box extent per axis, 2 or 3 entries
	Center       mesh.Point
	InnerRadius  float64
	OuterRadius  float64
	AnnulusCells int

	Refinement int
	Degree     int

	Boundary          BoundaryValue
	Source            Source
	BoundaryIDs       []int
	BoundaryPasses    int
	BoundaryTolerance float64

	Preconditioner PreconditionerKind
	Control        solver.Control

	Verbose bool
	Out     io.Writer // progress and warnings, nil selects stdout and stderr
}

func DefaultParameters() Parameters {
	return Parameters{
		Domain:            mesh.Box,
		Lengths:           []float64{2, 4},
		InnerRadius:       1,
		OuterRadius:       2,
		AnnulusCells:      mesh.DefaultAnnulusCells,
		Refinement:        DefaultRefinement,
		Degree:            DefaultDegree,
		Boundary:          BoundaryValue{Kind: ConstantBoundary, Value: 1},
		Source:            Source{Kind: ConstantSource, Value: 1},
		BoundaryPasses:    DefaultBoundaryPasses,
		BoundaryTolerance: DefaultBoundaryTolerance,
		Preconditioner:    IdentityPreconditioner,
		Control:           solver.DefaultControl(),
	}
}

func (p *Parameters) Dim() int {
	if p.Domain == mesh.Annulus {
		return 2
	}
	return len(p.Lengths)
}

// Validate rejects parameters that cannot produce a mesh or a solvable system
func (p *Parameters) Validate() (err error) {
	switch p.Domain {
	case mesh.Box:
		err = mesh.ValidateBox(p.Lengths)
	case mesh.Annulus:
		err = mesh.ValidateAnnulus(p.InnerRadius, p.OuterRadius, p.AnnulusCells)
		if err == nil && (p.BoundaryPasses < 0 || !(p.BoundaryTolerance > 0)) {
			err = fmt.Errorf("%w: boundary refinement needs passes >= 0 and a positive tolerance, have %d and %v",
				types.ErrInvalidDomain, p.BoundaryPasses, p.BoundaryTolerance)
		}
	default:
		err = fmt.Errorf("%w: unknown domain kind %v", types.ErrInvalidDomain, p.Domain)
	}
	if err != nil {
		return
	}
	if p.Refinement < 0 {
		return fmt.Errorf("%w: refinement level must be >= 0, have %d", types.ErrInvalidDomain, p.Refinement)
	}
	if p.Degree < 1 {
		return fmt.Errorf("%w: polynomial degree must be >= 1, have %d", types.ErrInvalidDegree, p.Degree)
	}
	if p.Control.MaxIterations < 1 || p.Control.Tolerance < 0 || math.IsNaN(p.Control.Tolerance) {
		return fmt.Errorf("solver control needs MaxIterations >= 1 and Tolerance >= 0, have %d and %v",
			p.Control.MaxIterations, p.Control.Tolerance)
	}
	if _, ok := boundaryNames[p.Boundary.Kind]; !ok {
		return fmt.Errorf("unknown boundary condition %v", p.Boundary.Kind)
	}
	if _, ok := sourceNames[p.Source.Kind]; !ok {
		return fmt.Errorf("unknown source term %v", p.Source.Kind)
	}
	if _, ok := preconditionerNames[p.Preconditioner]; !ok {
		return fmt.Errorf("unknown preconditioner %v", p.Preconditioner)
	}
	return
}

// NewMesh builds and refines the mesh described by the parameters
func (p *Parameters) NewMesh() (m *mesh.Mesh, err error) {
	if err = p.Validate(); err != nil {
		return
	}
	switch p.Domain {
	case mesh.Annulus:
		if m, err = mesh.NewAnnulus(p.Center, p.InnerRadius, p.OuterRadius, p.AnnulusCells); err != nil {
			return
		}
		m.RefineGlobal(p.Refinement)
		m.RefineNearBoundary(mesh.NearCircle(p.Center, p.InnerRadius, p.BoundaryTolerance), p.BoundaryPasses)
	default:
		if m, err = mesh.NewBox(p.Lengths); err != nil {
			return
		}
		m.RefineGlobal(p.Refinement)
	}
	return
}
