package poisson

import (
	"fmt"
	"strings"

	"github.com/notargets/gopoisson/mesh"
)

type BoundaryKind uint8

const (
	ConstantBoundary    BoundaryKind = iota // g(x) = Value
	SquaredNormBoundary                     // g(x) = sum_i x_i^2
)

var boundaryNames = map[BoundaryKind]string{
	ConstantBoundary:    "Constant",
	SquaredNormBoundary: "SquaredNorm",
}

func (bk BoundaryKind) String() string {
	if name, ok := boundaryNames[bk]; ok {
		return name
	}
	return fmt.Sprintf("BoundaryKind(%d)", bk)
}

func ParseBoundaryKind(name string) (bk BoundaryKind, err error) {
	for k, n := range boundaryNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return k, nil
		}
	}
	err = fmt.Errorf("unknown boundary condition %q, use Constant or SquaredNorm", name)
	return
}

// BoundaryValue is the prescribed Dirichlet data
type BoundaryValue struct {
	Kind  BoundaryKind
	Value float64 // used by ConstantBoundary
}

func (bv BoundaryValue) Eval(p mesh.Point, dim int) float64 {
	switch bv.Kind {
	case SquaredNormBoundary:
		var sum float64
		for a := 0; a < dim; a++ {
			sum += p[a] * p[a]
		}
		return sum
	default:
		return bv.Value
	}
}

func (bv BoundaryValue) String() string {
	if bv.Kind == ConstantBoundary {
		return fmt.Sprintf("%s(%g)", bv.Kind, bv.Value)
	}
	return bv.Kind.String()
}

type SourceKind uint8

const (
	ConstantSource SourceKind = iota // f(x) = Value
	QuarticSource                    // f(x) = 4 sum_i x_i^4
)

var sourceNames = map[SourceKind]string{
	ConstantSource: "Constant",
	QuarticSource:  "Quartic",
}

func (sk SourceKind) String() string {
	if name, ok := sourceNames[sk]; ok {
		return name
	}
	return fmt.Sprintf("SourceKind(%d)", sk)
}

func ParseSourceKind(name string) (sk SourceKind, err error) {
	for k, n := range sourceNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return k, nil
		}
	}
	err = fmt.Errorf("unknown source term %q, use Constant or Quartic", name)
	return
}

// Source is the right hand side f of -div grad u = f
type Source struct {
	Kind  SourceKind
	Value float64 // used by ConstantSource
}

func (s Source) Eval(p mesh.Point, dim int) float64 {
	switch s.Kind {
	case QuarticSource:
		var sum float64
		for a := 0; a < dim; a++ {
			x2 := p[a] * p[a]
			sum += x2 * x2
		}
		return 4 * sum
	default:
		return s.Value
	}
}

func (s Source) String() string {
	if s.Kind == ConstantSource {
		return fmt.Sprintf("%s(%g)", s.Kind, s.Value)
	}
	return s.Kind.String()
}

type PreconditionerKind uint8

const (
	IdentityPreconditioner PreconditionerKind = iota
	JacobiPreconditioner
)

var preconditionerNames = map[PreconditionerKind]string{
	IdentityPreconditioner: "Identity",
	JacobiPreconditioner:   "Jacobi",
}

func (pk PreconditionerKind) String() string {
	if name, ok := preconditionerNames[pk]; ok {
		return name
	}
	return fmt.Sprintf("PreconditionerKind(%d)", pk)
}

func ParsePreconditionerKind(name string) (pk PreconditionerKind, err error) {
	for k, n := range preconditionerNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return k, nil
		}
	}
	err = fmt.Errorf("unknown preconditioner %q, use Identity or Jacobi", name)
	return
}
