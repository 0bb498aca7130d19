package types

import "errors"

// Error kinds reported by the solve pipeline. Callers test them with errors.Is.
var (
	ErrInvalidDomain  = errors.New("invalid domain")
	ErrInvalidDegree  = errors.New("invalid polynomial degree")
	ErrSingularSystem = errors.New("singular system")
	// ErrNotConverged is not fatal, it accompanies the best available iterate.
	ErrNotConverged = errors.New("solver did not converge")
)
