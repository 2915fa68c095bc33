package neb

import "errors"

var (
	// ErrInvalidConfig indicates a chain configuration that would produce
	// degenerate or NaN geometry.
	ErrInvalidConfig = errors.New("neb: invalid chain configuration")

	// ErrNotConverged indicates an endpoint relaxation hit its iteration
	// bound before the energy change dropped below the limit. The returned
	// point is still usable.
	ErrNotConverged = errors.New("neb: endpoint relaxation did not converge")

	// ErrDiverged indicates a point left the finite plane.
	ErrDiverged = errors.New("neb: point diverged (NaN or Inf)")
)
