package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrDiverged indicates the chain left the finite plane.
	ErrDiverged = errors.New("sim: chain diverged (NaN or Inf detected)")

	// ErrInvalidConfig wraps driver configuration errors.
	ErrInvalidConfig = errors.New("sim: invalid configuration")
)

// IterationError wraps an error with the iteration it occurred in.
type IterationError struct {
	Iteration int
	Energy    float64
	Wrapped   error
}

func (e *IterationError) Error() string {
	return fmt.Sprintf("iteration %d (energy=%.6g): %v", e.Iteration, e.Energy, e.Wrapped)
}

func (e *IterationError) Unwrap() error {
	return e.Wrapped
}
