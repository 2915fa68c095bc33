package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/san-kum/mepsim/internal/neb"
)

// Stepper advances a chain one iteration at a time and applies the stop
// rules of Run. It is for callers that own the loop, such as the live
// terminal view. A Stepper is not safe for concurrent use.
type Stepper struct {
	field  neb.Surface
	chain  *neb.Chain
	cfg    Config
	index  int
	energy float64
	last   time.Time
	status Status
}

func NewStepper(field neb.Surface, chain *neb.Chain, cfg Config) (*Stepper, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &Stepper{
		field:  field,
		chain:  chain,
		cfg:    cfg,
		energy: chain.Energy(field),
		last:   time.Now(),
		status: StatusRunning,
	}, nil
}

// Current describes the chain as it is now, without iterating.
func (s *Stepper) Current() Iteration {
	return Iteration{Index: s.index, Energy: s.energy, PrevEnergy: s.energy, Chain: s.chain, Field: s.field}
}

func (s *Stepper) Status() Status { return s.status }

// Stop marks the stepper canceled; later Step calls do nothing.
func (s *Stepper) Stop() {
	if s.status == StatusRunning {
		s.status = StatusCanceled
	}
}

// Step runs one iteration unless the stepper already stopped. It returns
// StatusMaxIterations without iterating once the bound is reached, and
// StatusDiverged with an *IterationError when the chain leaves the finite
// plane.
func (s *Stepper) Step() (Iteration, Status, error) {
	if s.status != StatusRunning {
		return s.Current(), s.status, nil
	}
	if s.cfg.MaxIterations > 0 && s.index >= s.cfg.MaxIterations {
		s.status = StatusMaxIterations
		return s.Current(), s.status, nil
	}

	s.chain.Iterate(s.field)
	s.index++

	prev := s.energy
	s.energy = s.chain.Energy(s.field)
	now := time.Now()
	elapsed := now.Sub(s.last)
	s.last = now

	it := Iteration{Index: s.index, Energy: s.energy, PrevEnergy: prev, Elapsed: elapsed, Chain: s.chain, Field: s.field}

	if !s.chain.IsValid() || math.IsNaN(s.energy) || math.IsInf(s.energy, 0) {
		s.status = StatusDiverged
		return it, s.status, &IterationError{Iteration: s.index, Energy: s.energy, Wrapped: ErrDiverged}
	}

	if prev-s.energy < s.cfg.ConvergenceLimit {
		s.status = StatusConverged
	}
	return it, s.status, nil
}
