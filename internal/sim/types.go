package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/san-kum/mepsim/internal/neb"
)

// Iteration is the state observers see after construction (Index 0) and
// after every Iterate call. Chain and Field are shared with the running
// loop and must only be read.
type Iteration struct {
	Index      int
	Energy     float64
	PrevEnergy float64
	Elapsed    time.Duration
	Chain      *neb.Chain
	Field      neb.Surface
}

type Metric interface {
	Name() string
	Observe(it Iteration)
	Value() float64
	Reset()
}

type Observer interface {
	OnIteration(it Iteration)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(it Iteration)

func (f ObserverFunc) OnIteration(it Iteration) { f(it) }

type Config struct {
	// ConvergenceLimit stops the loop once an iteration lowers the average
	// energy by less than this. The comparison is signed, so any energy
	// increase also stops it.
	ConvergenceLimit float64
	// MaxIterations bounds the loop; zero means unbounded.
	MaxIterations int
}

func DefaultConfig() Config {
	return Config{
		ConvergenceLimit: 1e-4,
		MaxIterations:    100000,
	}
}

func (c Config) validate() error {
	if math.IsNaN(c.ConvergenceLimit) || math.IsInf(c.ConvergenceLimit, 0) {
		return fmt.Errorf("convergence limit must be finite, got %f", c.ConvergenceLimit)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("max iterations must be non-negative, got %d", c.MaxIterations)
	}
	return nil
}

type Status int

const (
	StatusRunning Status = iota
	StatusConverged
	StatusMaxIterations
	StatusCanceled
	StatusDiverged
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusConverged:
		return "converged"
	case StatusMaxIterations:
		return "max_iterations"
	case StatusCanceled:
		return "canceled"
	case StatusDiverged:
		return "diverged"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

type Result struct {
	Status        Status
	Iterations    int
	InitialEnergy float64
	FinalEnergy   float64
	// Energies[i] is the average energy after iteration i; Energies[0] is
	// the initial chain.
	Energies  []float64
	Durations []time.Duration
	// EnergyIncreased is set when the loop stopped because the last
	// iteration raised the energy rather than because it stalled.
	EnergyIncreased bool
	Metrics         map[string]float64
	Duration        time.Duration
}

func (r *Result) Converged() bool { return r.Status == StatusConverged }
