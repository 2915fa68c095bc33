package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/mepsim/internal/neb"
)

// Simulator drives a chain to convergence on a fixed surface.
type Simulator struct {
	field     neb.Surface
	metrics   []Metric
	observers []Observer
}

func New(field neb.Surface) *Simulator {
	return &Simulator{
		field:     field,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Field() neb.Surface { return s.field }

// Run iterates chain until an iteration lowers the average energy by less
// than cfg.ConvergenceLimit. Observers see the initial chain and the chain
// after every iteration.
//
// Hitting cfg.MaxIterations is not an error: the result carries
// StatusMaxIterations. Cancellation and divergence return the partial
// result together with an error.
func (s *Simulator) Run(ctx context.Context, chain *neb.Chain, cfg Config) (*Result, error) {
	stepper, err := NewStepper(s.field, chain, cfg)
	if err != nil {
		return nil, err
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	log := Logger()
	started := time.Now()
	initial := stepper.Current()
	energy := initial.Energy

	result := &Result{
		Status:        StatusRunning,
		InitialEnergy: energy,
		FinalEnergy:   energy,
		Energies:      []float64{energy},
		Durations:     []time.Duration{0},
		Metrics:       make(map[string]float64),
	}
	defer func() {
		result.Duration = time.Since(started)
		for _, m := range s.metrics {
			result.Metrics[m.Name()] = m.Value()
		}
	}()

	log.Info("relaxation started", "points", chain.Len(), "energy", energy)
	s.notify(initial)

	for {
		select {
		case <-ctx.Done():
			stepper.Stop()
			result.Status = StatusCanceled
			return result, fmt.Errorf("relaxation canceled after %d iterations: %w", result.Iterations, ctx.Err())
		default:
		}

		it, status, err := stepper.Step()
		if err != nil {
			result.Status = status
			return result, err
		}
		if status == StatusMaxIterations {
			result.Status = status
			log.Warn("iteration bound reached before convergence", "iterations", cfg.MaxIterations, "energy", it.Energy)
			return result, nil
		}

		result.Iterations = it.Index
		result.FinalEnergy = it.Energy
		result.Energies = append(result.Energies, it.Energy)
		result.Durations = append(result.Durations, it.Elapsed)

		for _, m := range s.metrics {
			m.Observe(it)
		}
		s.notify(it)
		log.Debug("iteration", "index", it.Index, "energy", it.Energy, "delta", it.PrevEnergy-it.Energy, "elapsed", it.Elapsed)

		if status == StatusConverged {
			result.Status = status
			result.EnergyIncreased = it.Energy > it.PrevEnergy
			if result.EnergyIncreased {
				log.Warn("stopped on energy increase", "iteration", it.Index, "previous", it.PrevEnergy, "energy", it.Energy)
			}
			log.Info("relaxation converged", "iterations", it.Index, "energy", it.Energy)
			return result, nil
		}
	}
}

func (s *Simulator) notify(it Iteration) {
	for _, o := range s.observers {
		o.OnIteration(it)
	}
}
