package experiment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/mepsim/internal/config"
	"github.com/san-kum/mepsim/internal/neb"
	"github.com/san-kum/mepsim/internal/pes"
	"github.com/san-kum/mepsim/internal/sim"
)

// Experiment wires a config into a field, a chain and a simulator.
type Experiment struct {
	cfg       *config.Config
	field     *pes.Field
	chain     *neb.Chain
	simulator *sim.Simulator
	setupTime time.Duration
	warnings  []error
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup validates the config, relaxes the anchors when asked to and builds
// the chain. An endpoint relaxation that hits its iteration bound is kept
// and reported as a warning.
func (e *Experiment) Setup(metrics []sim.Metric) error {
	started := time.Now()
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	e.field = e.cfg.Field()

	chainCfg, err := e.cfg.Path.WithRelaxedEnds(e.field, e.cfg.ConvergenceLimit, e.cfg.RelaxMaxIterations)
	if err != nil {
		if !errors.Is(err, neb.ErrNotConverged) {
			return fmt.Errorf("relax endpoints: %w", err)
		}
		sim.Logger().Warn("endpoint relaxation did not converge", "error", err)
		e.warnings = append(e.warnings, err)
	}
	if err := chainCfg.Validate(); err != nil {
		return err
	}

	e.chain = neb.New(chainCfg)
	e.simulator = sim.New(e.field)
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	e.setupTime = time.Since(started)
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.chain, e.cfg.SimConfig())
}

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) Field() *pes.Field { return e.field }

// Chain is the chain being relaxed; nil before Setup.
func (e *Experiment) Chain() *neb.Chain { return e.chain }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) SetupTime() time.Duration { return e.setupTime }

// Warnings lists non-fatal problems met during Setup.
func (e *Experiment) Warnings() []error { return e.warnings }
