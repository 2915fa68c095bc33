package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/mepsim/internal/analysis"
	"github.com/san-kum/mepsim/internal/config"
	"github.com/san-kum/mepsim/internal/experiment"
	"github.com/san-kum/mepsim/internal/geom"
	"github.com/san-kum/mepsim/internal/sim"
	"github.com/san-kum/mepsim/internal/storage"
)

// Scenario is a scripted sequence of relaxations.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep picks a preset or a config file and overrides parameters
// by name (see config.Params).
type ScenarioStep struct {
	Preset        string             `yaml:"preset"`
	Config        string             `yaml:"config"`
	Params        map[string]float64 `yaml:"params"`
	MaxIterations *int               `yaml:"max_iterations"`
	SaveAs        string             `yaml:"save_as"`
}

// StepResult is the outcome of one scenario step. RunID is empty when no
// store was given.
type StepResult struct {
	Name   string
	RunID  string
	Result *sim.Result
	Saddle analysis.Saddle
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}

	return &scenario, nil
}

func (s ScenarioStep) build(registry *experiment.Registry) (*config.Config, error) {
	cfg, err := registry.GetConfig(s.Preset, s.Config)
	if err != nil {
		return nil, err
	}
	for k, v := range s.Params {
		if err := cfg.SetParam(k, v); err != nil {
			return nil, err
		}
	}
	if s.MaxIterations != nil {
		cfg.MaxIterations = *s.MaxIterations
	}
	return cfg, nil
}

func (s ScenarioStep) name(scenario string, index int) string {
	switch {
	case s.SaveAs != "":
		return s.SaveAs
	case s.Preset != "":
		return fmt.Sprintf("%s_%d_%s", scenario, index+1, s.Preset)
	}
	return fmt.Sprintf("%s_%d", scenario, index+1)
}

// RunScenario executes the steps in order and saves each run to st when it
// is not nil. A step that stops without converging is kept; setup errors
// and cancellation abort the scenario.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, st *storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.name(scenario.Name, i)
		sim.Logger().Info("scenario step", "step", i+1, "of", len(scenario.Steps), "name", name)

		cfg, err := step.build(registry)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(registry.DefaultMetrics()); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if result == nil || ctx.Err() != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		if err != nil {
			sim.Logger().Warn("scenario step stopped early", "step", i+1, "error", err)
		}

		points := exp.Chain().Points()
		out := StepResult{
			Name:   name,
			Result: result,
			Saddle: analysis.NewProfile(points, exp.Field()).Saddle(),
		}
		if st != nil {
			runID, err := st.Save(name, cfg, result, points)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			out.RunID = runID
		}
		results = append(results, out)
	}

	return results, nil
}

// MonteCarloConfig perturbs both anchors of Base uniformly within
// ±Perturbation on each axis and relaxes every trial.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Seed         int64
}

type MonteCarloResult struct {
	TrialID int
	Start   geom.Vec2
	End     geom.Vec2
	Status  sim.Status
	Saddle  analysis.Saddle
	Err     error
}

// RunMonteCarlo checks how sensitive the barrier estimate is to the choice
// of anchors. Failed trials are recorded, not returned as errors.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry) ([]MonteCarloResult, error) {
	if cfg.Base == nil {
		return nil, fmt.Errorf("monte carlo needs a base config")
	}
	if cfg.NumTrials < 1 {
		return nil, fmt.Errorf("monte carlo needs at least one trial, got %d", cfg.NumTrials)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	jitter := func(p geom.Vec2) geom.Vec2 {
		return geom.V(
			p.X+(rng.Float64()-0.5)*2*cfg.Perturbation,
			p.Y+(rng.Float64()-0.5)*2*cfg.Perturbation,
		)
	}

	results := make([]MonteCarloResult, 0, cfg.NumTrials)
	for trial := 0; trial < cfg.NumTrials; trial++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		c := cfg.Base.Clone()
		c.Path.Start = jitter(c.Path.Start)
		c.Path.End = jitter(c.Path.End)
		out := MonteCarloResult{TrialID: trial, Start: c.Path.Start, End: c.Path.End, Saddle: analysis.Saddle{Index: -1}}

		exp := experiment.New(c)
		if err := exp.Setup(nil); err != nil {
			out.Err = err
			results = append(results, out)
			continue
		}
		result, err := exp.Run(ctx)
		if result == nil {
			return results, err
		}
		out.Status = result.Status
		out.Err = err
		if err == nil {
			out.Saddle = analysis.NewProfile(exp.Chain().Points(), exp.Field()).Saddle()
		}
		results = append(results, out)

		if (trial+1)%10 == 0 {
			sim.Logger().Info("monte carlo progress", "done", trial+1, "of", cfg.NumTrials)
		}
	}

	return results, nil
}

// MonteCarloStats summarises the saddle energies of the successful trials.
// Mean is NaN when no trial succeeded and StdDev needs two.
type MonteCarloStats struct {
	Succeeded int
	Failed    int
	Mean      float64
	StdDev    float64
}

func Stats(results []MonteCarloResult) MonteCarloStats {
	var s MonteCarloStats
	var energies []float64
	for _, r := range results {
		if r.Err != nil || r.Saddle.Index < 0 {
			s.Failed++
			continue
		}
		s.Succeeded++
		energies = append(energies, r.Saddle.Energy)
	}
	switch len(energies) {
	case 0:
		s.Mean, s.StdDev = math.NaN(), math.NaN()
	case 1:
		s.Mean, s.StdDev = energies[0], math.NaN()
	default:
		s.Mean, s.StdDev = stat.MeanStdDev(energies, nil)
	}
	return s
}
