package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/mepsim/internal/experiment"
	"github.com/san-kum/mepsim/internal/sim"
)

// Objective names accepted by Search besides recorded metric names.
const (
	ObjectiveFinalEnergy = "final_energy"
	ObjectiveIterations  = "iterations"
)

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
	Status sim.Status
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	trials     []Trial
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search evaluates every combination of the parameter ranges and returns
// the one with the lowest objective. Combinations that fail to build or
// run are recorded in Trials and skipped.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	objective string,
) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("got %d parameter names but %d ranges", len(g.paramNames), len(g.ranges))
	}

	g.trials = g.trials[:0]
	best := math.Inf(1)
	var bestParams map[string]float64

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, objective, &best, &bestParams); err != nil {
		return bestParams, best, err
	}
	if bestParams == nil {
		return nil, best, errors.New("no parameter combination produced a result")
	}
	return bestParams, best, nil
}

// Trials returns the evaluated grid points of the last Search, best first.
func (g *GridSearch) Trials() []Trial {
	out := append([]Trial(nil), g.trials...)
	sort.SliceStable(out, func(i, j int) bool {
		if (out[i].Err == nil) != (out[j].Err == nil) {
			return out[i].Err == nil
		}
		return out[i].Value < out[j].Value
	})
	return out
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	objective string,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		trial := Trial{Params: current, Value: math.NaN()}
		defer func() { g.trials = append(g.trials, trial) }()

		exp, err := buildExperiment(current)
		if err != nil {
			trial.Err = err
			return nil
		}

		result, err := exp.Run(ctx)
		if err != nil {
			trial.Err = err
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		}
		trial.Status = result.Status

		val, err := objectiveValue(result, objective)
		if err != nil {
			trial.Err = err
			return nil
		}
		trial.Value = val

		if val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, buildExperiment, objective, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

func objectiveValue(result *sim.Result, objective string) (float64, error) {
	switch objective {
	case ObjectiveFinalEnergy:
		return result.FinalEnergy, nil
	case ObjectiveIterations:
		return float64(result.Iterations), nil
	}
	val, ok := result.Metrics[objective]
	if !ok {
		return 0, fmt.Errorf("metric %q not recorded", objective)
	}
	return val, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}
