package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/mepsim/internal/config"
	"github.com/san-kum/mepsim/internal/metrics"
	"github.com/san-kum/mepsim/internal/sim"
)

type Registry struct {
	metrics map[string]func() sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func() sim.Metric),
	}

	r.metrics["path_length"] = func() sim.Metric { return metrics.NewPathLength() }
	r.metrics["spacing_spread"] = func() sim.Metric { return metrics.NewSpacingSpread() }
	r.metrics["max_perpendicular_force"] = func() sim.Metric { return metrics.NewMaxPerpendicularForce() }
	r.metrics["barrier"] = func() sim.Metric { return metrics.NewBarrier() }
	r.metrics["energy_drop"] = func() sim.Metric { return metrics.NewEnergyDrop() }
	r.metrics["monotonicity"] = func() sim.Metric { return metrics.NewMonotonicity(0) }

	return r
}

func (r *Registry) GetMetric(name string) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns a fresh instance of every registered metric.
func (r *Registry) DefaultMetrics() []sim.Metric {
	out := make([]sim.Metric, 0, len(r.metrics))
	for _, name := range r.ListMetrics() {
		out = append(out, r.metrics[name]())
	}
	return out
}

// GetConfig resolves a preset name, falling back to the config file at
// path when name is empty.
func (r *Registry) GetConfig(name, path string) (*config.Config, error) {
	if name != "" {
		return config.GetPreset(name)
	}
	return config.Load(path)
}
