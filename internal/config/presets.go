package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/mepsim/internal/geom"
	"github.com/san-kum/mepsim/internal/neb"
	"github.com/san-kum/mepsim/internal/pes"
	"github.com/san-kum/mepsim/internal/render"
)

var ErrUnknownPreset = errors.New("unknown preset")

func window(x0, y0, side float64) render.ImageConfig {
	return render.ImageConfig{
		ContourLines: 4,
		X0:           x0,
		Y0:           y0,
		Width:        side,
		Height:       side,
		ResolutionX:  DefaultResolution,
		ResolutionY:  DefaultResolution,
		PointSize:    side / 100,
		LineWidth:    side / 200,
	}
}

var Presets = map[string]*Config{
	"three_wells": DefaultConfig(),
	"double_well": {
		ConvergenceLimit: 1e-6, MaxIterations: 20000, RelaxMaxIterations: DefaultRelaxMaxIterations,
		PES: pes.Field{Scale: 0.2, Gaussians: []pes.Gaussian{
			{Amplitude: -5, CenterX: 0, SigmaX: 1.5, CenterY: 0, SigmaY: 1.5},
			{Amplitude: -5, CenterX: 5, SigmaX: 1.5, CenterY: 5, SigmaY: 1.5},
			{Amplitude: 3, CenterX: 2.5, SigmaX: 1, CenterY: 2.5, SigmaY: 1},
		}},
		Path: neb.ChainConfig{
			SpringConstant: 0.5, PinEnds: true, RelaxEnds: true,
			Start: geom.V(0.5, -0.5), End: geom.V(4.5, 5.5), Elements: 24,
		},
		Image: window(-3, -3, 11),
	},
	"barrier": {
		ConvergenceLimit: 1e-6, MaxIterations: 20000, RelaxMaxIterations: DefaultRelaxMaxIterations,
		PES: pes.Field{Scale: 0.2, Gaussians: []pes.Gaussian{
			{Amplitude: -4, CenterX: -3, SigmaX: 1.2, CenterY: 0, SigmaY: 1.2},
			{Amplitude: -4, CenterX: 3, SigmaX: 1.2, CenterY: 0, SigmaY: 1.2},
			{Amplitude: 4, CenterX: 0, SigmaX: 1, CenterY: -0.5, SigmaY: 1.5},
		}},
		Path: neb.ChainConfig{
			SpringConstant: 0.5, PinEnds: true, RelaxEnds: true,
			Start: geom.V(-3, 0), End: geom.V(3, 0), Elements: 30,
		},
		Image: window(-6, -5, 12),
	},
	"muller_like": {
		ConvergenceLimit: 1e-6, MaxIterations: 50000, RelaxMaxIterations: DefaultRelaxMaxIterations,
		PES: pes.Field{Scale: 0.05, Gaussians: []pes.Gaussian{
			{Amplitude: -10, CenterX: -0.5, SigmaX: 0.6, CenterY: 1.5, SigmaY: 0.5},
			{Amplitude: -8, CenterX: 0.6, SigmaX: 0.5, CenterY: 0, SigmaY: 0.4},
			{Amplitude: -6, CenterX: -0.1, SigmaX: 0.3, CenterY: 0.5, SigmaY: 0.3},
			{Amplitude: 2, CenterX: 0.3, SigmaX: 0.8, CenterY: 1, SigmaY: 0.8},
		}},
		Path: neb.ChainConfig{
			SpringConstant: 0.2, PinEnds: true, RelaxEnds: true,
			Start: geom.V(-0.5, 1.5), End: geom.V(0.6, 0), Elements: 30,
		},
		Image: window(-1.5, -0.5, 3),
	},
}

// GetPreset returns a copy of the named preset.
func GetPreset(name string) (*Config, error) {
	cfg, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return cfg.Clone(), nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
