package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/mepsim/internal/geom"
	"github.com/san-kum/mepsim/internal/neb"
	"github.com/san-kum/mepsim/internal/pes"
	"github.com/san-kum/mepsim/internal/render"
	"github.com/san-kum/mepsim/internal/sim"
)

const (
	DefaultFile               = "mep_config.yaml"
	DefaultConvergenceLimit   = 1e-4
	DefaultMaxIterations      = 100000
	DefaultRelaxMaxIterations = 10000
	DefaultElements           = 20
	DefaultScale              = 1.0
	DefaultResolution         = 800
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	ConvergenceLimit float64 `yaml:"convergence_limit" json:"convergence_limit"`
	// MaxIterations bounds the main loop and RelaxMaxIterations each
	// endpoint relaxation. Zero means unbounded.
	MaxIterations      int                `yaml:"max_iterations" json:"max_iterations"`
	RelaxMaxIterations int                `yaml:"relax_max_iterations" json:"relax_max_iterations"`
	PES                pes.Field          `yaml:"pes" json:"pes"`
	Path               neb.ChainConfig    `yaml:"path" json:"path"`
	Image              render.ImageConfig `yaml:"image" json:"image"`
}

// DefaultConfig is the three-well sample: the straight line from (7.5, 0)
// to (0, 7.5) bends through the well at (5, 5).
func DefaultConfig() *Config {
	return &Config{
		ConvergenceLimit:   DefaultConvergenceLimit,
		MaxIterations:      DefaultMaxIterations,
		RelaxMaxIterations: DefaultRelaxMaxIterations,
		PES: pes.Field{
			Scale: DefaultScale,
			Gaussians: []pes.Gaussian{
				{Amplitude: -5, CenterX: 5, SigmaX: 2, CenterY: 5, SigmaY: 2},
				{Amplitude: -5, CenterX: 0, SigmaX: 2, CenterY: 5, SigmaY: 2},
				{Amplitude: -5, CenterX: 5, SigmaX: 2, CenterY: 0, SigmaY: 2},
			},
		},
		Path: neb.ChainConfig{
			Start:    geom.V(7.5, 0),
			End:      geom.V(0, 7.5),
			Elements: DefaultElements,
		},
		Image: render.ImageConfig{
			ContourLines: 4,
			X0:           -2,
			Y0:           -2,
			Width:        10,
			Height:       10,
			ResolutionX:  DefaultResolution,
			ResolutionY:  DefaultResolution,
			PointSize:    0.1,
			LineWidth:    0.05,
		},
	}
}

// Load reads a YAML (or JSON) file over the defaults, so omitted keys keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// WriteSample writes the default config to path unless a file is already
// there.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return Save(path, DefaultConfig())
}

func (c *Config) Validate() error {
	if math.IsNaN(c.ConvergenceLimit) || math.IsInf(c.ConvergenceLimit, 0) {
		return fmt.Errorf("%w: convergence_limit must be finite", ErrInvalid)
	}
	if c.MaxIterations < 0 || c.RelaxMaxIterations < 0 {
		return fmt.Errorf("%w: iteration bounds must be non-negative", ErrInvalid)
	}
	if err := c.PES.Validate(); err != nil {
		return fmt.Errorf("%w: pes: %w", ErrInvalid, err)
	}
	if err := c.Path.Validate(); err != nil {
		return fmt.Errorf("%w: path: %w", ErrInvalid, err)
	}
	if err := c.Image.Validate(); err != nil {
		return fmt.Errorf("%w: image: %w", ErrInvalid, err)
	}
	return nil
}

// Field returns a private copy of the configured surface.
func (c *Config) Field() *pes.Field {
	return pes.New(c.PES.Scale, c.PES.Gaussians...)
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		ConvergenceLimit: c.ConvergenceLimit,
		MaxIterations:    c.MaxIterations,
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.PES.Gaussians = append([]pes.Gaussian(nil), c.PES.Gaussians...)
	return &out
}

// Params names the scalar settings SetParam understands.
var Params = []string{"spring_constant", "scale", "elements", "convergence_limit", "contour_lines"}

// SetParam sets a scalar setting by its YAML name. It backs parameter
// sweeps and command line overrides.
func (c *Config) SetParam(name string, v float64) error {
	switch name {
	case "spring_constant":
		c.Path.SpringConstant = v
	case "scale":
		c.PES.Scale = v
	case "elements":
		if v != math.Trunc(v) {
			return fmt.Errorf("elements must be an integer, got %g", v)
		}
		c.Path.Elements = int(v)
	case "convergence_limit":
		c.ConvergenceLimit = v
	case "contour_lines":
		c.Image.ContourLines = v
	default:
		return fmt.Errorf("unknown parameter %q", name)
	}
	return nil
}

// Param reads a scalar setting by its YAML name.
func (c *Config) Param(name string) (float64, error) {
	switch name {
	case "spring_constant":
		return c.Path.SpringConstant, nil
	case "scale":
		return c.PES.Scale, nil
	case "elements":
		return float64(c.Path.Elements), nil
	case "convergence_limit":
		return c.ConvergenceLimit, nil
	case "contour_lines":
		return c.Image.ContourLines, nil
	}
	return 0, fmt.Errorf("unknown parameter %q", name)
}
