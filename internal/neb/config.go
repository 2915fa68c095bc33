package neb

import (
	"errors"
	"fmt"

	"github.com/san-kum/mepsim/internal/geom"
)

// Surface is what the chain needs from a potential energy surface.
// GradientAt must return the downhill direction.
type Surface interface {
	EnergyAt(p geom.Vec2) float64
	GradientAt(p geom.Vec2) geom.Vec2
}

// ChainConfig holds the immutable parameters of a chain.
type ChainConfig struct {
	SpringConstant float64   `yaml:"spring_constant" json:"spring_constant"`
	PinEnds        bool      `yaml:"pin_ends" json:"pin_ends"`
	RelaxEnds      bool      `yaml:"relax_ends" json:"relax_ends"`
	Start          geom.Vec2 `yaml:"start" json:"start"`
	End            geom.Vec2 `yaml:"end" json:"end"`
	Elements       int       `yaml:"elements" json:"elements"`
}

func (c ChainConfig) Validate() error {
	if c.Elements < 2 {
		return fmt.Errorf("%w: elements must be at least 2, got %d", ErrInvalidConfig, c.Elements)
	}
	if c.SpringConstant < 0 {
		return fmt.Errorf("%w: spring constant must be non-negative, got %f", ErrInvalidConfig, c.SpringConstant)
	}
	if !c.Start.IsValid() || !c.End.IsValid() {
		return fmt.Errorf("%w: anchors must be finite", ErrInvalidConfig)
	}
	return nil
}

// WithRelaxedEnds returns a copy of c whose anchors were moved to the
// nearest local minimum of s. It is a no-op unless RelaxEnds is set.
// A non-converged relaxation still updates the anchors and reports
// ErrNotConverged.
func (c ChainConfig) WithRelaxedEnds(s Surface, limit float64, maxIter int) (ChainConfig, error) {
	if !c.RelaxEnds {
		return c, nil
	}

	var errs []error
	start, _, err := RelaxToMinimum(c.Start, s, limit, maxIter)
	if err != nil {
		if !errors.Is(err, ErrNotConverged) {
			return c, fmt.Errorf("relax start: %w", err)
		}
		errs = append(errs, fmt.Errorf("start: %w", err))
	}
	end, _, err := RelaxToMinimum(c.End, s, limit, maxIter)
	if err != nil {
		if !errors.Is(err, ErrNotConverged) {
			return c, fmt.Errorf("relax end: %w", err)
		}
		errs = append(errs, fmt.Errorf("end: %w", err))
	}

	c.Start, c.End = start, end
	return c, errors.Join(errs...)
}
