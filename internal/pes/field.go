package pes

import (
	"fmt"
	"math"

	"github.com/san-kum/mepsim/internal/geom"
)

// Gaussian is one anisotropic basis function of the surface. A negative
// amplitude is a well, a positive one a barrier.
type Gaussian struct {
	Amplitude float64 `yaml:"amplitude" json:"amplitude"`
	CenterX   float64 `yaml:"center_x" json:"center_x"`
	SigmaX    float64 `yaml:"sigma_x" json:"sigma_x"`
	CenterY   float64 `yaml:"center_y" json:"center_y"`
	SigmaY    float64 `yaml:"sigma_y" json:"sigma_y"`
}

func (g Gaussian) valueAt(p geom.Vec2) float64 {
	dx, dy := p.X-g.CenterX, p.Y-g.CenterY
	ex := dx * dx / (2 * g.SigmaX * g.SigmaX)
	ey := dy * dy / (2 * g.SigmaY * g.SigmaY)
	return g.Amplitude * math.Exp(-(ex + ey))
}

// gradientAt points downhill. value already carries the amplitude sign.
func (g Gaussian) gradientAt(p geom.Vec2) geom.Vec2 {
	v := g.valueAt(p)
	return geom.Vec2{
		X: v * (p.X - g.CenterX) / (2 * g.SigmaX * g.SigmaX),
		Y: v * (p.Y - g.CenterY) / (2 * g.SigmaY * g.SigmaY),
	}
}

func (g Gaussian) validate() error {
	for _, v := range []float64{g.Amplitude, g.CenterX, g.CenterY, g.SigmaX, g.SigmaY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %w", ErrInvalidGaussian, ErrNonFinite)
		}
	}
	if g.SigmaX == 0 || g.SigmaY == 0 {
		return ErrZeroSigma
	}
	return nil
}

// Field is a scaled sum of Gaussians. Scale acts as the step size of the
// whole relaxation: every gradient is multiplied by it.
type Field struct {
	Scale     float64    `yaml:"scale" json:"scale"`
	Gaussians []Gaussian `yaml:"gaussians" json:"gaussians"`
}

func New(scale float64, gaussians ...Gaussian) *Field {
	gs := make([]Gaussian, len(gaussians))
	copy(gs, gaussians)
	return &Field{Scale: scale, Gaussians: gs}
}

func (f *Field) EnergyAt(p geom.Vec2) float64 {
	sum := 0.0
	for _, g := range f.Gaussians {
		sum += g.valueAt(p)
	}
	return f.Scale * sum
}

// GradientAt returns the negative energy gradient, i.e. the direction in
// which the energy decreases.
func (f *Field) GradientAt(p geom.Vec2) geom.Vec2 {
	var sum geom.Vec2
	for _, g := range f.Gaussians {
		sum = sum.Add(g.gradientAt(p))
	}
	return sum.Scale(f.Scale)
}

func (f *Field) Validate() error {
	if math.IsNaN(f.Scale) || math.IsInf(f.Scale, 0) {
		return fmt.Errorf("scale: %w", ErrNonFinite)
	}
	for i, g := range f.Gaussians {
		if err := g.validate(); err != nil {
			return fmt.Errorf("gaussian %d: %w", i, err)
		}
	}
	return nil
}
