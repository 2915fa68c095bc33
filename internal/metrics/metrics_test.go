package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/mepsim/internal/geom"
	"github.com/san-kum/mepsim/internal/neb"
	"github.com/san-kum/mepsim/internal/pes"
	"github.com/san-kum/mepsim/internal/sim"
)

func straightChain(elements int) *neb.Chain {
	return neb.New(neb.ChainConfig{
		PinEnds:  true,
		Start:    geom.V(0, 0),
		End:      geom.V(4, 0),
		Elements: elements,
	})
}

func iteration(chain *neb.Chain, field neb.Surface, prev, energy float64) sim.Iteration {
	return sim.Iteration{Index: 1, PrevEnergy: prev, Energy: energy, Chain: chain, Field: field}
}

func TestPathLength(t *testing.T) {
	m := NewPathLength()
	m.Observe(iteration(straightChain(4), pes.New(0), 0, 0))

	if math.Abs(m.Value()-4) > 1e-12 {
		t.Errorf("expected length 4, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero length after reset")
	}
}

func TestSpacingSpread(t *testing.T) {
	m := NewSpacingSpread()
	m.Observe(iteration(straightChain(8), pes.New(0), 0, 0))

	if math.Abs(m.Value()-1) > 1e-9 {
		t.Errorf("evenly spaced chain should score 1, got %f", m.Value())
	}
}

func TestMaxPerpendicularForce(t *testing.T) {
	chain := straightChain(4)

	flat := NewMaxPerpendicularForce()
	flat.Observe(iteration(chain, pes.New(0), 0, 0))
	if flat.Value() != 0 {
		t.Errorf("flat surface should exert no force, got %f", flat.Value())
	}

	// A well above the chain pulls every interior point along +y.
	field := pes.New(1, pes.Gaussian{Amplitude: -1, CenterX: 2, SigmaX: 1, CenterY: 1, SigmaY: 1})
	m := NewMaxPerpendicularForce()
	m.Observe(iteration(chain, field, 0, 0))

	want := field.GradientAt(geom.V(2, 0)).Y
	if math.Abs(m.Value()-math.Abs(want)) > 1e-12 {
		t.Errorf("expected %f, got %f", math.Abs(want), m.Value())
	}
}

func TestBarrier(t *testing.T) {
	field := pes.New(1, pes.Gaussian{Amplitude: 2, CenterX: 2, SigmaX: 1, CenterY: 0, SigmaY: 1})
	m := NewBarrier()

	if m.Value() != 0 {
		t.Error("expected zero before observing")
	}

	m.Observe(iteration(straightChain(4), field, 0, 0))

	want := field.EnergyAt(geom.V(2, 0)) - field.EnergyAt(geom.V(0, 0))
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("expected barrier %f, got %f", want, m.Value())
	}
}

func TestEnergyDrop(t *testing.T) {
	chain := straightChain(2)
	m := NewEnergyDrop()

	m.Observe(iteration(chain, pes.New(0), -1.0, -1.5))
	m.Observe(iteration(chain, pes.New(0), -1.5, -1.75))

	if math.Abs(m.Value()-0.75) > 1e-12 {
		t.Errorf("expected drop 0.75, got %f", m.Value())
	}
}

func TestMonotonicity(t *testing.T) {
	chain := straightChain(2)
	m := NewMonotonicity(0)

	if m.Value() != 1.0 {
		t.Error("expected 1.0 before observing")
	}

	m.Observe(iteration(chain, pes.New(0), 1.0, 0.5))
	m.Observe(iteration(chain, pes.New(0), 0.5, 0.6))

	if m.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", m.Value())
	}
}

func TestDefaultNamesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range Default() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
}
