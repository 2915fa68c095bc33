package metrics

import (
	"github.com/san-kum/mepsim/internal/sim"
)

// Monotonicity is the fraction of iterations that did not raise the
// average energy by more than threshold.
type Monotonicity struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewMonotonicity(threshold float64) *Monotonicity {
	return &Monotonicity{
		name:      "monotonicity",
		threshold: threshold,
	}
}

func (m *Monotonicity) Name() string {
	return m.name
}

func (m *Monotonicity) Observe(it sim.Iteration) {
	m.samples++
	if it.Energy-it.PrevEnergy > m.threshold {
		m.violations++
	}
}

func (m *Monotonicity) Value() float64 {
	if m.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(m.violations)/float64(m.samples)
}

func (m *Monotonicity) Reset() {
	m.violations = 0
	m.samples = 0
}
