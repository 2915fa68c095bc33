package metrics

import (
	"math"

	"github.com/san-kum/mepsim/internal/sim"
)

// Barrier tracks the highest single-point energy on the latest chain,
// relative to the lower anchor.
type Barrier struct {
	name    string
	value   float64
	samples int
}

func NewBarrier() *Barrier {
	return &Barrier{name: "barrier"}
}

func (b *Barrier) Name() string { return b.name }

func (b *Barrier) Observe(it sim.Iteration) {
	points := it.Chain.Points()
	if len(points) == 0 {
		return
	}
	peak := math.Inf(-1)
	for _, p := range points {
		peak = math.Max(peak, it.Field.EnergyAt(p))
	}
	base := math.Min(it.Field.EnergyAt(points[0]), it.Field.EnergyAt(points[len(points)-1]))
	b.value = peak - base
	b.samples++
}

func (b *Barrier) Value() float64 {
	if b.samples == 0 {
		return 0
	}
	return b.value
}

func (b *Barrier) Reset() {
	b.value = 0
	b.samples = 0
}

// EnergyDrop is the total decrease of the average energy since the first
// observed iteration.
type EnergyDrop struct {
	name    string
	initial float64
	current float64
	samples int
}

func NewEnergyDrop() *EnergyDrop {
	return &EnergyDrop{name: "energy_drop"}
}

func (e *EnergyDrop) Name() string { return e.name }

func (e *EnergyDrop) Observe(it sim.Iteration) {
	if e.samples == 0 {
		e.initial = it.PrevEnergy
	}
	e.current = it.Energy
	e.samples++
}

func (e *EnergyDrop) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.initial - e.current
}

func (e *EnergyDrop) Reset() {
	e.initial = 0
	e.current = 0
	e.samples = 0
}
