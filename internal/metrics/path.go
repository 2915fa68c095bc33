package metrics

import (
	"math"

	"github.com/san-kum/mepsim/internal/geom"
	"github.com/san-kum/mepsim/internal/sim"
)

func segmentLengths(points []geom.Vec2) []float64 {
	if len(points) < 2 {
		return nil
	}
	out := make([]float64, len(points)-1)
	for i := range out {
		out[i] = points[i+1].Sub(points[i]).Len()
	}
	return out
}

// PathLength is the polyline length of the latest chain.
type PathLength struct {
	name  string
	value float64
}

func NewPathLength() *PathLength {
	return &PathLength{name: "path_length"}
}

func (p *PathLength) Name() string { return p.name }

func (p *PathLength) Observe(it sim.Iteration) {
	p.value = 0
	for _, l := range segmentLengths(it.Chain.Points()) {
		p.value += l
	}
}

func (p *PathLength) Value() float64 { return p.value }

func (p *PathLength) Reset() { p.value = 0 }

// SpacingSpread is the ratio of the longest to the shortest segment of the
// latest chain. An evenly spaced chain scores 1; a chain with a collapsed
// segment scores +Inf.
type SpacingSpread struct {
	name  string
	value float64
}

func NewSpacingSpread() *SpacingSpread {
	return &SpacingSpread{name: "spacing_spread"}
}

func (s *SpacingSpread) Name() string { return s.name }

func (s *SpacingSpread) Observe(it sim.Iteration) {
	lengths := segmentLengths(it.Chain.Points())
	if len(lengths) == 0 {
		s.value = 0
		return
	}
	lo, hi := math.Inf(1), 0.0
	for _, l := range lengths {
		lo = math.Min(lo, l)
		hi = math.Max(hi, l)
	}
	switch {
	case hi == 0:
		s.value = 1
	case lo == 0:
		s.value = math.Inf(1)
	default:
		s.value = hi / lo
	}
}

func (s *SpacingSpread) Value() float64 { return s.value }

func (s *SpacingSpread) Reset() { s.value = 0 }

// MaxPerpendicularForce is the largest gradient component normal to the
// path on the latest chain. It goes to zero as the chain settles onto a
// minimum energy path.
type MaxPerpendicularForce struct {
	name  string
	value float64
}

func NewMaxPerpendicularForce() *MaxPerpendicularForce {
	return &MaxPerpendicularForce{name: "max_perpendicular_force"}
}

func (m *MaxPerpendicularForce) Name() string { return m.name }

func (m *MaxPerpendicularForce) Observe(it sim.Iteration) {
	m.value = 0
	forces := it.Chain.Forces(it.Field)
	for i := 1; i+1 < len(forces); i++ {
		m.value = math.Max(m.value, forces[i].Perpendicular.Len())
	}
}

func (m *MaxPerpendicularForce) Value() float64 { return m.value }

func (m *MaxPerpendicularForce) Reset() { m.value = 0 }

// Default returns the metrics a run records unless told otherwise.
func Default() []sim.Metric {
	return []sim.Metric{
		NewPathLength(),
		NewSpacingSpread(),
		NewMaxPerpendicularForce(),
		NewBarrier(),
		NewEnergyDrop(),
		NewMonotonicity(0),
	}
}
