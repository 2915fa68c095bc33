package neb

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/mepsim/internal/geom"
)

// Interior sweeps at or below this many points run on the calling goroutine.
const parallelThreshold = 512

// Chain is a discretized path between two anchors. Index 0 and Len()-1 are
// the anchors; everything in between moves on each Iterate.
type Chain struct {
	cfg    ChainConfig
	points []geom.Vec2
}

// New lays cfg.Elements+1 points on the straight line from cfg.Start to
// cfg.End, both included. cfg must already be valid; relax the anchors with
// ChainConfig.WithRelaxedEnds beforehand if wanted.
func New(cfg ChainConfig) *Chain {
	n := cfg.Elements + 1
	xs := floats.Span(make([]float64, n), cfg.Start.X, cfg.End.X)
	ys := floats.Span(make([]float64, n), cfg.Start.Y, cfg.End.Y)
	xs[n-1], ys[n-1] = cfg.End.X, cfg.End.Y

	points := make([]geom.Vec2, n)
	for i := range points {
		points[i] = geom.Vec2{X: xs[i], Y: ys[i]}
	}
	return &Chain{cfg: cfg, points: points}
}

func (c *Chain) Config() ChainConfig { return c.cfg }

func (c *Chain) Len() int { return len(c.points) }

func (c *Chain) At(i int) geom.Vec2 { return c.points[i] }

// Points returns a copy of the current positions.
func (c *Chain) Points() []geom.Vec2 {
	out := make([]geom.Vec2, len(c.points))
	copy(out, c.points)
	return out
}

// Energy is the summed point energy divided by the number of elements,
// i.e. an average per segment.
func (c *Chain) Energy(s Surface) float64 {
	energies := make([]float64, len(c.points))
	for i, p := range c.points {
		energies[i] = s.EnergyAt(p)
	}
	return floats.Sum(energies) / float64(c.cfg.Elements)
}

// IsValid reports whether every point is finite.
func (c *Chain) IsValid() bool {
	for _, p := range c.points {
		if !p.IsValid() {
			return false
		}
	}
	return true
}

// Iterate moves every free point once. All new positions are computed from
// the current ones into a fresh slice, which then replaces the old one.
func (c *Chain) Iterate(s Surface) {
	size := len(c.points)
	next := make([]geom.Vec2, size)

	last := size - 1
	if c.cfg.PinEnds {
		next[0] = c.points[0]
		next[last] = c.points[last]
	} else {
		next[0] = c.endpointForce(s, 0).apply(c.points[0])
		next[last] = c.endpointForce(s, last).apply(c.points[last])
	}

	interior := size - 2
	sweep := func(start, end int) {
		for j := start; j < end; j++ {
			i := j + 1
			next[i] = c.interiorForce(s, i).apply(c.points[i])
		}
	}
	if interior > parallelThreshold {
		parallelFor(interior, parallelThreshold/4, sweep)
	} else {
		sweep(0, interior)
	}

	c.points = next
}

// Force is the decomposition of one point's update.
type Force struct {
	Tangent  geom.Vec2
	Normal   geom.Vec2
	Gradient geom.Vec2
	// Perpendicular is the gradient projected onto the normal.
	Perpendicular geom.Vec2
	// Spring is the spring force projected onto the tangent.
	Spring geom.Vec2
}

// Total is the displacement applied by Iterate.
func (f Force) Total() geom.Vec2 { return f.Perpendicular.Add(f.Spring) }

func (f Force) apply(p geom.Vec2) geom.Vec2 { return p.Add(f.Total()) }

// Forces returns the update each point would receive from the next Iterate.
// Pinned anchors get a zero Force.
func (c *Chain) Forces(s Surface) []Force {
	out := make([]Force, len(c.points))
	last := len(c.points) - 1
	if !c.cfg.PinEnds {
		out[0] = c.endpointForce(s, 0)
		out[last] = c.endpointForce(s, last)
	}
	for i := 1; i < last; i++ {
		out[i] = c.interiorForce(s, i)
	}
	return out
}

func (c *Chain) interiorForce(s Surface, i int) Force {
	prev, this, next := c.points[i-1], c.points[i], c.points[i+1]
	return nudge(prev, this, next, s.GradientAt(this), c.cfg.SpringConstant)
}

// endpointForce uses the single neighbour for the tangent and never springs.
func (c *Chain) endpointForce(s Surface, i int) Force {
	this := c.points[i]
	if i == 0 {
		return nudge(this, this, c.points[1], s.GradientAt(this), 0)
	}
	return nudge(c.points[i-1], this, this, s.GradientAt(this), 0)
}

func nudge(prev, this, next, gradient geom.Vec2, k float64) Force {
	tangent := prev.Sub(next).Normalize()
	normal := tangent.Rotate(math.Pi / 2)

	perp := normal.Scale(normal.Dot(gradient))

	var spring geom.Vec2
	if k != 0 {
		raw := prev.Sub(this).Add(next.Sub(this)).Scale(k / 2)
		spring = tangent.Scale(tangent.Dot(raw))
	}

	return Force{
		Tangent:       tangent,
		Normal:        normal,
		Gradient:      gradient,
		Perpendicular: perp,
		Spring:        spring,
	}
}
