package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/mepsim/internal/geom"
	"github.com/san-kum/mepsim/internal/neb"
)

// Profile is the energy of each chain point against its arc length from
// the first point.
type Profile struct {
	Points   []geom.Vec2
	Arc      []float64
	Energies []float64
}

func NewProfile(points []geom.Vec2, s neb.Surface) *Profile {
	p := &Profile{
		Points:   append([]geom.Vec2(nil), points...),
		Arc:      make([]float64, len(points)),
		Energies: make([]float64, len(points)),
	}
	if len(points) == 0 {
		return p
	}

	segments := make([]float64, len(points))
	for i := 1; i < len(points); i++ {
		segments[i] = points[i].Sub(points[i-1]).Len()
	}
	floats.CumSum(p.Arc, segments)

	for i, pt := range points {
		p.Energies[i] = s.EnergyAt(pt)
	}
	return p
}

func (p *Profile) Length() float64 {
	if len(p.Arc) == 0 {
		return 0
	}
	return p.Arc[len(p.Arc)-1]
}

// Saddle describes the highest image of a profile.
type Saddle struct {
	Index  int
	Point  geom.Vec2
	Arc    float64
	Energy float64
	// Forward is the climb from the first point, Backward from the last.
	Forward  float64
	Backward float64
}

// Saddle returns the highest-energy image. On a relaxed chain it
// approximates the transition state. A profile whose maximum sits on an
// anchor has no interior barrier and reports Index 0 or len-1.
func (p *Profile) Saddle() Saddle {
	if len(p.Energies) == 0 {
		return Saddle{Index: -1}
	}
	i := floats.MaxIdx(p.Energies)
	last := len(p.Energies) - 1
	return Saddle{
		Index:    i,
		Point:    p.Points[i],
		Arc:      p.Arc[i],
		Energy:   p.Energies[i],
		Forward:  p.Energies[i] - p.Energies[0],
		Backward: p.Energies[i] - p.Energies[last],
	}
}

// Minima returns indices of interior points lower than both neighbours.
func (p *Profile) Minima() []int {
	var out []int
	for i := 1; i+1 < len(p.Energies); i++ {
		if p.Energies[i] < p.Energies[i-1] && p.Energies[i] < p.Energies[i+1] {
			out = append(out, i)
		}
	}
	return out
}

// ConvergenceRate fits log|ΔE| against the iteration index and returns the
// per-iteration contraction factor exp(slope). Values below 1 mean the
// energy changes shrink geometrically. NaN when fewer than three usable
// deltas exist.
func ConvergenceRate(energies []float64) float64 {
	var xs, ys []float64
	for i := 1; i < len(energies); i++ {
		d := math.Abs(energies[i-1] - energies[i])
		if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, math.Log(d))
	}
	if len(xs) < 3 {
		return math.NaN()
	}
	_, slope := stat.LinearRegression(xs, ys, nil, false)
	return math.Exp(slope)
}
