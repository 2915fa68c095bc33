package neb

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/mepsim/internal/geom"
	"github.com/san-kum/mepsim/internal/pes"
)

type flatSurface struct{ energy float64 }

func (f flatSurface) EnergyAt(geom.Vec2) float64     { return f.energy }
func (f flatSurface) GradientAt(geom.Vec2) geom.Vec2 { return geom.Vec2{} }

func threeWells() *pes.Field {
	return pes.New(1.0,
		pes.Gaussian{Amplitude: -5, CenterX: 5, SigmaX: 2, CenterY: 5, SigmaY: 2},
		pes.Gaussian{Amplitude: -5, CenterX: 0, SigmaX: 2, CenterY: 5, SigmaY: 2},
		pes.Gaussian{Amplitude: -5, CenterX: 5, SigmaX: 2, CenterY: 0, SigmaY: 2},
	)
}

func baseConfig() ChainConfig {
	return ChainConfig{
		SpringConstant: 0,
		PinEnds:        true,
		Start:          geom.V(7.5, 0),
		End:            geom.V(0, 7.5),
		Elements:       20,
	}
}

func TestNew_PointCountAndAnchors(t *testing.T) {
	for _, n := range []int{2, 3, 20, 1000} {
		cfg := baseConfig()
		cfg.Elements = n
		c := New(cfg)

		if c.Len() != n+1 {
			t.Errorf("elements=%d: expected %d points, got %d", n, n+1, c.Len())
		}
		if c.At(0) != cfg.Start {
			t.Errorf("elements=%d: first point %v, want %v", n, c.At(0), cfg.Start)
		}
		if c.At(n) != cfg.End {
			t.Errorf("elements=%d: last point %v, want %v", n, c.At(n), cfg.End)
		}
	}
}

func TestNew_EvenSpacing(t *testing.T) {
	c := New(baseConfig())
	pts := c.Points()
	want := pts[0].DistSq(pts[1])
	for i := 1; i < len(pts)-1; i++ {
		if d := pts[i].DistSq(pts[i+1]); math.Abs(d-want) > 1e-9 {
			t.Errorf("segment %d: squared length %f, want %f", i, d, want)
		}
	}
}

func TestPoints_ReturnsCopy(t *testing.T) {
	c := New(baseConfig())
	pts := c.Points()
	pts[3] = geom.V(100, 100)
	if c.At(3) == pts[3] {
		t.Error("Points exposed internal storage")
	}
}

func TestEnergy_IsAveragePerElement(t *testing.T) {
	cfg := baseConfig()
	cfg.Elements = 4
	c := New(cfg)

	got := c.Energy(flatSurface{energy: 2})
	want := 2.0 * 5 / 4
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("expected energy %f, got %f", want, got)
	}
}

func TestIterate_PinnedEndsStayPut(t *testing.T) {
	cfg := baseConfig()
	cfg.SpringConstant = 0.5
	c := New(cfg)
	field := threeWells()

	for i := 0; i < 25; i++ {
		c.Iterate(field)
	}

	if c.At(0) != cfg.Start || c.At(c.Len()-1) != cfg.End {
		t.Errorf("pinned ends moved: %v, %v", c.At(0), c.At(c.Len()-1))
	}
}

func TestIterate_ZeroSpringHasNoTangentialTerm(t *testing.T) {
	c := New(baseConfig())
	field := threeWells()
	c.Iterate(field)

	for i, f := range c.Forces(field) {
		if f.Spring != (geom.Vec2{}) {
			t.Errorf("point %d: expected zero spring force, got %v", i, f.Spring)
		}
	}
}

func TestIterate_StationaryOnFlatSurface(t *testing.T) {
	cfg := baseConfig()
	cfg.PinEnds = false
	c := New(cfg)
	before := c.Points()

	c.Iterate(flatSurface{})

	for i, p := range c.Points() {
		if p != before[i] {
			t.Errorf("point %d moved from %v to %v", i, before[i], p)
		}
	}
}

func TestIterate_ZeroScaleWithSprings(t *testing.T) {
	cfg := baseConfig()
	cfg.SpringConstant = 1
	c := New(cfg)
	before := c.Points()

	c.Iterate(pes.New(0, threeWells().Gaussians...))

	for i, p := range c.Points() {
		if d := p.DistSq(before[i]); d > 1e-20 {
			t.Errorf("evenly spaced straight chain point %d moved by %g", i, math.Sqrt(d))
		}
	}
}

func TestIterate_SingleInteriorPoint(t *testing.T) {
	cfg := baseConfig()
	cfg.Elements = 2
	c := New(cfg)
	field := threeWells()

	prev, this, next := c.At(0), c.At(1), c.At(2)
	tangent := prev.Sub(next).Normalize()
	normal := tangent.Rotate(math.Pi / 2)
	g := field.GradientAt(this)
	want := this.Add(normal.Scale(normal.Dot(g)))

	c.Iterate(field)

	if c.Len() != 3 {
		t.Fatalf("expected 3 points, got %d", c.Len())
	}
	if d := c.At(1).DistSq(want); d > 1e-20 {
		t.Errorf("interior point %v, want %v", c.At(1), want)
	}
}

func TestIterate_UsesPreIterationNeighbours(t *testing.T) {
	cfg := baseConfig()
	cfg.SpringConstant = 0.8
	cfg.PinEnds = false
	c := New(cfg)
	field := threeWells()

	// Bend the chain first so every force is non-trivial.
	for i := 0; i < 3; i++ {
		c.Iterate(field)
	}

	before := c.Points()
	forces := c.Forces(field)
	c.Iterate(field)

	for i, p := range c.Points() {
		want := before[i].Add(forces[i].Total())
		if d := p.DistSq(want); d > 1e-20 {
			t.Errorf("point %d: got %v, want %v", i, p, want)
		}
	}
}

func TestIterate_ParallelSweepMatchesForces(t *testing.T) {
	cfg := baseConfig()
	cfg.Elements = 4 * parallelThreshold
	cfg.SpringConstant = 0.3
	c := New(cfg)
	field := threeWells()
	c.Iterate(field)

	before := c.Points()
	forces := c.Forces(field)
	c.Iterate(field)

	for i, p := range c.Points() {
		want := before[i].Add(forces[i].Total())
		if p != want {
			t.Fatalf("point %d: got %v, want %v", i, p, want)
		}
	}
}

func TestIterate_FreeEndpointsMovePerpendicular(t *testing.T) {
	cfg := baseConfig()
	cfg.PinEnds = false
	cfg.SpringConstant = 2
	c := New(cfg)
	field := threeWells()

	forces := c.Forces(field)
	for _, i := range []int{0, c.Len() - 1} {
		f := forces[i]
		if f.Spring != (geom.Vec2{}) {
			t.Errorf("endpoint %d got spring force %v", i, f.Spring)
		}
		if along := f.Total().Dot(f.Tangent); math.Abs(along) > 1e-12 {
			t.Errorf("endpoint %d moves along the tangent by %g", i, along)
		}
	}

	before := c.Points()
	c.Iterate(field)
	if c.At(0) == before[0] {
		t.Error("free start point did not move")
	}
}

func TestIterate_CoincidentPointsStayFinite(t *testing.T) {
	cfg := baseConfig()
	cfg.End = cfg.Start
	cfg.PinEnds = false
	cfg.SpringConstant = 1
	c := New(cfg)

	c.Iterate(threeWells())

	if !c.IsValid() {
		t.Errorf("degenerate chain produced non-finite points: %v", c.Points())
	}
}

func TestChainConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*ChainConfig)
		ok   bool
	}{
		{"valid", func(*ChainConfig) {}, true},
		{"two elements", func(c *ChainConfig) { c.Elements = 2 }, true},
		{"one element", func(c *ChainConfig) { c.Elements = 1 }, false},
		{"negative spring", func(c *ChainConfig) { c.SpringConstant = -1 }, false},
		{"nan start", func(c *ChainConfig) { c.Start.X = math.NaN() }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mod(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
