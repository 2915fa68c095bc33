package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/mepsim/internal/geom"
	"github.com/san-kum/mepsim/internal/pes"
)

func barrierField() *pes.Field {
	return pes.New(1, pes.Gaussian{Amplitude: 2, CenterX: 2, SigmaX: 1, CenterY: 0, SigmaY: 1})
}

func line(n int) []geom.Vec2 {
	out := make([]geom.Vec2, n+1)
	for i := range out {
		out[i] = geom.V(4*float64(i)/float64(n), 0)
	}
	return out
}

func TestProfileArcLength(t *testing.T) {
	p := NewProfile(line(4), pes.New(0))

	want := []float64{0, 1, 2, 3, 4}
	for i, a := range p.Arc {
		if math.Abs(a-want[i]) > 1e-12 {
			t.Errorf("arc[%d] = %f, want %f", i, a, want[i])
		}
	}
	if math.Abs(p.Length()-4) > 1e-12 {
		t.Errorf("expected length 4, got %f", p.Length())
	}
}

func TestSaddleFindsMaximum(t *testing.T) {
	field := barrierField()
	p := NewProfile(line(4), field)
	s := p.Saddle()

	if s.Index != 2 {
		t.Fatalf("expected saddle at index 2, got %d", s.Index)
	}
	if s.Point != geom.V(2, 0) {
		t.Errorf("unexpected saddle point %v", s.Point)
	}

	want := field.EnergyAt(geom.V(2, 0)) - field.EnergyAt(geom.V(0, 0))
	if math.Abs(s.Forward-want) > 1e-12 || math.Abs(s.Backward-want) > 1e-12 {
		t.Errorf("expected symmetric barrier %f, got %f / %f", want, s.Forward, s.Backward)
	}
}

func TestSaddleEmpty(t *testing.T) {
	if s := NewProfile(nil, pes.New(0)).Saddle(); s.Index != -1 {
		t.Errorf("expected index -1 on empty profile, got %d", s.Index)
	}
}

func TestMinima(t *testing.T) {
	well := pes.New(1, pes.Gaussian{Amplitude: -1, CenterX: 2, SigmaX: 1, CenterY: 0, SigmaY: 1})
	minima := NewProfile(line(4), well).Minima()
	if len(minima) != 1 || minima[0] != 2 {
		t.Errorf("expected one minimum at 2, got %v", minima)
	}
}

func TestConvergenceRate(t *testing.T) {
	energies := make([]float64, 20)
	e, step := 0.0, 1.0
	for i := range energies {
		energies[i] = e
		e -= step
		step *= 0.5
	}

	rate := ConvergenceRate(energies)
	if math.Abs(rate-0.5) > 1e-9 {
		t.Errorf("expected rate 0.5, got %f", rate)
	}

	if !math.IsNaN(ConvergenceRate([]float64{1, 0})) {
		t.Error("expected NaN for too short a history")
	}
}

func TestProfileToASCII(t *testing.T) {
	out := ProfileToASCII(NewProfile(line(4), barrierField()), 40, 10)

	if strings.Count(out, "\n") != 10 {
		t.Errorf("expected 10 rows, got %d", strings.Count(out, "\n"))
	}
	if !strings.Contains(out, "▲") {
		t.Error("expected saddle marker")
	}
	if ProfileToASCII(nil, 40, 10) != "" {
		t.Error("expected empty output for nil profile")
	}
}

func TestPathToASCII(t *testing.T) {
	out := PathToASCII(line(4), 20, 5)
	if strings.Count(out, "◆") != 2 {
		t.Errorf("expected two anchor markers, got:\n%s", out)
	}
}
