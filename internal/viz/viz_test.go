package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/mepsim/internal/config"
	"github.com/san-kum/mepsim/internal/geom"
	"github.com/san-kum/mepsim/internal/sim"
)

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestCanvasSetAndClear(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(100, 0)

	if !c.IsSet(0, 0) || !c.IsSet(3, 3) {
		t.Error("expected dots to be set")
	}
	if c.Grid[0][0] != rune(brailleBlank|0x1) {
		t.Errorf("unexpected cell %U", c.Grid[0][0])
	}

	c.Clear()
	if c.IsSet(0, 0) || strings.Trim(c.String(), string(rune(brailleBlank))+"\n") != "" {
		t.Error("expected blank canvas after Clear")
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(5, 2)
	c.DrawLine(0, 0, 9, 7)
	if !c.IsSet(0, 0) || !c.IsSet(9, 7) {
		t.Error("line should include both ends")
	}
}

func TestViewportRoundTrip(t *testing.T) {
	c := NewCanvas(10, 5)
	v := Viewport{X0: -2, Y0: -2, Width: 10, Height: 10}

	for _, dot := range [][2]int{{0, 0}, {19, 19}, {7, 12}} {
		x, y := v.Project(v.Unproject(dot[0], dot[1], c), c)
		if x != dot[0] || y != dot[1] {
			t.Errorf("round trip of %v gave (%d, %d)", dot, x, y)
		}
	}

	if x, y := v.Project(geom.V(-2, -2), c); x != 0 || y != 19 {
		t.Errorf("bottom-left corner mapped to (%d, %d)", x, y)
	}
}

func TestNextTheme(t *testing.T) {
	defer SetTheme(ThemeCyberpunk.Name)

	SetTheme(ThemeCyberpunk.Name)
	seen := map[string]bool{}
	for range Themes {
		seen[CurrentTheme.Name] = true
		NextTheme()
	}
	if len(seen) != len(Themes) || CurrentTheme.Name != ThemeCyberpunk.Name {
		t.Errorf("expected to cycle through every theme, saw %v", seen)
	}
	if GetTheme("nope").Name != ThemeCyberpunk.Name {
		t.Error("unknown theme should fall back to the default")
	}
}

func TestSparklineAndProgress(t *testing.T) {
	if got := SparklineChart(nil, 5); got != "─────" {
		t.Errorf("unexpected empty sparkline %q", got)
	}
	if !strings.Contains(SparklineChart([]float64{1, 2, 3}, 10), "█") {
		t.Error("expected a full block for the maximum")
	}
	if !strings.Contains(ProgressBar(2, 4), "████") {
		t.Error("progress above 1 should fill the bar")
	}
}

func TestModelSteps(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MaxIterations = 3

	m, err := NewModel(cfg, "three_wells")
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	if len(m.contour) == 0 {
		t.Error("expected contour dots")
	}

	for i := 0; i < 5; i++ {
		next, _ := m.Update(key('n'))
		m = next.(Model)
	}
	if m.last.Index != 3 {
		t.Errorf("expected to stop at 3 iterations, got %d", m.last.Index)
	}
	if m.status != sim.StatusMaxIterations {
		t.Errorf("expected max iterations status, got %v", m.status)
	}
	if len(m.history) != 4 {
		t.Errorf("expected 4 snapshots, got %d", len(m.history))
	}

	view := m.View()
	if !strings.Contains(view, "MAX_ITERATIONS") {
		t.Error("status missing from view")
	}

	next, _ := m.Update(key('['))
	m = next.(Model)
	if m.playHead != 2 || m.current().Iteration != 2 {
		t.Errorf("expected replay at iteration 2, got head %d", m.playHead)
	}

	next, _ = m.Update(key('r'))
	m = next.(Model)
	if m.last.Index != 0 || m.status != sim.StatusRunning || m.playHead != -1 {
		t.Error("reset should rebuild the chain")
	}
}

func TestModelRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Path.Elements = 0
	if _, err := NewModel(cfg, "bad"); err == nil {
		t.Error("expected error")
	}
}

func TestAppFlow(t *testing.T) {
	m := newApp()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(app)
	if m.state != stateConfig || m.cfg == nil {
		t.Fatalf("expected config screen, got state %d", m.state)
	}

	before, _ := m.cfg.Param(config.Params[0])
	next, _ = m.Update(key('l'))
	m = next.(app)
	after, _ := m.cfg.Param(config.Params[0])
	if after == before {
		t.Error("adjusting should change the parameter")
	}

	next, _ = m.Update(key('s'))
	m = next.(app)
	if m.state != stateSim {
		t.Errorf("expected live view, got state %d (%v)", m.state, m.err)
	}
}
