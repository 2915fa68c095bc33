package viz

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/mepsim/internal/config"
	"github.com/san-kum/mepsim/internal/geom"
	"github.com/san-kum/mepsim/internal/neb"
	"github.com/san-kum/mepsim/internal/pes"
	"github.com/san-kum/mepsim/internal/render"
	"github.com/san-kum/mepsim/internal/sim"
)

const (
	canvasWidth     = 60
	canvasHeight    = 24
	historyCapacity = 600
	contourLevels   = 12
	gifMaxSide      = 320
)

// Snapshot is the chain after one iteration, kept for replay.
type Snapshot struct {
	Points    []geom.Vec2
	Iteration int
	Energy    float64
}

type TickMsg time.Time

// Model relaxes a chain one iteration per tick and draws it over the
// contour lines of its surface.
type Model struct {
	cfg      *config.Config
	name     string
	field    *pes.Field
	chainCfg neb.ChainConfig
	stepper  *sim.Stepper
	chain    *neb.Chain

	view    Viewport
	canvas  *Canvas
	contour [][2]int

	running      bool
	stepsPerTick int
	last         sim.Iteration
	status       sim.Status
	energies     []float64
	history      []Snapshot
	playHead     int

	recording bool
	recorder  *render.GIFRecorder
	renderer  *render.Renderer
	saved     string

	showHelp bool
	frame    int
	err      error
}

// NewModel builds the field and chain of cfg, relaxing the anchors when
// the config asks for it.
func NewModel(cfg *config.Config, name string) (Model, error) {
	if err := cfg.Validate(); err != nil {
		return Model{}, err
	}

	field := cfg.Field()
	chainCfg, err := cfg.Path.WithRelaxedEnds(field, cfg.ConvergenceLimit, cfg.RelaxMaxIterations)
	if err != nil {
		if !errors.Is(err, neb.ErrNotConverged) {
			return Model{}, err
		}
		sim.Logger().Warn("endpoint relaxation did not converge", "error", err)
	}

	m := Model{
		cfg:          cfg,
		name:         name,
		field:        field,
		chainCfg:     chainCfg,
		view:         Viewport{X0: cfg.Image.X0, Y0: cfg.Image.Y0, Width: cfg.Image.Width, Height: cfg.Image.Height},
		canvas:       NewCanvas(canvasWidth, canvasHeight),
		running:      true,
		stepsPerTick: 1,
		playHead:     -1,
	}
	m.contour = contourDots(field, m.view, m.canvas, contourLevels)
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// contourDots returns the dots where the quantised energy changes between
// horizontal or vertical neighbours.
func contourDots(s neb.Surface, v Viewport, c *Canvas, levels int) [][2]int {
	cw, ch := c.Size()
	energies := make([]float64, cw*ch)
	lo, hi := math.Inf(1), math.Inf(-1)
	for y := 0; y < ch; y++ {
		for x := 0; x < cw; x++ {
			e := s.EnergyAt(v.Unproject(x, y, c))
			energies[y*cw+x] = e
			lo, hi = math.Min(lo, e), math.Max(hi, e)
		}
	}
	if hi <= lo {
		return nil
	}

	band := func(x, y int) int {
		return int((energies[y*cw+x] - lo) / (hi - lo) * float64(levels))
	}
	var dots [][2]int
	for y := 0; y < ch; y++ {
		for x := 0; x < cw; x++ {
			b := band(x, y)
			if (x+1 < cw && band(x+1, y) != b) || (y+1 < ch && band(x, y+1) != b) {
				dots = append(dots, [2]int{x, y})
			}
		}
	}
	return dots
}

func (m *Model) reset() error {
	m.chain = neb.New(m.chainCfg)
	st, err := sim.NewStepper(m.field, m.chain, m.cfg.SimConfig())
	if err != nil {
		return err
	}
	m.stepper = st
	m.last = st.Current()
	m.status = sim.StatusRunning
	m.energies = []float64{m.last.Energy}
	m.history = []Snapshot{{Points: m.chain.Points(), Energy: m.last.Energy}}
	m.playHead = -1
	m.err = nil
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "n":
			m.step()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "+", "=":
			m.stepsPerTick = min(m.stepsPerTick*2, 256)
		case "-", "_":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		case "g":
			m.toggleRecording()
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		m.frame++
		if m.running {
			if m.playHead == -1 {
				for i := 0; i < m.stepsPerTick && m.status == sim.StatusRunning; i++ {
					m.step()
				}
			} else {
				m.scrub(1)
			}
		}
		return m, tick()
	}
	return m, nil
}

// step runs one iteration and records it.
func (m *Model) step() {
	if m.status != sim.StatusRunning {
		return
	}
	it, status, err := m.stepper.Step()
	m.status = status
	if err != nil {
		m.err = err
		return
	}
	if status == sim.StatusMaxIterations {
		return
	}

	m.last = it
	m.energies = append(m.energies, it.Energy)
	if len(m.energies) > historyCapacity {
		m.energies = m.energies[1:]
	}
	m.history = append(m.history, Snapshot{Points: m.chain.Points(), Iteration: it.Index, Energy: it.Energy})
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
	if m.recording {
		m.recorder.Add(m.renderer.Paint(m.chain.Points(), m.field, fmt.Sprintf("iter %d", it.Index)))
	}
}

// scrub moves the replay position; running off the end returns to live.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if dir > 0 || len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

func (m *Model) toggleRecording() {
	if m.recording {
		m.recording = false
		path := fmt.Sprintf("mep_%s_%d.gif", m.name, time.Now().Unix())
		if err := m.recorder.Save(path); err != nil {
			m.err = err
		} else {
			m.saved = path
		}
		m.recorder = nil
		return
	}

	if m.renderer == nil {
		img := m.cfg.Image
		scale := float64(gifMaxSide) / float64(max(img.ResolutionX, img.ResolutionY))
		if scale < 1 {
			img.ResolutionX = max(int(float64(img.ResolutionX)*scale), 1)
			img.ResolutionY = max(int(float64(img.ResolutionY)*scale), 1)
		}
		r, err := render.NewRenderer(img, m.field)
		if err != nil {
			m.err = err
			return
		}
		m.renderer = r
	}
	m.recorder = render.NewGIFRecorder(gifMaxSide)
	m.recording = true
}

func (m Model) current() Snapshot {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[m.playHead]
	}
	return Snapshot{Points: m.chain.Points(), Iteration: m.last.Index, Energy: m.last.Energy}
}

func (m *Model) draw(snap Snapshot) {
	m.canvas.Clear()
	for _, d := range m.contour {
		if (d[0]+d[1])%2 == 0 {
			m.canvas.Set(d[0], d[1])
		}
	}

	prevX, prevY := 0, 0
	for i, p := range snap.Points {
		x, y := m.view.Project(p, m.canvas)
		if i > 0 {
			m.canvas.DrawLine(prevX, prevY, x, y)
		}
		m.canvas.DrawDot(x, y, 1)
		prevX, prevY = x, y
	}
}

func (m Model) statusWord() string {
	switch {
	case m.err != nil:
		return "error"
	case m.playHead != -1:
		return "replay"
	case m.status != sim.StatusRunning:
		return m.status.String()
	case m.recording:
		return "recording"
	case !m.running:
		return "paused"
	}
	return "running"
}

func (m Model) View() string {
	snap := m.current()
	m.draw(snap)

	canvasView := lipgloss.NewStyle().
		Foreground(CurrentTheme.Chain).
		Padding(1, 2).
		Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(HeaderStyle().Render(GradientText(strings.ToUpper(m.name), CurrentTheme.Primary, CurrentTheme.Accent)) + "\n")

	word := m.statusWord()
	spin := " "
	if word == "running" || word == "recording" {
		spin = AnimatedSpinner(m.frame)
	}
	s.WriteString(spin + " " + StatusStyle(word).Render(strings.ToUpper(word)) + "\n\n")

	if len(m.energies) > 1 {
		chart := asciigraph.Plot(m.energies, asciigraph.Height(5), asciigraph.Width(32), asciigraph.Caption("Energy"))
		s.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(LabelStyle().Render(label) + ValueStyle().Render(value) + "\n")
	}
	row("Iteration", fmt.Sprintf("%d", snap.Iteration))
	row("Energy", fmt.Sprintf("%.10f", snap.Energy))
	if m.playHead == -1 && m.last.Index > 0 {
		row("Delta", fmt.Sprintf("%.3e", m.last.PrevEnergy-m.last.Energy))
		row("Step time", m.last.Elapsed.Round(time.Microsecond).String())
	}
	row("Points", fmt.Sprintf("%d", len(snap.Points)))
	row("Speed", fmt.Sprintf("%d/tick", m.stepsPerTick))
	if budget := m.cfg.MaxIterations; budget > 0 {
		row("Budget", ProgressBar(float64(m.last.Index)/float64(budget), 16))
	}
	if len(m.energies) > 2 {
		deltas := make([]float64, 0, len(m.energies)-1)
		for i := 1; i < len(m.energies); i++ {
			deltas = append(deltas, math.Log10(math.Abs(m.energies[i-1]-m.energies[i])+1e-300))
		}
		row("log|ΔE|", SparklineChart(deltas, 20))
	}
	if m.saved != "" {
		row("Saved", m.saved)
	}
	if m.err != nil {
		s.WriteString("\n" + StatusStyle("error").Render(m.err.Error()) + "\n")
	}

	s.WriteString("\n" + Separator(30) + "\n")
	s.WriteString(KeyHint().Render("SP:Pause N:Step R:Reset Q:Quit\n+/-:Speed [ ]:Replay G:GIF\nT:Theme ?:Help"))

	stats := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(CurrentTheme.Muted).
		Padding(1, 2).
		Width(46).
		Render(s.String())

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, stats)
	if m.showHelp {
		help := BoxWithTitle("Keys", strings.Join([]string{
			"Space  pause / resume",
			"N      single iteration",
			"R      rebuild the chain",
			"+ / -  iterations per tick",
			"[ / ]  step through history",
			"G      start / stop GIF recording",
			"T      next theme",
			"Q      quit",
		}, "\n"), 36)
		return help + "\n\n" + mainView
	}
	return mainView
}

// RunLive opens the live view for cfg.
func RunLive(cfg *config.Config, name string) error {
	m, err := NewModel(cfg, name)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
