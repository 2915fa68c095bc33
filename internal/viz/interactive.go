package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/mepsim/internal/config"
)

var presetInfo = map[string]string{
	"three_wells": "L-shaped valley through a third well",
	"double_well": "two wells split by a ridge",
	"barrier":     "path bending around a bump",
	"muller_like": "uneven wells, curved valley",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// app picks a preset, lets the user tune it and then hands over to Model.
type app struct {
	state, cursor int
	presets       []string
	selected      string
	cfg           *config.Config
	paramCursor   int
	editing       bool
	editBuf       string
	err           error
	liveModel     Model
}

func newApp() app {
	return app{state: stateMenu, presets: config.ListPresets()}
}

func (m app) Init() tea.Cmd { return nil }

func (m app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		if m.state == stateSim {
			newLive, cmd := m.liveModel.Update(msg)
			m.liveModel = newLive.(Model)
			return m, cmd
		}
	}
	return m, nil
}

func (m app) handleKey(msg tea.KeyMsg) (app, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	return m, nil
}

func (m app) menuKey(msg tea.KeyMsg) (app, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		cfg, err := config.GetPreset(m.presets[m.cursor])
		if err != nil {
			m.err = err
			return m, nil
		}
		m.selected, m.cfg = m.presets[m.cursor], cfg
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m app) configKey(msg tea.KeyMsg) (app, tea.Cmd) {
	name := config.Params[m.paramCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				m.err = m.cfg.SetParam(name, v)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == 'e' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(config.Params)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		v, _ := m.cfg.Param(name)
		m.editing, m.editBuf = true, strconv.FormatFloat(v, 'g', -1, 64)
	case "left", "h":
		m.nudge(name, 0.9)
	case "right", "l":
		m.nudge(name, 1.1)
	case "s":
		live, err := NewModel(m.cfg, m.selected)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.liveModel, m.state = live, stateSim
		return m, live.Init()
	}
	return m, nil
}

// nudge scales a parameter; element counts move by one.
func (m *app) nudge(name string, factor float64) {
	v, err := m.cfg.Param(name)
	if err != nil {
		return
	}
	switch {
	case name == "elements" && factor > 1:
		v++
	case name == "elements":
		v--
	case v == 0 && factor > 1:
		v = 0.1
	default:
		v *= factor
	}
	m.err = m.cfg.SetParam(name, v)
}

func (m app) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

func (m app) viewMenu() string {
	var b strings.Builder
	h := lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true)
	sub := lipgloss.NewStyle().Foreground(CurrentTheme.Muted)
	b.WriteString("\n\n    " + h.Render("MEPSIM") + "\n    " + sub.Render("minimum energy path relaxation") + "\n    " + sub.Render("──────────────────────────────") + "\n\n")

	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n",
				lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Bold(true).Render("▸"),
				lipgloss.NewStyle().Foreground(CurrentTheme.Text).Bold(true).Render(fmt.Sprintf("%-14s", name)),
				lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", sub.Render(fmt.Sprintf("  %-14s", name)), sub.Render(desc)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + StatusStyle("error").Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + KeyHint().Render("j/k navigate  enter select  q quit") + "\n")
	return b.String()
}

func (m app) viewConfig() string {
	var b strings.Builder
	h := lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true)
	sub := lipgloss.NewStyle().Foreground(CurrentTheme.Muted)
	b.WriteString("\n\n    " + h.Render(strings.ToUpper(m.selected)) + "\n    " + sub.Render(presetInfo[m.selected]) + "\n    " + sub.Render("──────────────────────────────") + "\n\n")

	for i, name := range config.Params {
		v, _ := m.cfg.Param(name)
		valStr := fmt.Sprintf("%10.4g", v)
		if m.editing && i == m.paramCursor {
			valStr = fmt.Sprintf("%10s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n",
				lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Bold(true).Render("▸"),
				lipgloss.NewStyle().Foreground(CurrentTheme.Text).Bold(true).Render(fmt.Sprintf("%-18s", name)),
				lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", sub.Render(fmt.Sprintf("  %-18s", name)), sub.Render(valStr)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + StatusStyle("error").Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + KeyHint().Render("j/k select  h/l adjust  enter edit  s start  esc back") + "\n")
	return b.String()
}

// RunInteractive opens the preset picker.
func RunInteractive() error {
	_, err := tea.NewProgram(newApp(), tea.WithAltScreen()).Run()
	return err
}
