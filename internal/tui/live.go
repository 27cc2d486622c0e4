// Package tui renders a live view of a hosted model: a ticker sweeps the
// first configuration coordinate while kinematics are read through the
// cache, so the recompute counters on screen show the memoization at work.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/kinhost/internal/config"
	"github.com/san-kum/kinhost/internal/host"
	"github.com/san-kum/kinhost/internal/scalar"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 2)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	countStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model drives the sweep and holds the render state.
type Model struct {
	h       *host.Host[scalar.Real]
	ctx     *host.Context[scalar.Real]
	name    string
	sweep   config.SweepConfig
	step    int
	running bool
	err     error
}

func NewModel(h *host.Host[scalar.Real], name string, sweep config.SweepConfig) (Model, error) {
	ctx, err := h.CreateContext()
	if err != nil {
		return Model{}, err
	}
	if err := h.SetDefaultState(ctx); err != nil {
		return Model{}, err
	}
	if sweep.Steps <= 0 {
		sweep.Steps = config.DefaultSweepSteps
	}
	return Model{h: h, ctx: ctx, name: name, sweep: sweep, running: true}, nil
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
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
			m.step = 0
			if err := m.h.SetDefaultState(m.ctx); err != nil {
				m.err = err
				return m, tea.Quit
			}
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

// advance writes the next sweep value into the first state coordinate.
func (m *Model) advance() {
	m.step = (m.step + 1) % (m.sweep.Steps + 1)
	span := m.sweep.To - m.sweep.From
	q := m.sweep.From + span*float64(m.step)/float64(m.sweep.Steps)

	var err error
	if m.h.IsDiscrete() {
		err = m.ctx.SetRaw(0, scalar.Real(q))
	} else {
		err = m.ctx.SetPosition(0, scalar.Real(q))
	}
	if err != nil {
		m.err = err
	}
}

func (m Model) View() string {
	if m.err != nil {
		return "error: " + m.err.Error() + "\n"
	}

	pos, err := m.h.EvalPositionKinematics(m.ctx)
	if err != nil {
		return "error: " + err.Error() + "\n"
	}
	if _, err := m.h.EvalVelocityKinematics(m.ctx); err != nil {
		return "error: " + err.Error() + "\n"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("kinhost live  %s", m.name)))
	b.WriteString("\n")

	var state strings.Builder
	layout := m.ctx.Layout()
	state.WriteString(labelStyle.Render("layout") +
		valueStyle.Render(fmt.Sprintf("size=%d discrete=%v", layout.Size(), layout.Discrete())) + "\n")
	state.WriteString(labelStyle.Render("state") + valueStyle.Render(formatVec(scalar.Floats(m.ctx.State()))) + "\n")
	if pos.Frames() > 0 {
		tip := pos.Frames() - 1
		state.WriteString(labelStyle.Render("tip pose") +
			valueStyle.Render(fmt.Sprintf("x=%+.3f y=%+.3f heading=%+.3f",
				pos.X[tip].Float(), pos.Y[tip].Float(), pos.Heading[tip].Float())))
	} else {
		state.WriteString(labelStyle.Render("tip pose") + valueStyle.Render("(no frames)"))
	}
	b.WriteString(panelStyle.Render(state.String()))
	b.WriteString("\n")

	var counts strings.Builder
	for i, name := range m.h.CacheEntries() {
		if i > 0 {
			counts.WriteString("\n")
		}
		counts.WriteString(labelStyle.Render(name) +
			countStyle.Render(fmt.Sprintf("%d recomputes", m.ctx.Recomputes(name))))
	}
	b.WriteString(panelStyle.Render(counts.String()))
	b.WriteString("\n")

	if !m.running {
		b.WriteString(pausedStyle.Render("paused"))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("space pause · r reset · q quit"))
	b.WriteString("\n")
	return b.String()
}

func formatVec(xs []float64) string {
	parts := make([]string, 0, len(xs))
	for i, x := range xs {
		if i >= 6 {
			parts = append(parts, "…")
			break
		}
		parts = append(parts, fmt.Sprintf("%+.2f", x))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Run starts the live view and blocks until the user quits.
func Run(h *host.Host[scalar.Real], name string, sweep config.SweepConfig) error {
	m, err := NewModel(h, name, sweep)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m)
	_, err = p.Run()
	return err
}
