package viz

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/san-kum/oscreach/internal/config"
	"github.com/san-kum/oscreach/internal/experiment"
	"github.com/san-kum/oscreach/internal/reach"
)

const (
	liveWidth  = 72
	liveHeight = 14
)

// resultMsg carries a finished solve. seq identifies the request so that
// results for superseded slider positions are dropped.
type resultMsg struct {
	seq int
	res *experiment.Result
	err error
}

// ConfigMsg replaces the explored configuration, e.g. after the config file
// changed on disk. The slider follows the new α.
type ConfigMsg struct {
	Config *config.Config
	Err    error
}

// LiveModel is the interactive step-size explorer: every slider move
// recomputes the flowpipe and redraws it.
type LiveModel struct {
	cfg    config.Config
	slider *Slider
	log    zerolog.Logger

	seq  int
	busy bool
	res  *experiment.Result
	err  error
	dim  int
}

func NewLiveModel(cfg config.Config, log zerolog.Logger) LiveModel {
	s := NewAlphaSlider(cfg.Alpha)
	cfg.Alpha = s.Value()
	return LiveModel{cfg: cfg, slider: s, log: log, seq: 1, busy: true}
}

func (m LiveModel) Init() tea.Cmd {
	return solveCmd(m.seq, m.cfg, m.log)
}

// solve starts a new request and supersedes any in flight.
func (m *LiveModel) solve() tea.Cmd {
	m.seq++
	m.busy = true
	return solveCmd(m.seq, m.cfg, m.log)
}

func solveCmd(seq int, cfg config.Config, log zerolog.Logger) tea.Cmd {
	return func() tea.Msg {
		res, err := experiment.Run(context.Background(), &cfg, log)
		return resultMsg{seq: seq, res: res, err: err}
	}
}

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l":
			if m.slider.Inc() {
				m.cfg.Alpha = m.slider.Value()
				return m, m.solve()
			}
		case "left", "h":
			if m.slider.Dec() {
				m.cfg.Alpha = m.slider.Value()
				return m, m.solve()
			}
		case "m":
			if m.cfg.Model == string(reach.ModelDiscrete) {
				m.cfg.Model = string(reach.ModelForward)
			} else {
				m.cfg.Model = string(reach.ModelDiscrete)
			}
			return m, m.solve()
		case "p":
			m.dim = (m.dim + 1) % 2
		}

	case ConfigMsg:
		if msg.Err != nil {
			m.err = msg.Err
			m.log.Warn().Err(msg.Err).Msg("config reload failed")
			return m, nil
		}
		m.cfg = *msg.Config
		m.slider.SetValue(m.cfg.Alpha)
		m.cfg.Alpha = m.slider.Value()
		m.log.Info().Float64("alpha", m.cfg.Alpha).Float64("period", m.cfg.Period).Msg("config reloaded")
		return m, m.solve()

	case resultMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.busy = false
		m.res, m.err = msg.res, msg.err
		if msg.err != nil {
			m.log.Error().Err(msg.err).Float64("alpha", m.cfg.Alpha).Msg("solve failed")
		}
	}
	return m, nil
}

func (m LiveModel) View() string {
	var b strings.Builder

	b.WriteString(Title.Render("harmonic oscillator reachability"))
	b.WriteString("\n")
	b.WriteString(Subtle.Render(fmt.Sprintf("period %g  horizon %g  model %s  coordinate %s",
		m.cfg.Period, m.cfg.Horizon, m.cfg.Model, coordName(m.dim))))
	b.WriteString("\n\n")
	b.WriteString(m.slider.Render(40))
	b.WriteString("\n\n")

	var graph string
	switch {
	case m.err != nil:
		graph = StatusError.Render("error: " + m.err.Error())
	case m.res == nil:
		graph = StatusBusy.Render("solving...")
	default:
		g, err := TimePlot(FromResult(m.res), m.dim, liveWidth, liveHeight)
		if err != nil {
			graph = StatusError.Render(err.Error())
		} else {
			graph = g
		}
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		Panel.Render(graph),
		Panel.Render(m.metricsView()),
	))
	b.WriteString("\n")
	b.WriteString(KeyHint.Render("←/→ α  m model  p coordinate  q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m LiveModel) metricsView() string {
	rows := []string{}
	switch {
	case m.busy:
		rows = append(rows, StatusBusy.Render("● solving"))
	case m.err != nil:
		rows = append(rows, StatusError.Render("● failed"))
	default:
		rows = append(rows, StatusOK.Render("● ready"))
	}
	rows = append(rows, Metric("step size", fmt.Sprintf("%.5g", m.cfg.StepSize())))
	if m.res != nil {
		rows = append(rows, Metric("elapsed", m.res.Elapsed.Round(time.Microsecond).String()))
		keys := make([]string, 0, len(m.res.Metrics))
		for k := range m.res.Metrics {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			rows = append(rows, Metric(k, fmt.Sprintf("%.6g", m.res.Metrics[k])))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// NewLiveProgram returns the explorer program. Callers may push ConfigMsg
// values into it with Send.
func NewLiveProgram(cfg config.Config, log zerolog.Logger) *tea.Program {
	return tea.NewProgram(NewLiveModel(cfg, log), tea.WithAltScreen())
}
