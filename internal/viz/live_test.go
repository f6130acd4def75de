package viz

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/san-kum/oscreach/internal/config"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLiveModel_SliderResolves(t *testing.T) {
	m := NewLiveModel(*config.DefaultConfig(), zerolog.Nop())
	if m.cfg.Alpha != m.slider.Value() {
		t.Fatalf("config α %v not snapped to slider %v", m.cfg.Alpha, m.slider.Value())
	}
	start := m.cfg.Alpha

	next, cmd := m.Update(key("right"))
	lm := next.(LiveModel)
	if cmd == nil {
		t.Fatal("moving the slider should start a solve")
	}
	if lm.cfg.Alpha <= start || lm.seq != 2 || !lm.busy {
		t.Errorf("after right: α=%v seq=%d busy=%v", lm.cfg.Alpha, lm.seq, lm.busy)
	}

	next, _ = lm.Update(key("left"))
	lm = next.(LiveModel)
	if lm.cfg.Alpha != start {
		t.Errorf("after left: α=%v, want %v", lm.cfg.Alpha, start)
	}
}

func TestLiveModel_DropsStaleResults(t *testing.T) {
	m := NewLiveModel(*config.DefaultConfig(), zerolog.Nop())
	next, _ := m.Update(key("l"))
	lm := next.(LiveModel)

	next, _ = lm.Update(resultMsg{seq: 1, err: errors.New("stale")})
	lm = next.(LiveModel)
	if lm.err != nil || !lm.busy {
		t.Error("result for a superseded request was applied")
	}

	next, _ = lm.Update(resultMsg{seq: lm.seq, err: errors.New("boom")})
	lm = next.(LiveModel)
	if lm.err == nil || lm.busy {
		t.Error("current result was not applied")
	}
}

func TestLiveModel_ToggleModelAndCoordinate(t *testing.T) {
	m := NewLiveModel(*config.DefaultConfig(), zerolog.Nop())

	next, cmd := m.Update(key("m"))
	lm := next.(LiveModel)
	if lm.cfg.Model != "discrete" || cmd == nil {
		t.Errorf("m should switch to discrete and re-solve, got %q", lm.cfg.Model)
	}
	next, _ = lm.Update(key("m"))
	if next.(LiveModel).cfg.Model != "forward" {
		t.Error("m should switch back to forward")
	}

	next, _ = lm.Update(key("p"))
	if next.(LiveModel).dim != 1 {
		t.Error("p should switch to velocity")
	}
}

func TestLiveModel_Quit(t *testing.T) {
	m := NewLiveModel(*config.DefaultConfig(), zerolog.Nop())
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestLiveModel_View(t *testing.T) {
	m := NewLiveModel(*config.DefaultConfig(), zerolog.Nop())
	if m.View() == "" {
		t.Error("empty view while solving")
	}
	msg := m.Init()()
	next, _ := m.Update(msg)
	if v := next.(LiveModel).View(); v == "" {
		t.Error("empty view after result")
	}
}

func TestLiveModel_ConfigReload(t *testing.T) {
	m := NewLiveModel(*config.DefaultConfig(), zerolog.Nop())

	cfg := config.DefaultConfig()
	cfg.Period = 2
	cfg.Alpha = 0.05
	next, cmd := m.Update(ConfigMsg{Config: cfg})
	lm := next.(LiveModel)
	if cmd == nil || lm.seq != 2 {
		t.Error("a new config should trigger a solve")
	}
	if lm.cfg.Period != 2 || lm.cfg.Alpha != lm.slider.Value() {
		t.Errorf("config not applied: period=%v α=%v slider=%v", lm.cfg.Period, lm.cfg.Alpha, lm.slider.Value())
	}

	next, cmd = lm.Update(ConfigMsg{Err: errors.New("bad yaml")})
	lm = next.(LiveModel)
	if cmd != nil || lm.err == nil || lm.cfg.Period != 2 {
		t.Error("a failed reload should keep the previous config and show the error")
	}
}
