package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/oscreach/internal/config"
)

// Slider is a bounded real-valued control moved in fixed steps from Min.
// Positions are Min + k·Step; the last position is the largest one <= Max.
type Slider struct {
	Min, Max, Step float64
	pos            int
}

// NewAlphaSlider returns the step-size factor slider positioned at the
// closest position to value.
func NewAlphaSlider(value float64) *Slider {
	s := &Slider{Min: config.AlphaMin, Max: config.AlphaMax, Step: config.AlphaStep}
	s.SetValue(value)
	return s
}

func (s *Slider) positions() int {
	return int(math.Floor((s.Max-s.Min)/s.Step+1e-9)) + 1
}

func (s *Slider) Value() float64 {
	return s.Min + float64(s.pos)*s.Step
}

// SetValue snaps v to the nearest position.
func (s *Slider) SetValue(v float64) {
	p := int(math.Round((v - s.Min) / s.Step))
	s.pos = max(0, min(p, s.positions()-1))
}

// Inc moves one step up and reports whether the value changed.
func (s *Slider) Inc() bool {
	if s.pos+1 >= s.positions() {
		return false
	}
	s.pos++
	return true
}

// Dec moves one step down and reports whether the value changed.
func (s *Slider) Dec() bool {
	if s.pos == 0 {
		return false
	}
	s.pos--
	return true
}

// Render draws the slider as a bar of the given width.
func (s *Slider) Render(width int) string {
	if width < 2 {
		width = 2
	}
	n := s.positions()
	filled := width
	if n > 1 {
		filled = int(math.Round(float64(s.pos) / float64(n-1) * float64(width-1)))
	}
	bar := SliderFill.Render(strings.Repeat("━", filled)+"●") + Subtle.Render(strings.Repeat("─", width-1-filled))
	return fmt.Sprintf("α %s %.3f", bar, s.Value())
}
