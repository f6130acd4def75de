package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/oscreach/internal/dynamo"
	"github.com/san-kum/oscreach/internal/reach"
)

const (
	DefaultPeriod    = 0.5
	DefaultAmplitude = 1.0
	DefaultAlpha     = 0.01
	DefaultHorizon   = 1.0
	DefaultModel     = "forward"
	DefaultLogLevel  = "info"

	// Bounds of the step-size factor α; the solver step is α × period.
	AlphaMin  = 0.001
	AlphaMax  = 0.1
	AlphaStep = 0.01
)

// Config is read from YAML, or TOML when the file name ends in .toml.
type Config struct {
	Period    float64       `yaml:"period" toml:"period"`
	Amplitude float64       `yaml:"amplitude" toml:"amplitude"`
	Initial   InitialConfig `yaml:"initial" toml:"initial"`
	Alpha     float64       `yaml:"alpha" toml:"alpha"`
	Horizon   float64       `yaml:"horizon" toml:"horizon"`
	Model     string        `yaml:"model" toml:"model"`
	MaxOrder  int           `yaml:"max_order" toml:"max_order"`
	LogLevel  string        `yaml:"log_level" toml:"log_level"`
}

// InitialConfig describes the initial set. Pos defaults to the amplitude;
// non-zero radii turn the point into a box.
type InitialConfig struct {
	Pos       *float64 `yaml:"pos,omitempty" toml:"pos,omitempty"`
	Vel       float64  `yaml:"vel" toml:"vel"`
	RadiusPos float64  `yaml:"radius_pos" toml:"radius_pos"`
	RadiusVel float64  `yaml:"radius_vel" toml:"radius_vel"`
}

func DefaultConfig() *Config {
	return &Config{
		Period:    DefaultPeriod,
		Amplitude: DefaultAmplitude,
		Alpha:     DefaultAlpha,
		Horizon:   DefaultHorizon,
		Model:     DefaultModel,
		MaxOrder:  reach.DefaultMaxOrder,
		LogLevel:  DefaultLogLevel,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// InitialPoint returns the center of the initial set.
func (c *Config) InitialPoint() (pos, vel float64) {
	pos = c.Amplitude
	if c.Initial.Pos != nil {
		pos = *c.Initial.Pos
	}
	return pos, c.Initial.Vel
}

// IsRegion reports whether the initial set has non-zero extent.
func (c *Config) IsRegion() bool {
	return c.Initial.RadiusPos > 0 || c.Initial.RadiusVel > 0
}

// StepSize is the solver step α × period.
func (c *Config) StepSize() float64 {
	return c.Alpha * c.Period
}

func (c *Config) Validate() error {
	if !(c.Period > 0) || math.IsInf(c.Period, 0) {
		return fmt.Errorf("%w: period must be positive, got %g", dynamo.ErrInvalidParameter, c.Period)
	}
	if c.Alpha < AlphaMin || c.Alpha > AlphaMax || math.IsNaN(c.Alpha) {
		return fmt.Errorf("%w: alpha must be in [%g, %g], got %g", dynamo.ErrInvalidParameter, AlphaMin, AlphaMax, c.Alpha)
	}
	if !(c.Horizon > 0) || math.IsInf(c.Horizon, 0) {
		return fmt.Errorf("%w: horizon must be positive, got %g", dynamo.ErrInvalidParameter, c.Horizon)
	}
	if c.Initial.RadiusPos < 0 || c.Initial.RadiusVel < 0 {
		return fmt.Errorf("%w: initial radii must be non-negative", dynamo.ErrInvalidParameter)
	}
	if c.MaxOrder < 0 {
		return fmt.Errorf("%w: max_order must be non-negative, got %d", dynamo.ErrInvalidParameter, c.MaxOrder)
	}
	if _, err := reach.ParseModel(c.Model); err != nil {
		return err
	}
	return nil
}

// ClampAlpha snaps a to the slider range.
func ClampAlpha(a float64) float64 {
	return math.Max(AlphaMin, math.Min(AlphaMax, a))
}

func ptr(v float64) *float64 { return &v }
