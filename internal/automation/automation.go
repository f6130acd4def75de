// Package automation runs scripted batches of solves described in YAML.
package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/oscreach/internal/config"
	"github.com/san-kum/oscreach/internal/experiment"
	"github.com/san-kum/oscreach/internal/storage"
)

// Scenario is a named sequence of solves.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (default when empty) and overrides the
// fields that are set.
type ScenarioStep struct {
	Name      string                `yaml:"name"`
	Preset    string                `yaml:"preset"`
	Period    *float64              `yaml:"period"`
	Amplitude *float64              `yaml:"amplitude"`
	Alpha     *float64              `yaml:"alpha"`
	Horizon   *float64              `yaml:"horizon"`
	Model     string                `yaml:"model"`
	MaxOrder  *int                  `yaml:"max_order"`
	Initial   *config.InitialConfig `yaml:"initial"`
	Save      bool                  `yaml:"save"`
}

// StepResult pairs a step with its outcome. RunID is empty for unsaved steps.
type StepResult struct {
	Name   string
	RunID  string
	Result *experiment.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Config resolves the step into a full configuration.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}
	if s.Period != nil {
		cfg.Period = *s.Period
	}
	if s.Amplitude != nil {
		cfg.Amplitude = *s.Amplitude
	}
	if s.Alpha != nil {
		cfg.Alpha = *s.Alpha
	}
	if s.Horizon != nil {
		cfg.Horizon = *s.Horizon
	}
	if s.Model != "" {
		cfg.Model = s.Model
	}
	if s.MaxOrder != nil {
		cfg.MaxOrder = *s.MaxOrder
	}
	if s.Initial != nil {
		cfg.Initial = *s.Initial
	}
	return cfg, cfg.Validate()
}

// RunScenario executes the steps in order and stops at the first failure.
// Steps marked save are persisted to st, which may be nil when none are.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store, log zerolog.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step%d", i+1)
		}
		stepLog := log.With().Str("scenario", scenario.Name).Str("step", name).Logger()
		stepLog.Info().Int("index", i+1).Int("total", len(scenario.Steps)).Msg("running step")

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, name, err)
		}

		res, err := experiment.Run(ctx, cfg, stepLog)
		if err != nil {
			return results, fmt.Errorf("step %d (%s) run: %w", i+1, name, err)
		}

		sr := StepResult{Name: name, Result: res}
		if step.Save {
			if st == nil {
				return results, fmt.Errorf("step %d (%s): no store to save into", i+1, name)
			}
			sr.RunID, err = st.Save(storage.Run{
				Config:   res.Config,
				Omega:    res.Oscillator.AngularFrequency(),
				Flowpipe: res.Flowpipe,
				Analytic: res.Analytic,
				Metrics:  res.Metrics,
			})
			if err != nil {
				return results, fmt.Errorf("step %d (%s) save: %w", i+1, name, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}
