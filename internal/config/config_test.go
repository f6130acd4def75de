package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/oscreach/internal/dynamo"
	"github.com/san-kum/oscreach/internal/reach"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Period != 0.5 {
		t.Errorf("expected period 0.5, got %f", cfg.Period)
	}
	if cfg.Amplitude != 1.0 {
		t.Errorf("expected amplitude 1.0, got %f", cfg.Amplitude)
	}
	pos, vel := cfg.InitialPoint()
	if pos != 1.0 || vel != 0.0 {
		t.Errorf("expected initial point (1, 0), got (%f, %f)", pos, vel)
	}
	if cfg.IsRegion() {
		t.Error("default initial set should be a point")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
	if cfg.StepSize() != 0.005 {
		t.Errorf("expected step size 0.005, got %f", cfg.StepSize())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		err    error
	}{
		{"zero period", func(c *Config) { c.Period = 0 }, dynamo.ErrInvalidParameter},
		{"alpha below range", func(c *Config) { c.Alpha = 0.0005 }, dynamo.ErrInvalidParameter},
		{"alpha above range", func(c *Config) { c.Alpha = 0.2 }, dynamo.ErrInvalidParameter},
		{"negative horizon", func(c *Config) { c.Horizon = -1 }, dynamo.ErrInvalidParameter},
		{"negative radius", func(c *Config) { c.Initial.RadiusVel = -1 }, dynamo.ErrInvalidParameter},
		{"unknown model", func(c *Config) { c.Model = "backward" }, reach.ErrUnknownModel},
		{"alpha at lower bound", func(c *Config) { c.Alpha = AlphaMin }, nil},
		{"alpha at upper bound", func(c *Config) { c.Alpha = AlphaMax }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.err == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	for _, name := range []string{"osc.yaml", "osc.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			cfg := DefaultConfig()
			cfg.Period = 2
			cfg.Initial.Pos = ptr(0.25)
			cfg.Initial.RadiusVel = 0.5
			if err := Save(path, cfg); err != nil {
				t.Fatalf("save failed: %v", err)
			}

			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			if loaded.Period != 2 {
				t.Errorf("expected period 2, got %f", loaded.Period)
			}
			pos, _ := loaded.InitialPoint()
			if pos != 0.25 {
				t.Errorf("expected pos 0.25, got %f", pos)
			}
			if !loaded.IsRegion() {
				t.Error("expected a region after round trip")
			}
		})
	}
}

func TestLoad_PartialTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "osc.toml")
	body := "period = 1.5\nmodel = \"discrete\"\n\n[initial]\nvel = 2.0\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Period != 1.5 || cfg.Model != "discrete" || cfg.Initial.Vel != 2 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Alpha != DefaultAlpha || cfg.Horizon != DefaultHorizon {
		t.Errorf("missing keys should keep defaults: α=%v horizon=%v", cfg.Alpha, cfg.Horizon)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("partial config should validate: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("kicked")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	pos, vel := cfg.InitialPoint()
	if pos != 0 || vel == 0 {
		t.Errorf("kicked preset should start at the origin with velocity, got (%f, %f)", pos, vel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("preset should validate: %v", err)
	}

	*cfg.Initial.Pos = 5
	again := GetPreset("kicked")
	if p, _ := again.InitialPoint(); p != 0 {
		t.Error("GetPreset must return an independent copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(names))
	}
	for _, name := range names {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestClampAlpha(t *testing.T) {
	if ClampAlpha(0) != AlphaMin {
		t.Error("expected clamp to AlphaMin")
	}
	if ClampAlpha(1) != AlphaMax {
		t.Error("expected clamp to AlphaMax")
	}
	if ClampAlpha(0.05) != 0.05 {
		t.Error("in-range alpha should be unchanged")
	}
}
