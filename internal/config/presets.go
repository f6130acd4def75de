package config

import "sort"

var Presets = map[string]*Config{
	"default": {
		Period: 0.5, Amplitude: 1.0, Alpha: 0.01, Horizon: 1.0, Model: "forward",
	},
	"slow": {
		Period: 2.0, Amplitude: 1.0, Alpha: 0.01, Horizon: 4.0, Model: "forward",
	},
	"coarse": {
		Period: 0.5, Amplitude: 1.0, Alpha: 0.1, Horizon: 1.0, Model: "forward",
	},
	"region": {
		Period: 0.5, Amplitude: 1.0, Alpha: 0.01, Horizon: 1.0, Model: "forward",
		Initial: InitialConfig{RadiusPos: 0.1, RadiusVel: 0.5},
	},
	"kicked": {
		Period: 0.5, Amplitude: 1.0, Alpha: 0.01, Horizon: 1.0, Model: "forward",
		Initial: InitialConfig{Pos: ptr(0), Vel: 12.566370614359172},
	},
	"sampled": {
		Period: 0.5, Amplitude: 1.0, Alpha: 0.01, Horizon: 1.0, Model: "discrete",
	},
}

// GetPreset returns a copy of the named preset with unset fields defaulted.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	if cfg.Initial.Pos != nil {
		cfg.Initial.Pos = ptr(*cfg.Initial.Pos)
	}
	if cfg.MaxOrder == 0 {
		cfg.MaxOrder = DefaultConfig().MaxOrder
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
