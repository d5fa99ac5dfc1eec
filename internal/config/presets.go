package config

import "sort"

// Presets bundle stepper settings for common situations. They are
// complete configurations; flags still override them.
var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"fast": {
		Tolerance:   toleranceOf(1e-9),
		InitialDt:   1,
		MaxAttempts: 200,
		Stepper:     "dopri5",
		Precision:   8,
		Workers:     DefaultWorkers,
	},
	"precise": {
		Tolerance:   toleranceOf(1e-14),
		InitialDt:   0.01,
		MaxAttempts: 1000,
		Stepper:     "bulirsch-stoer",
		Precision:   16,
		Workers:     DefaultWorkers,
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
