package config

import "sort"

var Presets = map[string]*Config{
	"single": {
		Model: "chain", Links: 1,
		Sweep: SweepConfig{From: DefaultSweepFrom, To: DefaultSweepTo, Steps: DefaultSweepSteps},
	},
	"double": {
		Model: "chain", Links: 2,
		InitAngles: []float64{0.5, -0.25},
		Sweep:      SweepConfig{From: DefaultSweepFrom, To: DefaultSweepTo, Steps: DefaultSweepSteps},
	},
	"triple": {
		Model: "chain", Links: 3,
		Lengths: []float64{1.0, 0.8, 0.6},
		Masses:  []float64{2.0, 1.0, 0.5},
		Sweep:   SweepConfig{From: DefaultSweepFrom, To: DefaultSweepTo, Steps: DefaultSweepSteps},
	},
	"reach": {
		Model: "chain", Links: 2,
		Lengths:    []float64{1.5, 1.0},
		InitAngles: []float64{1.0, -0.5},
		Sweep:      SweepConfig{From: -1.5, To: 1.5, Steps: 60},
	},
	"register8": {
		Model: "register", States: 8,
		Defaults: []float64{1, 0, 0, 0, 0, 0, 0, 0},
	},
}

func GetPreset(name string) *Config {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
