package config

import "sort"

var Presets = map[string]map[string]*Config{
	"ising": {
		"cold": {
			Label: "Cold", Dynamics: "glauber", Init: "random", Width: 50,
			J: 1, K: 1, T: 1, Measure: true, TEquib: 100, TCorr: 10, Sweeps: 2000,
		},
		"critical": {
			Label: "Critical", Dynamics: "glauber", Init: "random", Width: 50,
			J: 1, K: 1, T: 2.269, Measure: true, TEquib: 200, TCorr: 10, Sweeps: 10000,
		},
		"hot": {
			Label: "Hot", Dynamics: "glauber", Init: "uniform", Width: 50,
			J: 1, K: 1, T: 3.5, Measure: true, TEquib: 100, TCorr: 10, Sweeps: 2000,
		},
		"demix": {
			Label: "Demix", Dynamics: "kawasaki", Init: "random", Width: 50,
			J: 1, K: 1, T: 1, Measure: true, TEquib: 100, TCorr: 10, Sweeps: 5000,
		},
		"interface": {
			Label: "Interface", Dynamics: "kawasaki", Init: "split", Width: 50,
			J: 1, K: 1, T: 1.5, Measure: true, TEquib: 100, TCorr: 10, Sweeps: 5000,
		},
	},
	"sirs": {
		"absorbing": {
			Label: "Absorbing", Dynamics: "sirs", Width: 50, Measure: true,
			TEquib: 150, TCorr: 20, Sweeps: 1000,
			Proportions: []float64{0.5, 0.5, 0, 0}, Probabilities: []float64{0.5, 0.6, 0.1},
		},
		"equilibrium": {
			Label: "Equilibrium", Dynamics: "sirs", Width: 50, Measure: true,
			TEquib: 150, TCorr: 20, Sweeps: 1000,
			Proportions: []float64{0.5, 0.5, 0, 0}, Probabilities: []float64{0.5, 0.5, 0.5},
		},
		"waves": {
			Label: "Waves", Dynamics: "sirs", Width: 50, Measure: true,
			TEquib: 150, TCorr: 20, Sweeps: 1000,
			Proportions: []float64{0.5, 0.5, 0, 0}, Probabilities: []float64{0.8, 0.1, 0.012},
		},
		"herd": {
			Label: "Herd", Dynamics: "sirs", Width: 50, Measure: true,
			TEquib: 150, TCorr: 20, Sweeps: 1000,
			Proportions: []float64{0.35, 0.35, 0, 0.3}, Probabilities: []float64{0.5, 0.5, 0.5},
		},
	},
}

// GetPreset returns a copy of the named preset with the remaining fields
// filled from DefaultConfig, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	p, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	cfg := p.Clone()
	def := DefaultConfig()
	if cfg.KSub == 0 {
		cfg.KSub = def.KSub
	}
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.Init == "" {
		cfg.Init = def.Init
	}
	return cfg
}

// ListPresets returns the preset names for a model in sorted order.
func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Models lists the preset groups.
func Models() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
