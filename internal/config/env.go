package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envOverrides holds raw values read from SPINLATTICE_* variables. Unset
// pointer fields leave the config untouched.
type envOverrides struct {
	DataDir  string   `env:"SPINLATTICE_DATA_DIR"`
	Dynamics string   `env:"SPINLATTICE_DYNAMICS"`
	Label    string   `env:"SPINLATTICE_LABEL"`
	Seed     *int64   `env:"SPINLATTICE_SEED"`
	Width    *int     `env:"SPINLATTICE_WIDTH"`
	Sweeps   *int     `env:"SPINLATTICE_SWEEPS"`
	T        *float64 `env:"SPINLATTICE_T"`
	KSub     *int     `env:"SPINLATTICE_K_SUB"`
}

// ApplyEnv overlays environment overrides onto cfg.
func ApplyEnv(cfg *Config) error {
	var raw envOverrides
	if err := env.Parse(&raw); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if raw.DataDir != "" {
		cfg.DataDir = raw.DataDir
	}
	if raw.Dynamics != "" {
		cfg.Dynamics = raw.Dynamics
	}
	if raw.Label != "" {
		cfg.Label = raw.Label
	}
	if raw.Seed != nil {
		cfg.Seed = *raw.Seed
	}
	if raw.Width != nil {
		cfg.Width = *raw.Width
	}
	if raw.Sweeps != nil {
		cfg.Sweeps = *raw.Sweeps
	}
	if raw.T != nil {
		cfg.T = *raw.T
	}
	if raw.KSub != nil {
		cfg.KSub = *raw.KSub
	}
	return nil
}
