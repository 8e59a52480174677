package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/spinlattice/internal/dynamo"
	"github.com/san-kum/spinlattice/internal/sim"
)

const (
	DefaultWidth   = 50
	DefaultJ       = 1.0
	DefaultK       = 1.0
	DefaultT       = 1.0
	DefaultTEquib  = 100
	DefaultTCorr   = 10
	DefaultSweeps  = 10000
	DefaultKSub    = 100
	DefaultLabel   = "Run"
	DefaultDataDir = "Data"
)

type Config struct {
	Label         string    `yaml:"label"`
	Dynamics      string    `yaml:"dynamics"`
	Init          string    `yaml:"init"`
	Width         int       `yaml:"width"`
	Height        int       `yaml:"height"`
	J             float64   `yaml:"J"`
	K             float64   `yaml:"k"`
	T             float64   `yaml:"T"`
	Measure       bool      `yaml:"measure"`
	TEquib        int       `yaml:"t_equib"`
	TCorr         int       `yaml:"t_corr"`
	Sweeps        int       `yaml:"sweeps"`
	Seed          int64     `yaml:"seed"`
	Proportions   []float64 `yaml:"proportions,omitempty"`
	Probabilities []float64 `yaml:"probabilities,omitempty"`
	KSub          int       `yaml:"k_sub"`
	DataDir       string    `yaml:"data_dir"`
	// Grid, when set, is the initial lattice; its shape overrides width
	// and height.
	Grid          [][]int   `yaml:"grid,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Label:         DefaultLabel,
		Dynamics:      "glauber",
		Init:          "random",
		Width:         DefaultWidth,
		J:             DefaultJ,
		K:             DefaultK,
		T:             DefaultT,
		Measure:       true,
		TEquib:        DefaultTEquib,
		TCorr:         DefaultTCorr,
		Sweeps:        DefaultSweeps,
		Proportions:   []float64{0.5, 0.5, 0, 0},
		Probabilities: []float64{1.0 / 3, 1.0 / 3, 1.0 / 3},
		KSub:          DefaultKSub,
		DataDir:       DefaultDataDir,
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto overlays the fields present in the file at path onto cfg.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Proportions = append([]float64(nil), c.Proportions...)
	out.Probabilities = append([]float64(nil), c.Probabilities...)
	if c.Grid != nil {
		out.Grid = make([][]int, len(c.Grid))
		for i, row := range c.Grid {
			out.Grid[i] = append([]int(nil), row...)
		}
	}
	return &out
}

// Dims returns the lattice dimensions. A non-positive height means square.
func (c *Config) Dims() (int, int) {
	if len(c.Grid) > 0 {
		return len(c.Grid), len(c.Grid[0])
	}
	if c.Height <= 0 {
		return c.Width, c.Width
	}
	return c.Width, c.Height
}

// Params maps the constants onto the simulation parameters. Missing
// probabilities stay zero.
func (c *Config) Params() sim.Params {
	p := sim.Params{J: c.J, K: c.K, T: c.T}
	probs := []*float64{&p.P1, &p.P2, &p.P3}
	for i, v := range c.Probabilities {
		if i < len(probs) {
			*probs[i] = v
		}
	}
	return p
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{Measure: c.Measure, TEquib: c.TEquib, TCorr: c.TCorr}
}

// Validate checks the values that do not depend on the chosen dynamics.
func (c *Config) Validate() error {
	w, h := c.Dims()
	switch {
	case w < 1:
		return dynamo.ConfigErrorf("width", c.Width, "must be at least 1")
	case h < 1:
		return dynamo.ConfigErrorf("height", c.Height, "must be at least 1")
	case c.TEquib < 0:
		return dynamo.ConfigErrorf("t_equib", c.TEquib, "must not be negative")
	case c.TCorr < 1:
		return dynamo.ConfigErrorf("t_corr", c.TCorr, "must be at least 1")
	case c.Sweeps < 0:
		return dynamo.ConfigErrorf("sweeps", c.Sweeps, "must not be negative")
	case c.KSub < 0:
		return dynamo.ConfigErrorf("k_sub", c.KSub, "must not be negative")
	}
	if len(c.Probabilities) > 3 {
		return dynamo.ConfigErrorf("probabilities", c.Probabilities, "expected at most 3 values")
	}
	if len(c.Proportions) > 4 {
		return dynamo.ConfigErrorf("proportions", c.Proportions, "expected at most 4 values")
	}
	return nil
}
