package automation

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/spinlattice/internal/config"
	"github.com/san-kum/spinlattice/internal/experiment"
	"github.com/san-kum/spinlattice/internal/storage"
)

// Scenario defines a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run. Preset ("ising/critical") seeds the config,
// the remaining fields override it.
type ScenarioStep struct {
	Preset      string             `yaml:"preset"`
	Dynamics    string             `yaml:"dynamics"`
	Init        string             `yaml:"init"`
	Width       int                `yaml:"width"`
	Height      int                `yaml:"height"`
	Sweeps      int                `yaml:"sweeps"`
	Seed        *int64             `yaml:"seed"`
	Params      map[string]float64 `yaml:"params"`
	Proportions []float64          `yaml:"proportions"`
	SaveAs      string             `yaml:"save_as"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}

	return &scenario, nil
}

// Config resolves the step against base.
func (s ScenarioStep) Config(base *config.Config) (*config.Config, error) {
	cfg := base.Clone()
	if s.Preset != "" {
		model, name, ok := strings.Cut(s.Preset, "/")
		if !ok {
			return nil, fmt.Errorf("preset %q: want model/name", s.Preset)
		}
		p := config.GetPreset(model, name)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
		p.Seed = cfg.Seed
		p.DataDir = cfg.DataDir
		cfg = p
	}

	if s.Dynamics != "" {
		cfg.Dynamics = s.Dynamics
	}
	if s.Init != "" {
		cfg.Init = s.Init
	}
	if s.Width > 0 {
		cfg.Width = s.Width
	}
	if s.Height > 0 {
		cfg.Height = s.Height
	}
	if s.Sweeps > 0 {
		cfg.Sweeps = s.Sweeps
	}
	if s.Seed != nil {
		cfg.Seed = *s.Seed
	}
	if s.Proportions != nil {
		cfg.Proportions = append([]float64(nil), s.Proportions...)
	}
	for name, v := range s.Params {
		if err := SetParam(cfg, name, v); err != nil {
			return nil, err
		}
	}
	if s.SaveAs != "" {
		cfg.Label = s.SaveAs
	}
	return cfg, nil
}

// SetParam sets a model constant (J, k, T) or transition probability
// (p1, p2, p3) on cfg.
func SetParam(cfg *config.Config, name string, value float64) error {
	switch name {
	case "J":
		cfg.J = value
	case "k":
		cfg.K = value
	case "T":
		cfg.T = value
	case "p1", "p2", "p3":
		idx := int(name[1] - '1')
		for len(cfg.Probabilities) <= idx {
			cfg.Probabilities = append(cfg.Probabilities, 0)
		}
		cfg.Probabilities[idx] = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}

// RunScenario executes all steps in order. Steps with save_as are written
// to store when it is non-nil.
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, reg *experiment.Registry, store *storage.Store, out io.Writer) ([]*experiment.Result, error) {
	results := make([]*experiment.Result, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Config(base)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		fmt.Fprintf(out, "Running step %d/%d: %s\n", i+1, len(scenario.Steps), cfg.Dynamics)

		exp, err := experiment.New(cfg, reg)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		res, err := exp.Run(ctx, nil)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		if store != nil && step.SaveAs != "" {
			runID, err := store.Save(cfg, res)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			fmt.Fprintf(out, "  saved %s\n", runID)
		}
		results = append(results, res)
	}

	return results, nil
}
