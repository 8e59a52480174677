package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/san-kum/spinlattice/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dynamics != "glauber" {
		t.Errorf("expected dynamics glauber, got %s", cfg.Dynamics)
	}
	if w, h := cfg.Dims(); w != 50 || h != 50 {
		t.Errorf("expected 50x50, got %dx%d", w, h)
	}
	if cfg.TEquib != 100 || cfg.TCorr != 10 {
		t.Errorf("unexpected schedule %d/%d", cfg.TEquib, cfg.TCorr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestParams(t *testing.T) {
	cfg := DefaultConfig()
	cfg.T = 2.5
	cfg.Probabilities = []float64{0.1, 0.2, 0.3}

	p := cfg.Params()
	if p.T != 2.5 || p.J != 1 || p.K != 1 {
		t.Errorf("unexpected constants %+v", p)
	}
	if p.P1 != 0.1 || p.P2 != 0.2 || p.P3 != 0.3 {
		t.Errorf("unexpected probabilities %+v", p)
	}

	sc := cfg.SimConfig()
	if !sc.Measure || sc.TEquib != 100 || sc.TCorr != 10 {
		t.Errorf("unexpected sim config %+v", sc)
	}
}

func TestDims(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 20, 30
	if w, h := cfg.Dims(); w != 20 || h != 30 {
		t.Errorf("expected 20x30, got %dx%d", w, h)
	}
	cfg.Height = -1
	if w, h := cfg.Dims(); w != 20 || h != 20 {
		t.Errorf("expected square 20x20, got %dx%d", w, h)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		param  string
	}{
		{"zero width", func(c *Config) { c.Width = 0 }, "width"},
		{"negative equilibration", func(c *Config) { c.TEquib = -1 }, "t_equib"},
		{"zero interval", func(c *Config) { c.TCorr = 0 }, "t_corr"},
		{"negative sweeps", func(c *Config) { c.Sweeps = -5 }, "sweeps"},
		{"negative kSub", func(c *Config) { c.KSub = -1 }, "k_sub"},
		{"too many probabilities", func(c *Config) { c.Probabilities = []float64{0, 0, 0, 0} }, "probabilities"},
		{"too many proportions", func(c *Config) { c.Proportions = []float64{0, 0, 0, 0, 0} }, "proportions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, dynamo.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
			var pe *dynamo.ParamError
			if !errors.As(err, &pe) || pe.Param != tt.param {
				t.Errorf("expected param %s, got %v", tt.param, err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := DefaultConfig()
	cfg.Dynamics = "sirs"
	cfg.Label = "Phase"
	cfg.Proportions = []float64{0.4, 0.4, 0, 0.2}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, loaded) {
		t.Errorf("round trip mismatch:\n%+v\n%+v", cfg, loaded)
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := writeFile(path, "T: 2.2\nwidth: 16\n"); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.T != 2.2 || cfg.Width != 16 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.TCorr != DefaultTCorr || cfg.Dynamics != "glauber" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadIntoPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "over.yaml")
	if err := writeFile(path, "sweeps: 50\n"); err != nil {
		t.Fatal(err)
	}
	cfg := GetPreset("ising", "critical")
	if err := LoadInto(path, cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Sweeps != 50 || cfg.T != 2.269 || cfg.Label != "Critical" {
		t.Errorf("file did not layer over preset: %+v", cfg)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SPINLATTICE_DATA_DIR", "/tmp/runs")
	t.Setenv("SPINLATTICE_SEED", "42")
	t.Setenv("SPINLATTICE_T", "2.5")

	cfg := DefaultConfig()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.DataDir != "/tmp/runs" || cfg.Seed != 42 || cfg.T != 2.5 {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.Width != DefaultWidth {
		t.Errorf("unset variable changed width to %d", cfg.Width)
	}
}

func TestApplyEnvRejectsBadNumber(t *testing.T) {
	t.Setenv("SPINLATTICE_SEED", "not-a-number")
	if err := ApplyEnv(DefaultConfig()); err == nil {
		t.Error("expected parse error")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("ising", "critical")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.T != 2.269 {
		t.Errorf("expected T 2.269, got %f", cfg.T)
	}
	if cfg.KSub != DefaultKSub || cfg.DataDir != DefaultDataDir {
		t.Errorf("defaults not filled: %+v", cfg)
	}

	cfg.T = 9
	if Presets["ising"]["critical"].T != 2.269 {
		t.Error("preset mutated through returned config")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("ising", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "cold"); cfg != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("sirs")
	want := []string{"absorbing", "equilibrium", "herd", "waves"}
	if !reflect.DeepEqual(presets, want) {
		t.Errorf("expected %v, got %v", want, presets)
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent model")
	}
	if !reflect.DeepEqual(Models(), []string{"ising", "sirs"}) {
		t.Errorf("unexpected models %v", Models())
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, model := range Models() {
		for _, name := range ListPresets(model) {
			t.Run(model+"/"+name, func(t *testing.T) {
				if err := GetPreset(model, name).Validate(); err != nil {
					t.Error(err)
				}
			})
		}
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}
