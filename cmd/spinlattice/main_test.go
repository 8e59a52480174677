package main

import (
	"reflect"
	"testing"

	"github.com/san-kum/spinlattice/internal/automation"
	"github.com/san-kum/spinlattice/internal/config"
	"github.com/spf13/cobra"
)

func TestParseParamRange(t *testing.T) {
	tests := []struct {
		raw     string
		name    string
		vals    []float64
		wantErr bool
	}{
		{"T=1:2:0.5", "T", []float64{1, 1.5, 2}, false},
		{"p1=0.1,0.3", "p1", []float64{0.1, 0.3}, false},
		{"J=2", "J", []float64{2}, false},
		{"T", "", nil, true},
		{"T=a:b:c", "", nil, true},
		{"T=1,x", "", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			name, vals, err := parseParamRange(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if name != tt.name || !reflect.DeepEqual(vals, tt.vals) {
				t.Errorf("got %s %v", name, vals)
			}
		})
	}
}

func newConfigCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addConfigFlags(cmd)
	if err := cmd.Flags().Parse(args); err != nil {
		t.Fatal(err)
	}
	return cmd
}

func TestResolveConfigFlagsOverride(t *testing.T) {
	t.Setenv("SPINLATTICE_SWEEPS", "77")
	cmd := newConfigCmd(t, "--T", "2.5", "--width", "8", "--label", "Hot")

	cfg, err := resolveConfig(cmd, []string{"kawasaki"}, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dynamics != "kawasaki" || cfg.T != 2.5 || cfg.Width != 8 || cfg.Label != "Hot" {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.Sweeps != 77 {
		t.Errorf("env not applied: sweeps=%d", cfg.Sweeps)
	}
	if cfg.J != 1 {
		t.Errorf("unchanged flag overrode J: %v", cfg.J)
	}
}

func TestResolveConfigDefaultPreset(t *testing.T) {
	cmd := newConfigCmd(t, "--p3", "0.1")
	cfg, err := resolveConfig(cmd, nil, "sirs/equilibrium")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dynamics != "sirs" || !reflect.DeepEqual(cfg.Probabilities, []float64{0.5, 0.5, 0.1}) {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestResolveConfigRejectsBadWidth(t *testing.T) {
	cmd := newConfigCmd(t, "--width", "0")
	if _, err := resolveConfig(cmd, nil, ""); err == nil {
		t.Error("expected validation error")
	}
}

func TestResolveConfigSweepDefaults(t *testing.T) {
	cfg, err := resolveConfig(newConfigCmd(t), nil, "sirs/equilibrium", sweepAxes["immunity"].defaults)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sweeps != 10000 {
		t.Errorf("sweeps = %d, want the immunity default 10000", cfg.Sweeps)
	}

	cfg, err = resolveConfig(newConfigCmd(t, "--sweeps", "300"), nil, "sirs/equilibrium", sweepAxes["cut"].defaults)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sweeps != 300 {
		t.Errorf("sweeps = %d, want the flag value 300", cfg.Sweeps)
	}

	cfg, err = resolveConfig(newConfigCmd(t), nil, "", sweepAxes["temperature"].defaults)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sweeps != config.DefaultConfig().Sweeps {
		t.Errorf("temperature sweep changed run length to %d", cfg.Sweeps)
	}
}

func TestSweepAxesGrid(t *testing.T) {
	phase := sweepAxes["phase"]
	if n := len(automation.Range(phase.from, phase.to, phase.step)); n != 41 {
		t.Errorf("phase p1 axis has %d points, want 41", n)
	}
	imm := sweepAxes["immunity"]
	if n := len(automation.Range(imm.from, imm.to, imm.step)); n != 101 {
		t.Errorf("immunity axis has %d points, want 101", n)
	}
	cut := sweepAxes["cut"]
	if n := len(automation.Range(cut.from, cut.to, cut.step)); n != 31 {
		t.Errorf("cut axis has %d points, want 31", n)
	}
}
