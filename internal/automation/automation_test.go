package automation

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/san-kum/spinlattice/internal/config"
	"github.com/san-kum/spinlattice/internal/dynamo"
	"github.com/san-kum/spinlattice/internal/experiment"
	"github.com/san-kum/spinlattice/internal/storage"
)

func smallIsing() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Width = 4
	cfg.Sweeps = 10
	cfg.TEquib = 0
	cfg.TCorr = 2
	cfg.KSub = 5
	cfg.Seed = 7
	return cfg
}

func smallEpidemic() *config.Config {
	cfg := smallIsing()
	cfg.Dynamics = "sirs"
	cfg.TCorr = 1
	return cfg
}

func TestRange(t *testing.T) {
	vals := Range(1, 3, 0.1)
	if len(vals) != 21 {
		t.Fatalf("expected 21 values, got %d", len(vals))
	}
	if vals[0] != 1 || vals[5] != 1.5 || vals[20] != 3 {
		t.Errorf("unexpected values %v", vals)
	}
	if got := Range(0.2, 0.5, 0.01); len(got) != 31 || got[30] != 0.5 {
		t.Errorf("unexpected cut range %v", got)
	}
	if got := Range(2, 1, 0.1); !reflect.DeepEqual(got, []float64{2}) {
		t.Errorf("expected single value, got %v", got)
	}
}

func TestSweepBuilders(t *testing.T) {
	base := smallEpidemic()

	phase := PhaseDiagram(base, []float64{0.1, 0.2}, []float64{0.3, 0.4, 0.5}, 0.5)
	if len(phase.Points) != 6 {
		t.Fatalf("expected 6 points, got %d", len(phase.Points))
	}
	if phase.Points[4].Params["p1"] != 0.2 || phase.Points[4].Params["p3"] != 0.4 || phase.Points[4].Params["p2"] != 0.5 {
		t.Errorf("unexpected point %v", phase.Points[4].Params)
	}

	cut := PhaseCut(base, []float64{0.2, 0.3}, 0.5, 0.5)
	if len(cut.Points) != 2 || cut.Kind != "cut" {
		t.Errorf("unexpected cut %+v", cut)
	}

	imm := ImmunityScan(base, []float64{0.2}, 0.5, 0.5, 0.5)
	if !reflect.DeepEqual(imm.Points[0].Proportions, []float64{0.4, 0.4, 0, 0.2}) {
		t.Errorf("unexpected proportions %v", imm.Points[0].Proportions)
	}

	temp := TemperatureScan(smallIsing(), 1, 2, 0.5)
	if len(temp.Points) != 3 || temp.Points[2].Params["T"] != 2 {
		t.Errorf("unexpected temperature points %+v", temp.Points)
	}
}

func TestSweepConfigs(t *testing.T) {
	sw := ParamScan(smallIsing(), "T", []float64{1.5, 2.5})
	cfgs, err := sw.Configs()
	if err != nil {
		t.Fatal(err)
	}
	if cfgs[1].Label != "Run2" || cfgs[1].Seed != 8 || cfgs[1].T != 2.5 {
		t.Errorf("unexpected config %+v", cfgs[1])
	}
	if sw.Base.T != 1 {
		t.Error("base config mutated")
	}

	bad := ParamScan(smallIsing(), "beta", []float64{1})
	if _, err := bad.Configs(); err == nil {
		t.Error("expected error for unknown param")
	}
}

func TestSetParam(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Probabilities = nil
	if err := SetParam(cfg, "p3", 0.25); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg.Probabilities, []float64{0, 0, 0.25}) {
		t.Errorf("unexpected probabilities %v", cfg.Probabilities)
	}
	if err := SetParam(cfg, "k", 2); err != nil || cfg.K != 2 {
		t.Errorf("k not set: %v", err)
	}
}

func TestRunTemperatureSweep(t *testing.T) {
	dir := t.TempDir()
	catalog, err := storage.OpenCatalog(filepath.Join(dir, "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer catalog.Close()

	sw := TemperatureScan(smallIsing(), 1, 2, 0.5)
	var progress bytes.Buffer
	results, err := RunSweep(context.Background(), sw, experiment.NewRegistry(), Options{
		Workers:  2,
		Store:    storage.New(dir),
		Catalog:  catalog,
		Progress: &progress,
	})
	if err != nil {
		t.Fatalf("RunSweep: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Run != i+1 || r.RunID == "" || r.Result.Ising == nil {
			t.Errorf("result %d incomplete: %+v", i, r)
		}
		if r.Result.Params.T != sw.Points[i].Params["T"] {
			t.Errorf("result %d ran at T=%v", i, r.Result.Params.T)
		}
	}

	rows, err := catalog.Rows(context.Background(), sw.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[2].T != 2 || rows[0].RunID != results[0].RunID {
		t.Errorf("unexpected catalog rows %+v", rows)
	}
	if strings.Count(progress.String(), "Starting run") != 3 {
		t.Errorf("unexpected progress:\n%s", progress.String())
	}

	var buf bytes.Buffer
	if err := WriteResults(&buf, results); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 || lines[0] != "Run,T,E,M,C,X,errE,errM,errC,errX,N,n" {
		t.Errorf("unexpected results file:\n%s", buf.String())
	}
}

func TestRunImmunitySweep(t *testing.T) {
	sw := ImmunityScan(smallEpidemic(), []float64{0, 0.5}, 0.5, 0.5, 0.5)
	results, err := RunSweep(context.Background(), sw, experiment.NewRegistry(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if results[1].Config.Proportions[3] != 0.5 {
		t.Errorf("unexpected proportions %v", results[1].Config.Proportions)
	}

	var buf bytes.Buffer
	if err := WriteResults(&buf, results); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "Run:,p1:,p2:,p3:,<I>:,<Psi>:,Var_I:,Var_Psi,N,n:\n1,0.5,0.5,0.5,") {
		t.Errorf("unexpected results file:\n%s", buf.String())
	}
}

func TestRunSweepFailsFast(t *testing.T) {
	sw := PhaseCut(smallEpidemic(), []float64{0.5, 1.5}, 0.5, 0.5)
	_, err := RunSweep(context.Background(), sw, experiment.NewRegistry(), Options{Workers: 2})
	if !errors.Is(err, dynamo.ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anneal.yaml")
	doc := `name: anneal
description: hot then cold
steps:
  - preset: ising/hot
    width: 4
    sweeps: 120
    save_as: Hot
  - dynamics: kawasaki
    width: 4
    sweeps: 6
    seed: 3
    params:
      T: 0.5
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if sc.Name != "anneal" || len(sc.Steps) != 2 {
		t.Fatalf("unexpected scenario %+v", sc)
	}

	base := smallIsing()
	store := storage.New(filepath.Join(dir, "runs"))
	var out bytes.Buffer
	results, err := RunScenario(context.Background(), sc, base, experiment.NewRegistry(), store, &out)
	if err != nil {
		t.Fatalf("RunScenario: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Label != "Hot" || results[0].Params.T != 3.5 || results[0].Ising == nil {
		t.Errorf("unexpected first step %+v", results[0].Params)
	}
	if results[1].Dynamics != "kawasaki" || results[1].Params.T != 0.5 {
		t.Errorf("unexpected second step %s %+v", results[1].Dynamics, results[1].Params)
	}

	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Label != "Hot" {
		t.Errorf("expected only the saved step, got %+v", runs)
	}
	if !strings.Contains(out.String(), "Running step 2/2: kawasaki") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestScenarioStepErrors(t *testing.T) {
	tests := []struct {
		name string
		step ScenarioStep
	}{
		{"bad preset format", ScenarioStep{Preset: "critical"}},
		{"unknown preset", ScenarioStep{Preset: "ising/lukewarm"}},
		{"unknown param", ScenarioStep{Params: map[string]float64{"h": 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.step.Config(smallIsing()); err == nil {
				t.Error("expected error")
			}
		})
	}
}
