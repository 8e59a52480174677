package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/san-kum/spinlattice/internal/config"
	"github.com/san-kum/spinlattice/internal/experiment"
	"github.com/san-kum/spinlattice/internal/sim"
)

func runExperiment(t *testing.T, cfg *config.Config) *experiment.Result {
	t.Helper()
	e, err := experiment.New(cfg, experiment.NewRegistry())
	if err != nil {
		t.Fatalf("experiment: %v", err)
	}
	res, err := e.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return res
}

func isingConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Label = "Test"
	cfg.Width = 6
	cfg.Sweeps = 12
	cfg.TEquib = 2
	cfg.TCorr = 2
	cfg.Seed = 42
	cfg.KSub = 10
	return cfg
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	cfg := isingConfig()
	res := runExperiment(t, cfg)

	runID, err := st.Save(cfg, res)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "Test_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Dynamics != "glauber" || meta.Family != "ising" {
		t.Errorf("unexpected dynamics %s/%s", meta.Dynamics, meta.Family)
	}
	if meta.Seed != 42 || meta.FinalT != 12 {
		t.Errorf("unexpected seed %d or final t %d", meta.Seed, meta.FinalT)
	}
	if meta.SeriesFile != "Test_Output.dat" {
		t.Errorf("unexpected series file %s", meta.SeriesFile)
	}
	if meta.Ising == nil || meta.Quantities["E"] != res.Ising.Energy {
		t.Errorf("summary not stored: %+v", meta.Quantities)
	}
	if meta.Params["T"] != 1 || meta.Params["J"] != 1 {
		t.Errorf("unexpected params %v", meta.Params)
	}

	series, err := st.LoadSeries(runID)
	if err != nil {
		t.Fatalf("load series failed: %v", err)
	}
	if !reflect.DeepEqual(series.Times(), res.Series.Times()) {
		t.Errorf("expected times %v, got %v", res.Series.Times(), series.Times())
	}
	if !reflect.DeepEqual(series.Columns(), []string{"Energy", "Magnetisation"}) {
		t.Errorf("unexpected columns %v", series.Columns())
	}

	grid, err := st.LoadGrid(runID)
	if err != nil {
		t.Fatalf("load grid failed: %v", err)
	}
	if !reflect.DeepEqual(grid, res.Grid) {
		t.Error("grid snapshot differs")
	}

	loaded, err := st.LoadConfig(runID)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if loaded.Seed != cfg.Seed || loaded.Width != cfg.Width {
		t.Errorf("config not stored: %+v", loaded)
	}
}

func TestStoreNeverOverwrites(t *testing.T) {
	st := New(t.TempDir())
	cfg := isingConfig()
	res := runExperiment(t, cfg)

	first, err := st.Save(cfg, res)
	if err != nil {
		t.Fatal(err)
	}
	second, err := st.Save(cfg, res)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Errorf("second save reused run id %s", first)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreEpidemicFiles(t *testing.T) {
	st := New(t.TempDir())
	cfg := config.DefaultConfig()
	cfg.Dynamics = "sirs"
	cfg.Width = 6
	cfg.Sweeps = 10
	cfg.TEquib = 0
	cfg.TCorr = 1
	cfg.Probabilities = []float64{0.8, 0.1, 0.1}
	res := runExperiment(t, cfg)

	runID, err := st.Save(cfg, res)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(st.RunDir(runID), "Result.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "t,I\n") {
		t.Errorf("unexpected header in %q", data)
	}

	series, err := st.LoadSeries(runID)
	if err != nil {
		t.Fatal(err)
	}
	if series.Len() != res.Series.Len() {
		t.Errorf("expected %d samples, got %d", res.Series.Len(), series.Len())
	}
}

func TestListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "missing")).List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestWriteTable(t *testing.T) {
	series := sim.NewSeries("Energy", "Magnetisation")
	series.Append(110, -4512, 1830)
	series.Append(120, -4490.5, -12)

	var buf bytes.Buffer
	if err := WriteTable(&buf, series); err != nil {
		t.Fatal(err)
	}
	want := "Time     Energy        Magnetisation\n" +
		"110      -4512.0       1830.0\n" +
		"120      -4490.5       -12.0\n"
	if buf.String() != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, buf.String())
	}

	back, err := ReadSeries(&buf)
	if err != nil {
		t.Fatal(err)
	}
	e, _ := back.Column("Energy")
	if !reflect.DeepEqual(e, []float64{-4512, -4490.5}) {
		t.Errorf("unexpected energies %v", e)
	}
}

func TestWriteCSV(t *testing.T) {
	series := sim.NewSeries("I")
	series.Append(151, 320)
	series.Append(152, 0)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, series); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "t,I\n151,320\n152,0\n" {
		t.Errorf("unexpected csv %q", buf.String())
	}

	back, err := ReadSeries(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back.Times(), []int{151, 152}) {
		t.Errorf("unexpected times %v", back.Times())
	}
}

func TestReadSeriesErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"bad index", "t,I\nx,3\n"},
		{"bad value", "Time     Energy        Magnetisation\n1 2.0 abc\n"},
		{"short row", "Time     Energy        Magnetisation\n1 2.0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadSeries(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestExportJSON(t *testing.T) {
	series := sim.NewSeries("I")
	series.Append(1, 5)
	meta := &RunMetadata{ID: "run_1", Label: "run"}

	var buf bytes.Buffer
	if err := ExportJSON(&buf, meta, series); err != nil {
		t.Fatal(err)
	}
	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatal(err)
	}
	if data.Run.ID != "run_1" || !reflect.DeepEqual(data.Values, [][]float64{{5}}) {
		t.Errorf("unexpected export %+v", data)
	}
}
