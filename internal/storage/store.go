package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/spinlattice/internal/analysis"
	"github.com/san-kum/spinlattice/internal/config"
	"github.com/san-kum/spinlattice/internal/experiment"
	"github.com/san-kum/spinlattice/internal/sim"
)

const (
	metadataFile = "metadata.json"
	configFile   = "config.yaml"
	gridFile     = "grid.csv"
	epidemicFile = "Result.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) BaseDir() string { return s.baseDir }

type RunMetadata struct {
	ID         string                    `json:"id"`
	Label      string                    `json:"label"`
	Dynamics   string                    `json:"dynamics"`
	Family     string                    `json:"family"`
	Timestamp  time.Time                 `json:"timestamp"`
	Seed       int64                     `json:"seed"`
	Width      int                       `json:"width"`
	Height     int                       `json:"height"`
	Params     map[string]float64        `json:"params"`
	TEquib     int                       `json:"t_equib"`
	TCorr      int                       `json:"t_corr"`
	Sweeps     int                       `json:"sweeps"`
	FinalT     int                       `json:"final_t"`
	Stopped    bool                      `json:"stopped"`
	Samples    int                       `json:"samples"`
	SeriesFile string                    `json:"series_file"`
	Metrics    map[string]float64        `json:"metrics"`
	Quantities map[string]float64        `json:"quantities"`
	Ising      *analysis.IsingSummary    `json:"ising,omitempty"`
	Epidemic   *analysis.EpidemicSummary `json:"epidemic,omitempty"`
}

// SeriesFileName is the measurement file name used for a run: the
// whitespace table for spin runs and Result.csv for epidemic runs.
func SeriesFileName(label string, family experiment.Family) string {
	if family == experiment.Epidemic {
		return epidemicFile
	}
	return fmt.Sprintf("%s_Output.dat", label)
}

// Save writes a run directory holding the metadata, the config, the
// measurement series and the final lattice. Existing runs are never
// overwritten.
func (s *Store) Save(cfg *config.Config, res *experiment.Result) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}
	runID, runDir, err := s.newRunDir(res.Label)
	if err != nil {
		return "", err
	}

	params := make(map[string]float64, len(sim.ParamNames))
	for _, name := range sim.ParamNames {
		v, _ := res.Params.Get(name)
		params[name] = v
	}

	meta := RunMetadata{
		ID:         runID,
		Label:      res.Label,
		Dynamics:   res.Dynamics,
		Family:     res.Family.String(),
		Timestamp:  time.Now(),
		Seed:       cfg.Seed,
		Width:      res.Width,
		Height:     res.Height,
		Params:     params,
		TEquib:     cfg.TEquib,
		TCorr:      cfg.TCorr,
		Sweeps:     cfg.Sweeps,
		FinalT:     res.T,
		Stopped:    res.Stopped,
		Samples:    res.Samples(),
		SeriesFile: SeriesFileName(res.Label, res.Family),
		Metrics:    res.Metrics,
		Quantities: res.Quantities(),
		Ising:      res.Ising,
		Epidemic:   res.Epidemic,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}
	if err := writeSeriesFile(filepath.Join(runDir, meta.SeriesFile), res.Family, res.Series); err != nil {
		return "", err
	}
	if err := writeGrid(filepath.Join(runDir, gridFile), res.Grid); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) newRunDir(label string) (string, string, error) {
	base := fmt.Sprintf("%s_%s", sanitize(label), time.Now().Format("20060102-150405"))
	runID := base
	for n := 2; ; n++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s-%d", base, n)
	}
}

func sanitize(label string) string {
	if label == "" {
		return "run"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, label)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSeriesFile(path string, family experiment.Family, series *sim.Series) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if family == experiment.Epidemic {
		return WriteCSV(f, series)
	}
	return WriteTable(f, series)
}

func writeGrid(path string, rows [][]int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, row := range rows {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = strconv.Itoa(v)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns the metadata of every run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata of %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadConfig reads back the config a run was made with.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

// LoadSeries reads the measurement series of a run.
func (s *Store) LoadSeries(runID string) (*sim.Series, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.baseDir, runID, meta.SeriesFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSeries(f)
}

// LoadGrid reads the final lattice of a run.
func (s *Store) LoadGrid(runID string) ([][]int, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, gridFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	rows := make([][]int, len(records))
	for i, rec := range records {
		rows[i] = make([]int, len(rec))
		for j, field := range rec {
			v, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("grid row %d: %w", i, err)
			}
			rows[i][j] = v
		}
	}
	return rows, nil
}

// RunDir returns the directory of a run.
func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}
