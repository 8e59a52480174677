package automation

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/spinlattice/internal/config"
	"github.com/san-kum/spinlattice/internal/experiment"
	"github.com/san-kum/spinlattice/internal/storage"
)

// Point is one parameter setting of a sweep.
type Point struct {
	Params      map[string]float64
	Proportions []float64
}

// Sweep is a list of points run against a common base config.
type Sweep struct {
	ID     string
	Kind   string
	Base   *config.Config
	Points []Point
}

// SweepResult holds one finished point.
type SweepResult struct {
	Run    int
	Point  Point
	Config *config.Config
	Result *experiment.Result
	RunID  string
}

// Options control how a sweep is executed and where it is recorded. All
// sinks are optional.
type Options struct {
	Workers  int
	Store    *storage.Store
	Catalog  *storage.Catalog
	Progress io.Writer
}

// Range returns lo, lo+step, ... up to and including hi, rounded to
// suppress accumulated float error.
func Range(lo, hi, step float64) []float64 {
	if step <= 0 || hi < lo {
		return []float64{lo}
	}
	n := int(math.Floor((hi-lo)/step+1e-9)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Round((lo+float64(i)*step)*1e9) / 1e9
	}
	return out
}

// ParamScan varies one named parameter.
func ParamScan(base *config.Config, name string, values []float64) *Sweep {
	sw := &Sweep{ID: newID(name), Kind: "scan", Base: base}
	for _, v := range values {
		sw.Points = append(sw.Points, Point{Params: map[string]float64{name: v}})
	}
	return sw
}

// TemperatureScan varies T for a spin model.
func TemperatureScan(base *config.Config, lo, hi, step float64) *Sweep {
	sw := ParamScan(base, "T", Range(lo, hi, step))
	sw.ID = newID("temperature")
	sw.Kind = "temperature"
	return sw
}

// PhaseDiagram covers the (p1, p3) plane at fixed p2.
func PhaseDiagram(base *config.Config, p1s, p3s []float64, p2 float64) *Sweep {
	sw := &Sweep{ID: newID("phase"), Kind: "phase", Base: base}
	for _, p1 := range p1s {
		for _, p3 := range p3s {
			sw.Points = append(sw.Points, Point{Params: map[string]float64{"p1": p1, "p2": p2, "p3": p3}})
		}
	}
	return sw
}

// PhaseCut varies p1 at fixed p2 and p3.
func PhaseCut(base *config.Config, p1s []float64, p2, p3 float64) *Sweep {
	sw := &Sweep{ID: newID("cut"), Kind: "cut", Base: base}
	for _, p1 := range p1s {
		sw.Points = append(sw.Points, Point{Params: map[string]float64{"p1": p1, "p2": p2, "p3": p3}})
	}
	return sw
}

// ImmunityScan starts each run with an immune fraction f and the rest
// split evenly between susceptible and infected.
func ImmunityScan(base *config.Config, fractions []float64, p1, p2, p3 float64) *Sweep {
	sw := &Sweep{ID: newID("immunity"), Kind: "immunity", Base: base}
	for _, f := range fractions {
		sw.Points = append(sw.Points, Point{
			Params:      map[string]float64{"p1": p1, "p2": p2, "p3": p3},
			Proportions: []float64{(1 - f) / 2, (1 - f) / 2, 0, f},
		})
	}
	return sw
}

func newID(kind string) string {
	return fmt.Sprintf("%s_%s", kind, time.Now().Format("20060102-150405"))
}

// Configs resolves every point into a run config. Run i is labelled
// Run<i> and seeded with base seed + i-1.
func (sw *Sweep) Configs() ([]*config.Config, error) {
	cfgs := make([]*config.Config, len(sw.Points))
	for i, p := range sw.Points {
		cfg := sw.Base.Clone()
		cfg.Label = fmt.Sprintf("Run%d", i+1)
		cfg.Seed = sw.Base.Seed + int64(i)
		for name, v := range p.Params {
			if err := SetParam(cfg, name, v); err != nil {
				return nil, fmt.Errorf("point %d: %w", i+1, err)
			}
		}
		if p.Proportions != nil {
			cfg.Proportions = append([]float64(nil), p.Proportions...)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("point %d: %w", i+1, err)
		}
		cfgs[i] = cfg
	}
	return cfgs, nil
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Printf(format string, args ...any) {
	if l.w == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, format, args...)
}

// RunSweep runs every point, at most opts.Workers at a time, then saves
// and catalogues the results in run order. The first failing run cancels
// the rest.
func RunSweep(ctx context.Context, sw *Sweep, reg *experiment.Registry, opts Options) ([]SweepResult, error) {
	cfgs, err := sw.Configs()
	if err != nil {
		return nil, err
	}
	workers := max(opts.Workers, 1)
	progress := &lockedWriter{w: opts.Progress}

	results := make([]SweepResult, len(cfgs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, cfg := range cfgs {
		g.Go(func() error {
			progress.Printf("Starting run %d at %s\n", i+1, time.Now().UTC().Format("15:04"))
			exp, err := experiment.New(cfg, reg)
			if err != nil {
				return fmt.Errorf("run %d: %w", i+1, err)
			}
			res, err := exp.Run(gctx, nil)
			if err != nil {
				return fmt.Errorf("run %d: %w", i+1, err)
			}
			results[i] = SweepResult{Run: i + 1, Point: sw.Points[i], Config: cfg, Result: res}
			progress.Printf("Sweep %d/%d: %s\n", i+1, len(cfgs), describe(sw.Points[i]))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range results {
		r := &results[i]
		if opts.Store != nil {
			runID, err := opts.Store.Save(r.Config, r.Result)
			if err != nil {
				return results, fmt.Errorf("save run %d: %w", r.Run, err)
			}
			r.RunID = runID
		}
		if opts.Catalog != nil {
			row := storage.NewCatalogRow(sw.ID, r.Run, r.Result)
			row.RunID = r.RunID
			if err := opts.Catalog.Record(ctx, row); err != nil {
				return results, err
			}
		}
	}
	return results, nil
}

func describe(p Point) string {
	s := ""
	for _, name := range []string{"J", "k", "T", "p1", "p2", "p3"} {
		if v, ok := p.Params[name]; ok {
			s += fmt.Sprintf("%s=%.4f ", name, v)
		}
	}
	if p.Proportions != nil {
		s += fmt.Sprintf("proportions=%v", p.Proportions)
	}
	return strings.TrimSpace(s)
}

var (
	epidemicHeader = []string{"Run:", "p1:", "p2:", "p3:", "<I>:", "<Psi>:", "Var_I:", "Var_Psi", "N", "n:"}
	isingHeader    = []string{"Run", "T", "E", "M", "C", "X", "errE", "errM", "errC", "errX", "N", "n"}
)

// WriteResults writes one summary row per run. Epidemic and spin sweeps
// use different columns; the family of the first run decides.
func WriteResults(w io.Writer, results []SweepResult) error {
	cw := csv.NewWriter(w)
	if len(results) == 0 {
		cw.Flush()
		return cw.Error()
	}

	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	epidemic := results[0].Result.Family == experiment.Epidemic
	header := isingHeader
	if epidemic {
		header = epidemicHeader
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range results {
		res := r.Result
		p := res.Params
		var rec []string
		switch {
		case epidemic && res.Epidemic != nil:
			s := res.Epidemic
			rec = []string{strconv.Itoa(r.Run), f(p.P1), f(p.P2), f(p.P3),
				f(s.AvI), f(s.AvPsi), f(s.VarI), f(s.VarPsi), strconv.Itoa(s.Size), strconv.Itoa(s.Samples)}
		case !epidemic && res.Ising != nil:
			s := res.Ising
			rec = []string{strconv.Itoa(r.Run), f(p.T), f(s.Energy), f(s.Magnetisation),
				f(s.HeatCapacity), f(s.Susceptibility), f(s.ErrEnergy), f(s.ErrMagnet),
				f(s.ErrHeat), f(s.ErrSuscept), strconv.Itoa(s.Size), strconv.Itoa(s.Samples)}
		default:
			continue
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
