package experiment

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/san-kum/spinlattice/internal/analysis"
	"github.com/san-kum/spinlattice/internal/config"
	"github.com/san-kum/spinlattice/internal/dynamo"
	"github.com/san-kum/spinlattice/internal/lattice"
	"github.com/san-kum/spinlattice/internal/metrics"
	"github.com/san-kum/spinlattice/internal/physics"
	"github.com/san-kum/spinlattice/internal/sim"
)

// Experiment is one configured run: a simulator, its random stream and the
// metrics attached to it.
type Experiment struct {
	cfg       *config.Config
	dynamics  string
	family    Family
	rng       dynamo.Random
	simulator *sim.Simulator
	metrics   metrics.Set
}

// Result is everything reported about a finished run.
type Result struct {
	Label    string
	Dynamics string
	Family   Family
	Params   sim.Params
	Width    int
	Height   int
	T        int
	Stopped  bool
	Series   *sim.Series
	Ising    *analysis.IsingSummary
	Epidemic *analysis.EpidemicSummary
	Metrics  map[string]float64
	Grid     [][]int
	Summary  string
}

// New validates cfg and builds the initial lattice and simulator. The
// lattice is generated from the same seeded stream the dynamics use.
func New(cfg *config.Config, reg *Registry) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rule, family, err := reg.GetRule(cfg.Dynamics)
	if err != nil {
		return nil, err
	}
	dynamics, _ := reg.Resolve(cfg.Dynamics)

	rng := dynamo.NewRandom(cfg.Seed)
	grid, err := buildGrid(cfg, reg, family, rng)
	if err != nil {
		return nil, err
	}

	s, err := sim.New(grid, cfg.Params(), rule, rng, cfg.SimConfig())
	if err != nil {
		return nil, err
	}

	e := &Experiment{
		cfg:       cfg,
		dynamics:  dynamics,
		family:    family,
		rng:       rng,
		simulator: s,
		metrics:   reg.DefaultMetrics(family),
	}
	s.AddObserver(e.metrics)
	return e, nil
}

func buildGrid(cfg *config.Config, reg *Registry, family Family, rng dynamo.Random) (*lattice.Grid, error) {
	if len(cfg.Grid) > 0 {
		return lattice.FromRows(cfg.Grid)
	}
	w, h := cfg.Dims()

	if family == Epidemic {
		fractions := make([]float64, len(physics.EpidemicStates))
		if len(cfg.Proportions) > len(fractions) {
			return nil, dynamo.ConfigErrorf("proportions", cfg.Proportions, "expected at most %d values", len(fractions))
		}
		copy(fractions, cfg.Proportions)
		return lattice.Proportional(w, h, physics.EpidemicStates, fractions, rng)
	}

	policy, err := reg.ResolveInit(cfg.Init)
	if err != nil {
		return nil, err
	}
	switch policy {
	case "uniform":
		return lattice.Uniform(w, h, physics.SpinUp)
	case "split":
		return lattice.Split(w, h, physics.SpinUp, physics.SpinDown)
	default:
		return lattice.RandomSpins(w, h, rng)
	}
}

func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }
func (e *Experiment) Config() *config.Config    { return e.cfg }
func (e *Experiment) Dynamics() string          { return e.dynamics }
func (e *Experiment) Family() Family            { return e.family }
func (e *Experiment) Metrics() metrics.Set      { return e.metrics }

// AddObserver attaches an extra per-sweep observer.
func (e *Experiment) AddObserver(o sim.Observer) { e.simulator.AddObserver(o) }

// Run performs cfg.Sweeps sweeps, printing a progress line every tenth of
// the run to progress (which may be nil), and analyses the result.
func (e *Experiment) Run(ctx context.Context, progress io.Writer) (*Result, error) {
	total := e.cfg.Sweeps
	step := max(total/10, 1)

	done := 0
	for done < total && !e.simulator.Stopped() {
		n, err := e.simulator.Run(ctx, min(step, total-done))
		done += n
		if err != nil {
			return nil, fmt.Errorf("run %s at sweep %d: %w", e.cfg.Label, e.simulator.T(), err)
		}
		if n == 0 {
			break
		}
		if progress != nil && total > 0 {
			fmt.Fprintf(progress, "Measurement %s: %d%% complete.\n", e.cfg.Label, 100*done/total)
		}
	}
	if progress != nil && e.simulator.Stopped() {
		fmt.Fprintf(progress, "Measurement %s: absorbed at sweep %d.\n", e.cfg.Label, e.simulator.T())
	}

	return e.Analyse()
}

// Analyse summarises the current state of the run without advancing it.
func (e *Experiment) Analyse() (*Result, error) {
	s := e.simulator
	w, h := s.Grid().Dims()
	res := &Result{
		Label:    e.cfg.Label,
		Dynamics: e.dynamics,
		Family:   e.family,
		Params:   s.Params(),
		Width:    w,
		Height:   h,
		T:        s.T(),
		Stopped:  s.Stopped(),
		Series:   s.Series(),
		Metrics:  e.metrics.Values(),
		Grid:     s.Snapshot(),
		Summary:  s.Summary(),
	}

	switch e.family {
	case Ising:
		sum, err := analysis.Ising(s.Series(), s.Size(), s.Params(), e.cfg.KSub, e.rng)
		switch {
		case err == nil:
			res.Ising = &sum
		case !errors.Is(err, dynamo.ErrEmptySeries):
			return nil, err
		}
	case Epidemic:
		sum, err := analysis.Epidemic(s.Series(), s.Size())
		if err != nil {
			return nil, err
		}
		res.Epidemic = &sum
	}
	return res, nil
}

// Quantities flattens the run summary into named values.
func (r *Result) Quantities() map[string]float64 {
	q := make(map[string]float64)
	if s := r.Ising; s != nil {
		q["E"] = s.Energy
		q["M"] = s.Magnetisation
		q["C"] = s.HeatCapacity
		q["X"] = s.Susceptibility
		q["errE"] = s.ErrEnergy
		q["errM"] = s.ErrMagnet
		q["errC"] = s.ErrHeat
		q["errX"] = s.ErrSuscept
	}
	if s := r.Epidemic; s != nil {
		q["avPsi"] = s.AvPsi
		q["varPsi"] = s.VarPsi
		q["avI"] = s.AvI
		q["varI"] = s.VarI
		q["errPsi"] = s.ErrPsi
	}
	return q
}

// Samples is the number of recorded measurements.
func (r *Result) Samples() int {
	if r.Series == nil {
		return 0
	}
	return r.Series.Len()
}
