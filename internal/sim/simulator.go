package sim

import (
	"context"

	"github.com/san-kum/spinlattice/internal/dynamo"
	"github.com/san-kum/spinlattice/internal/lattice"
)

// Simulator owns one lattice state and drives sweeps of a Rule over it.
type Simulator struct {
	state     State
	rule      Rule
	rng       dynamo.Random
	cfg       Config
	t         int
	status    Status
	series    *Series
	observers []Observer
}

// New validates the inputs, seeds the observable caches from a full
// recomputation and returns a simulator at t = 0.
func New(grid *lattice.Grid, params Params, rule Rule, rng dynamo.Random, cfg Config) (*Simulator, error) {
	if grid == nil {
		return nil, dynamo.ConfigErrorf("grid", nil, "no initial grid")
	}
	if rule == nil {
		return nil, dynamo.ConfigErrorf("rule", nil, "no update rule")
	}
	if rng == nil {
		return nil, dynamo.ConfigErrorf("rng", nil, "no random source")
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	s := &Simulator{
		state: State{Grid: grid, Params: params},
		rule:  rule,
		rng:   rng,
		cfg:   cfg,
	}
	if err := rule.Validate(&s.state); err != nil {
		return nil, err
	}
	s.state.Obs = rule.Measure(&s.state)
	s.series = NewSeries(rule.Columns()...)
	return s, nil
}

func validateConfig(cfg Config) error {
	if cfg.TEquib < 0 {
		return dynamo.ConfigErrorf("tEquib", cfg.TEquib, "must not be negative")
	}
	if cfg.TCorr < 1 {
		return dynamo.ConfigErrorf("tCorr", cfg.TCorr, "must be at least 1")
	}
	return nil
}

func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Sweep performs one sweep of proposals, advances t and applies the
// measurement and absorption checks.
func (s *Simulator) Sweep() error {
	if s.status == Stopped {
		return dynamo.ErrStopped
	}

	n := s.rule.ProposalsPerSweep(s.state.Grid.Size())
	for i := 0; i < n; i++ {
		s.rule.Propose(&s.state, s.rng)
	}
	s.t++

	recorded := false
	if s.cfg.Measure && s.t > s.cfg.TEquib && s.t%s.cfg.TCorr == 0 {
		s.record()
		recorded = true
	}

	if a, ok := s.rule.(Absorber); ok && a.Absorbed(&s.state) {
		if s.cfg.Measure && !recorded {
			s.record()
		}
		s.status = Stopped
	}

	for _, o := range s.observers {
		o.OnSweep(&s.state, s.t)
	}
	return nil
}

func (s *Simulator) record() {
	s.series.Append(s.t, s.rule.Sample(&s.state)...)
}

// Run performs up to sweeps sweeps, stopping early on absorption or when
// ctx is done. It returns the number of sweeps completed.
func (s *Simulator) Run(ctx context.Context, sweeps int) (int, error) {
	done := 0
	for done < sweeps {
		select {
		case <-ctx.Done():
			return done, ctx.Err()
		default:
		}
		if s.status == Stopped {
			break
		}
		if err := s.Sweep(); err != nil {
			return done, err
		}
		done++
	}
	return done, nil
}

// Clean resets t and the series so the current lattice can be measured
// afresh. A stopped run stays stopped.
func (s *Simulator) Clean() {
	s.t = 0
	s.series = NewSeries(s.rule.Columns()...)
	s.state.Counters = Counters{}
}

func (s *Simulator) T() int           { return s.t }
func (s *Simulator) Status() Status   { return s.status }
func (s *Simulator) Stopped() bool    { return s.status == Stopped }
func (s *Simulator) Config() Config   { return s.cfg }
func (s *Simulator) Params() Params   { return s.state.Params }
func (s *Simulator) Rule() Rule       { return s.rule }
func (s *Simulator) Series() *Series  { return s.series }
func (s *Simulator) Size() int        { return s.state.Grid.Size() }
func (s *Simulator) Counters() Counters {
	return s.state.Counters
}

// Observables returns the cached summaries.
func (s *Simulator) Observables() Observables { return s.state.Obs }

// Recompute measures the observables from scratch without touching the
// cache. It exists to cross-check the incremental bookkeeping.
func (s *Simulator) Recompute() Observables { return s.rule.Measure(&s.state) }

// Snapshot returns a copy of the grid as a 2D array.
func (s *Simulator) Snapshot() [][]int { return s.state.Grid.Rows() }

// Grid exposes the live grid for read-only rendering.
func (s *Simulator) Grid() *lattice.Grid { return s.state.Grid }

// Summary describes the grid composition and cached observables.
func (s *Simulator) Summary() string { return s.rule.Describe(&s.state) }
