package sim

import (
	"fmt"

	"github.com/san-kum/spinlattice/internal/dynamo"
	"github.com/san-kum/spinlattice/internal/lattice"
)

// Params carries the model constants. J, K and T belong to the Ising
// family; P1, P2 and P3 are the epidemic transition probabilities.
type Params struct {
	J  float64
	K  float64
	T  float64
	P1 float64
	P2 float64
	P3 float64
}

// ParamNames lists the names accepted by Params.Get and Params.Set.
var ParamNames = []string{"J", "k", "T", "p1", "p2", "p3"}

func (p *Params) field(name string) (*float64, error) {
	switch name {
	case "J":
		return &p.J, nil
	case "k":
		return &p.K, nil
	case "T":
		return &p.T, nil
	case "p1":
		return &p.P1, nil
	case "p2":
		return &p.P2, nil
	case "p3":
		return &p.P3, nil
	}
	return nil, fmt.Errorf("unknown param: %s", name)
}

func (p Params) Get(name string) (float64, error) {
	f, err := p.field(name)
	if err != nil {
		return 0, err
	}
	return *f, nil
}

func (p *Params) Set(name string, value float64) error {
	f, err := p.field(name)
	if err != nil {
		return err
	}
	*f = value
	return nil
}

// Observables are the running scalar summaries kept in step with the grid.
type Observables struct {
	Energy        float64
	Magnetisation float64
	Infected      int
}

// Counters track proposal outcomes for the whole run.
type Counters struct {
	Proposals int64
	Accepted  int64
}

// State is the mutable part of a simulation: the grid, its constants and
// the cached observables. Rules mutate it one proposal at a time.
type State struct {
	Grid     *lattice.Grid
	Params   Params
	Obs      Observables
	Counters Counters
}

// Rule is one site-update dynamics.
type Rule interface {
	Name() string
	// Validate rejects constants the rule cannot use.
	Validate(st *State) error
	// Columns names the values returned by Sample.
	Columns() []string
	ProposalsPerSweep(size int) int
	// Measure recomputes the observables from the grid.
	Measure(st *State) Observables
	// Sample reads the cached observables in Columns order.
	Sample(st *State) []float64
	Propose(st *State, rng dynamo.Random)
	Describe(st *State) string
}

// Absorber is implemented by rules whose dynamics can reach a terminal
// configuration.
type Absorber interface {
	Absorbed(st *State) bool
}

// Observer is notified after every completed sweep.
type Observer interface {
	OnSweep(st *State, t int)
}

// Config is the measurement schedule. A sample is recorded after sweep t
// when Measure is set, t > TEquib and t is a multiple of TCorr.
type Config struct {
	Measure bool
	TEquib  int
	TCorr   int
}

func DefaultConfig() Config {
	return Config{
		Measure: true,
		TEquib:  100,
		TCorr:   10,
	}
}

// Status is the scheduler state.
type Status int

const (
	Running Status = iota
	Stopped
)

func (s Status) String() string {
	if s == Stopped {
		return "stopped"
	}
	return "running"
}
