package physics

import (
	"fmt"

	"github.com/san-kum/spinlattice/internal/dynamo"
	"github.com/san-kum/spinlattice/internal/sim"
)

// Epidemic site states.
const (
	Susceptible = 0
	Infected    = 1
	Recovered   = -1
	Immune      = 2
)

// EpidemicStates lists the states in proportion order (S, I, R, Im).
var EpidemicStates = []int{Susceptible, Infected, Recovered, Immune}

// SIRS updates one random site per proposal: S->I with probability P1
// when a neighbour is infected, I->R with P2, R->S with P3. Immune sites
// never change.
type SIRS struct{}

func NewSIRS() *SIRS { return &SIRS{} }

func (r *SIRS) Name() string { return "sirs" }

func (r *SIRS) Validate(st *sim.State) error {
	probs := []struct {
		name string
		v    float64
	}{
		{"p1", st.Params.P1},
		{"p2", st.Params.P2},
		{"p3", st.Params.P3},
	}
	for _, p := range probs {
		if p.v < 0 || p.v > 1 {
			return dynamo.ConfigErrorf(p.name, p.v, "probability outside [0, 1]")
		}
	}
	xDim, yDim := st.Grid.Dims()
	for i := 0; i < xDim; i++ {
		for j := 0; j < yDim; j++ {
			switch v := st.Grid.Get(i, j); v {
			case Susceptible, Infected, Recovered, Immune:
			default:
				return dynamo.ConfigErrorf("grid", v, "site (%d,%d) is not an epidemic state", i, j)
			}
		}
	}
	return nil
}

func (r *SIRS) Columns() []string { return []string{"I"} }

func (r *SIRS) ProposalsPerSweep(size int) int { return size }

func (r *SIRS) Measure(st *sim.State) sim.Observables {
	return sim.Observables{Infected: st.Grid.Count(Infected)}
}

func (r *SIRS) Sample(st *sim.State) []float64 {
	return []float64{float64(st.Obs.Infected)}
}

func (r *SIRS) Absorbed(st *sim.State) bool { return st.Obs.Infected == 0 }

// Propose visits one random site. A susceptible site scans its neighbours
// in Grid.Neighbors order and makes a single infection draw at the first
// infected one; infected and recovered sites make one draw each.
func (r *SIRS) Propose(st *sim.State, rng dynamo.Random) {
	xDim, yDim := st.Grid.Dims()
	i := rng.IntN(xDim)
	j := rng.IntN(yDim)
	st.Counters.Proposals++

	switch st.Grid.Get(i, j) {
	case Susceptible:
		for _, n := range st.Grid.Neighbors(i, j) {
			if st.Grid.Get(n.I, n.J) != Infected {
				continue
			}
			if rng.Float64() < st.Params.P1 {
				st.Grid.Set(i, j, Infected)
				st.Obs.Infected++
				st.Counters.Accepted++
			}
			break
		}
	case Infected:
		if rng.Float64() < st.Params.P2 {
			st.Grid.Set(i, j, Recovered)
			st.Obs.Infected--
			st.Counters.Accepted++
		}
	case Recovered:
		if rng.Float64() < st.Params.P3 {
			st.Grid.Set(i, j, Susceptible)
			st.Counters.Accepted++
		}
	}
}

func (r *SIRS) Describe(st *sim.State) string {
	xDim, yDim := st.Grid.Dims()
	c := st.Grid.Composition()
	return fmt.Sprintf("Array has shape (%d, %d), contains %d S cells, %d I, %d R, and %d Im entries.",
		xDim, yDim, c[Susceptible], c[Infected], c[Recovered], c[Immune])
}
