package metrics

import "github.com/san-kum/spinlattice/internal/sim"

// Acceptance is the fraction of proposals accepted since the last Reset.
type Acceptance struct {
	name string
	base sim.Counters
	last sim.Counters
}

func NewAcceptance() *Acceptance {
	return &Acceptance{name: "acceptance_ratio"}
}

func (a *Acceptance) Name() string { return a.name }

func (a *Acceptance) OnSweep(st *sim.State, t int) {
	// Simulator.Clean zeroes the counters.
	if st.Counters.Proposals < a.base.Proposals {
		a.base = sim.Counters{}
	}
	a.last = st.Counters
}

func (a *Acceptance) Value() float64 {
	proposals := a.last.Proposals - a.base.Proposals
	if proposals <= 0 {
		return 0
	}
	return float64(a.last.Accepted-a.base.Accepted) / float64(proposals)
}

func (a *Acceptance) Reset() {
	a.base = a.last
}
