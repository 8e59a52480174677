package physics

import (
	"github.com/san-kum/spinlattice/internal/dynamo"
	"github.com/san-kum/spinlattice/internal/lattice"
	"github.com/san-kum/spinlattice/internal/sim"
)

// Kawasaki proposes exchanging the spins of two distinct random sites,
// which conserves magnetisation.
type Kawasaki struct {
	ising
}

func NewKawasaki() *Kawasaki { return &Kawasaki{} }

func (k *Kawasaki) Name() string { return "kawasaki" }

func (k *Kawasaki) Validate(st *sim.State) error {
	if st.Grid.Size() < 2 {
		return dynamo.ConfigErrorf("size", st.Grid.Size(), "pair exchange needs at least two sites")
	}
	return k.ising.Validate(st)
}

// ProposalsPerSweep is half the size since each move touches two sites.
func (k *Kawasaki) ProposalsPerSweep(size int) int { return size / 2 }

// Propose draws i, i', j, j' until the two sites differ. Equal spins make
// the move a no-op with no acceptance draw.
func (k *Kawasaki) Propose(st *sim.State, rng dynamo.Random) {
	xDim, yDim := st.Grid.Dims()
	var a, b lattice.Site
	for a == b {
		a.I, b.I = rng.IntN(xDim), rng.IntN(xDim)
		a.J, b.J = rng.IntN(yDim), rng.IntN(yDim)
	}

	st.Counters.Proposals++
	if st.Grid.Get(a.I, a.J) == st.Grid.Get(b.I, b.J) {
		return
	}
	dE := EnergyModel{J: st.Params.J}.PairExchangeCost(st.Grid, a, b)
	if !Accept(dE, kT(st.Params), rng) {
		return
	}
	st.Grid.Flip(a.I, a.J)
	st.Grid.Flip(b.I, b.J)
	st.Obs.Energy += dE
	st.Counters.Accepted++
}
