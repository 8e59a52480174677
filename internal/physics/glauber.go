package physics

import (
	"github.com/san-kum/spinlattice/internal/dynamo"
	"github.com/san-kum/spinlattice/internal/sim"
)

// Glauber proposes single spin flips at uniformly random sites.
type Glauber struct {
	ising
}

func NewGlauber() *Glauber { return &Glauber{} }

func (g *Glauber) Name() string { return "glauber" }

func (g *Glauber) ProposalsPerSweep(size int) int { return size }

// Propose draws i then j, and a Float64 only when the flip costs energy.
func (g *Glauber) Propose(st *sim.State, rng dynamo.Random) {
	xDim, yDim := st.Grid.Dims()
	i := rng.IntN(xDim)
	j := rng.IntN(yDim)

	st.Counters.Proposals++
	dE := EnergyModel{J: st.Params.J}.FlipCost(st.Grid, i, j)
	if !Accept(dE, kT(st.Params), rng) {
		return
	}
	s := st.Grid.Flip(i, j)
	st.Obs.Energy += dE
	st.Obs.Magnetisation += 2 * float64(s)
	st.Counters.Accepted++
}
