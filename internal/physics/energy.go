package physics

import (
	"math"

	"github.com/san-kum/spinlattice/internal/dynamo"
	"github.com/san-kum/spinlattice/internal/lattice"
)

// EnergyModel evaluates nearest-neighbour Ising energies with coupling J.
type EnergyModel struct {
	J float64
}

// TotalEnergy sums -J*s*(neighbour spins)/2 over every site; the half
// undoes counting each bond from both ends.
func (m EnergyModel) TotalEnergy(g *lattice.Grid) float64 {
	xDim, yDim := g.Dims()
	e := 0.0
	for i := 0; i < xDim; i++ {
		for j := 0; j < yDim; j++ {
			e += -m.J * float64(g.Get(i, j)*g.NeighborSum(i, j)) / 2
		}
	}
	return e
}

// FlipCost is the energy change of flipping (i, j) alone.
func (m EnergyModel) FlipCost(g *lattice.Grid, i, j int) float64 {
	return 2 * m.J * float64(g.Get(i, j)*g.NeighborSum(i, j))
}

// PairExchangeCost is the energy change of swapping two opposite spins.
// The independent flip costs treat a shared bond as broken when it is only
// inverted, so 4J is added back per bond between a and b.
func (m EnergyModel) PairExchangeCost(g *lattice.Grid, a, b lattice.Site) float64 {
	dE := m.FlipCost(g, a.I, a.J) + m.FlipCost(g, b.I, b.J)
	if n := g.Bonds(a, b); n > 0 {
		dE += 4 * m.J * float64(n)
	}
	return dE
}

// AreNeighbors reports periodic adjacency, matching Grid.Neighbors.
func (m EnergyModel) AreNeighbors(g *lattice.Grid, a, b lattice.Site) bool {
	return g.AreNeighbors(a, b)
}

// Boltzmann is the acceptance probability exp(-dE/kT) of an uphill move.
func Boltzmann(dE, kT float64) float64 {
	return math.Exp(-dE / kT)
}

// Accept applies the Metropolis rule. Moves with dE <= 0 are always taken
// without a draw; otherwise exactly one Float64 is drawn and compared with
// the Boltzmann factor. A non-positive kT never accepts dE > 0.
func Accept(dE, kT float64, rng dynamo.Random) bool {
	if dE <= 0 {
		return true
	}
	if kT <= 0 {
		return false
	}
	return rng.Float64() <= Boltzmann(dE, kT)
}
