package physics

import (
	"fmt"

	"github.com/san-kum/spinlattice/internal/dynamo"
	"github.com/san-kum/spinlattice/internal/sim"
)

// Spin values of the Ising family.
const (
	SpinUp   = 1
	SpinDown = -1
)

// ising holds what Glauber and Kawasaki share.
type ising struct{}

func (ising) Validate(st *sim.State) error {
	p := st.Params
	if p.K <= 0 {
		return dynamo.DomainErrorf("k", p.K, "Boltzmann scale must be positive")
	}
	if p.T <= 0 {
		return dynamo.DomainErrorf("T", p.T, "temperature must be positive")
	}
	xDim, yDim := st.Grid.Dims()
	// A dimension of 1 makes a site its own neighbour.
	if xDim < 2 {
		return dynamo.ConfigErrorf("xDim", xDim, "Ising dynamics need both dimensions >= 2")
	}
	if yDim < 2 {
		return dynamo.ConfigErrorf("yDim", yDim, "Ising dynamics need both dimensions >= 2")
	}
	for i := 0; i < xDim; i++ {
		for j := 0; j < yDim; j++ {
			if v := st.Grid.Get(i, j); v != SpinUp && v != SpinDown {
				return dynamo.ConfigErrorf("grid", v, "site (%d,%d) is not a spin", i, j)
			}
		}
	}
	return nil
}

func (ising) Columns() []string { return []string{"Energy", "Magnetisation"} }

func (ising) Measure(st *sim.State) sim.Observables {
	return sim.Observables{
		Energy:        EnergyModel{J: st.Params.J}.TotalEnergy(st.Grid),
		Magnetisation: float64(st.Grid.Sum()),
	}
}

func (ising) Sample(st *sim.State) []float64 {
	return []float64{st.Obs.Energy, st.Obs.Magnetisation}
}

func (ising) Describe(st *sim.State) string {
	xDim, yDim := st.Grid.Dims()
	return fmt.Sprintf("Array has shape (%d, %d), contains %d +1 entries and %d -1 entries.\nEnergy: %g units.\nMagnetisation: %g",
		xDim, yDim, st.Grid.Count(SpinUp), st.Grid.Count(SpinDown), st.Obs.Energy, st.Obs.Magnetisation)
}

func kT(p sim.Params) float64 { return p.K * p.T }
