// Package physics provides the site-update dynamics for lattice models.
//
// Each rule implements [sim.Rule]:
//
//   - [Glauber]: single-spin-flip Metropolis dynamics for the Ising model
//   - [Kawasaki]: spin-exchange dynamics conserving magnetisation
//   - [SIRS]: four-state epidemic dynamics with immune sites
//
// The Ising rules share an [EnergyModel] that provides the total energy of
// a grid and closed-form costs of local moves. Accepted moves update the
// cached energy and magnetisation by the exact delta, so a sweep never
// rescans the grid:
//
//	model := physics.EnergyModel{J: 1}
//	dE := model.FlipCost(grid, i, j)
//	if physics.Accept(dE, k*T, rng) {
//	    grid.Flip(i, j)
//	}
//
// [SIRS] also implements [sim.Absorber]: once no site is infected the run
// is terminal.
package physics
