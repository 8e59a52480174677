package lattice

import (
	"math"

	"github.com/san-kum/spinlattice/internal/dynamo"
)

// ProportionTolerance is the slack allowed when proportions sum above 1.
const ProportionTolerance = 1e-6

// Uniform returns a grid with every site set to v.
func Uniform(xDim, yDim, v int) (*Grid, error) {
	g, err := New(xDim, yDim)
	if err != nil {
		return nil, err
	}
	for i := range g.cells {
		g.cells[i] = v
	}
	return g, nil
}

// Split fills the first half of the sites (row-major order) with first and
// the remainder with second.
func Split(xDim, yDim, first, second int) (*Grid, error) {
	g, err := New(xDim, yDim)
	if err != nil {
		return nil, err
	}
	half := len(g.cells) / 2
	for i := range g.cells {
		if i < half {
			g.cells[i] = first
		} else {
			g.cells[i] = second
		}
	}
	return g, nil
}

// RandomSpins sets each site independently to +1 or -1 with equal odds,
// one Float64 draw per site.
func RandomSpins(xDim, yDim int, rng dynamo.Random) (*Grid, error) {
	g, err := New(xDim, yDim)
	if err != nil {
		return nil, err
	}
	for i := range g.cells {
		if rng.Float64() < 0.5 {
			g.cells[i] = -1
		} else {
			g.cells[i] = 1
		}
	}
	return g, nil
}

// StateCounts converts per-state target fractions into exact site counts
// for a grid of size sites. Each count is the rounded product; any rounding
// remainder is absorbed by the first state.
func StateCounts(size int, fractions []float64) ([]int, error) {
	if len(fractions) == 0 {
		return nil, dynamo.ConfigErrorf("proportions", fractions, "no states given")
	}
	total := 0.0
	for i, f := range fractions {
		if f < 0 || math.IsNaN(f) {
			return nil, dynamo.ConfigErrorf("proportions", fractions, "entry %d is negative", i)
		}
		total += f
	}
	if total > 1+ProportionTolerance {
		return nil, dynamo.ConfigErrorf("proportions", fractions, "sum to %.6f, more than 1", total)
	}

	counts := make([]int, len(fractions))
	sum := 0
	for i, f := range fractions {
		counts[i] = int(math.RoundToEven(float64(size) * f))
		sum += counts[i]
	}
	counts[0] += size - sum
	// Overshoot beyond what the first state holds is taken from the others.
	for k := len(counts) - 1; counts[0] < 0 && k > 0; k-- {
		take := min(counts[k], -counts[0])
		counts[k] -= take
		counts[0] += take
	}
	return counts, nil
}

// Proportional lays out states with the counts given by fractions and
// shuffles them uniformly with rng.
func Proportional(xDim, yDim int, states []int, fractions []float64, rng dynamo.Random) (*Grid, error) {
	if len(states) != len(fractions) {
		return nil, dynamo.ConfigErrorf("proportions", fractions, "want %d entries, got %d", len(states), len(fractions))
	}
	g, err := New(xDim, yDim)
	if err != nil {
		return nil, err
	}
	counts, err := StateCounts(g.Size(), fractions)
	if err != nil {
		return nil, err
	}

	idx := 0
	for s, n := range counts {
		for k := 0; k < n; k++ {
			g.cells[idx] = states[s]
			idx++
		}
	}
	for i := len(g.cells) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		g.cells[i], g.cells[j] = g.cells[j], g.cells[i]
	}
	return g, nil
}
