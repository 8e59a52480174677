package optim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/spinlattice/internal/automation"
	"github.com/san-kum/spinlattice/internal/config"
	"github.com/san-kum/spinlattice/internal/dynamo"
	"github.com/san-kum/spinlattice/internal/experiment"
)

// GridSearch runs every combination of parameter values as one sweep and
// reports the point with the best value of a summary quantity.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	// Maximise selects the largest value instead of the smallest.
	Maximise bool
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Points enumerates the grid with the last parameter varying fastest.
func (g *GridSearch) Points() []automation.Point {
	var points []automation.Point
	g.pointsRecursive(0, make(map[string]float64), &points)
	return points
}

func (g *GridSearch) pointsRecursive(depth int, current map[string]float64, points *[]automation.Point) {
	if depth == len(g.paramNames) {
		p := make(map[string]float64, len(current))
		for k, v := range current {
			p[k] = v
		}
		*points = append(*points, automation.Point{Params: p})
		return
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[name] = val
		g.pointsRecursive(depth+1, current, points)
	}
	delete(current, name)
}

// Search runs the grid against base and returns the best parameters and
// the value of quantity there.
func (g *GridSearch) Search(
	ctx context.Context,
	base *config.Config,
	reg *experiment.Registry,
	quantity string,
	opts automation.Options,
) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, dynamo.ConfigErrorf("ranges", len(g.ranges), "expected one range per parameter (%d)", len(g.paramNames))
	}

	sw := &automation.Sweep{
		ID:     fmt.Sprintf("search_%s", time.Now().Format("20060102-150405")),
		Kind:   "search",
		Base:   base,
		Points: g.Points(),
	}
	results, err := automation.RunSweep(ctx, sw, reg, opts)
	if err != nil {
		return nil, 0, err
	}

	best, val, err := Best(results, quantity, g.Maximise)
	if err != nil {
		return nil, 0, err
	}
	return best.Point.Params, val, nil
}

// Best returns the result with the extreme value of quantity. Results that
// do not report the quantity are skipped.
func Best(results []automation.SweepResult, quantity string, maximise bool) (automation.SweepResult, float64, error) {
	best := math.Inf(1)
	if maximise {
		best = math.Inf(-1)
	}
	idx := -1
	for i, r := range results {
		v, ok := r.Result.Quantities()[quantity]
		if !ok || math.IsNaN(v) {
			continue
		}
		if (maximise && v > best) || (!maximise && v < best) {
			best, idx = v, i
		}
	}
	if idx < 0 {
		return automation.SweepResult{}, 0, fmt.Errorf("no run reported %s: %w", quantity, dynamo.ErrEmptySeries)
	}
	return results[idx], best, nil
}

// Peak is Best with maximise set: the location of a heat capacity or
// susceptibility peak in a temperature scan, or of the variance peak in
// an epidemic cut.
func Peak(results []automation.SweepResult, quantity string) (automation.SweepResult, float64, error) {
	return Best(results, quantity, true)
}
