package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/spinlattice/internal/dynamo"
	"github.com/san-kum/spinlattice/internal/sim"
)

// PlotColumn draws one recorded column as a terminal line plot.
func PlotColumn(s *sim.Series, column string, width, height int) (string, error) {
	vals, ok := s.Column(column)
	if !ok {
		return "", fmt.Errorf("plot: no column %q in %v: %w", column, s.Columns(), dynamo.ErrConfiguration)
	}
	if len(vals) == 0 {
		return "", fmt.Errorf("plot %s: %w", column, dynamo.ErrEmptySeries)
	}
	return Plot(vals, column, width, height), nil
}

// Plot draws vals with a caption.
func Plot(vals []float64, caption string, width, height int) string {
	return asciigraph.Plot(vals,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption(caption),
	)
}
