package viz

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/san-kum/spinlattice/internal/dynamo"
	"github.com/san-kum/spinlattice/internal/sim"
)

const (
	chartWidth  = 1024
	chartHeight = 512
)

// SeriesChart renders every column of a recorded series against time as a
// PNG line chart.
func SeriesChart(w io.Writer, title string, s *sim.Series) error {
	if s == nil || s.Len() < 2 {
		return fmt.Errorf("series chart %s: %w", title, dynamo.ErrEmptySeries)
	}
	xs := make([]float64, s.Len())
	for i, t := range s.Times() {
		xs[i] = float64(t)
	}
	ys := make(map[string][]float64)
	for k, name := range s.Columns() {
		ys[name] = s.Values(k)
	}
	return lineChart(w, title, "sweep", xs, ys)
}

// SweepChart renders one line per named quantity against the swept
// parameter.
func SweepChart(w io.Writer, title, xLabel string, xs []float64, ys map[string][]float64) error {
	if len(xs) < 2 {
		return fmt.Errorf("sweep chart %s: %w", title, dynamo.ErrEmptySeries)
	}
	return lineChart(w, title, xLabel, xs, ys)
}

func lineChart(w io.Writer, title, xLabel string, xs []float64, ys map[string][]float64) error {
	names := make([]string, 0, len(ys))
	for name := range ys {
		names = append(names, name)
	}
	sort.Strings(names)

	lo, hi := math.Inf(1), math.Inf(-1)
	var series []chart.Series
	for _, name := range names {
		vals := ys[name]
		if len(vals) != len(xs) {
			return fmt.Errorf("chart %s: column %s has %d values for %d points", title, name, len(vals), len(xs))
		}
		for _, v := range vals {
			lo, hi = min(lo, v), max(hi, v)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    name,
			XValues: xs,
			YValues: vals,
			Style:   chart.Style{StrokeWidth: 2.0},
		})
	}

	graph := chart.Chart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  xLabel,
			Style: chart.Style{FontSize: 10.0},
		},
		YAxis: chart.YAxis{
			Style: chart.Style{FontSize: 10.0},
		},
		Series: series,
	}
	// go-chart rejects a zero-height value range.
	if lo == hi {
		graph.YAxis.Range = &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	if len(series) > 1 {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chart %s: %w", title, err)
	}
	return nil
}
