package analysis

import (
	"math"

	"github.com/san-kum/spinlattice/internal/dynamo"
)

// Statistic maps a series to a single derived value.
type Statistic func(vals []float64) float64

// Bootstrap estimates the error on fn(vals) as the standard deviation of
// fn across kSub resamples, each len(vals) draws with replacement.
// kSub <= 0 uses DefaultKSub. An empty series has no error.
func Bootstrap(vals []float64, fn Statistic, kSub int, rng dynamo.Random) float64 {
	n := len(vals)
	if n == 0 {
		return 0
	}
	if kSub <= 0 {
		kSub = DefaultKSub
	}

	results := make([]float64, kSub)
	for r := range results {
		results[r] = fn(Resample(vals, rng))
	}
	return math.Sqrt(Fluctuation(results))
}

// Resample draws one bootstrap resample of vals.
func Resample(vals []float64, rng dynamo.Random) []float64 {
	out := make([]float64, len(vals))
	for i := range out {
		out[i] = vals[rng.IntN(len(vals))]
	}
	return out
}
