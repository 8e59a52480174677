// Package analysis turns recorded measurement series into the statistics
// reported for a run.
//
//   - [Mean], [Variance], [Fluctuation]: moments of a series
//   - [Susceptibility], [HeatCapacity]: fluctuation-response estimates
//   - [Bootstrap]: resampling error of any derived statistic
//   - [Ising], [Epidemic]: per-model reports
//   - [Autocorrelation], [CorrelationTime], [PowerSpectrum]: sample spacing diagnostics
//
// # Bootstrap errors
//
// The error on a derived quantity is the spread of that quantity across
// kSub resamples drawn with replacement:
//
//	errX := analysis.Bootstrap(mags, func(v []float64) float64 {
//	    return analysis.Susceptibility(v, size, k, T)
//	}, 100, rng)
package analysis
