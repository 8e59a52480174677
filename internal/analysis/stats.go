package analysis

import "math"

// DefaultKSub is the number of bootstrap resamples used when none is given.
const DefaultKSub = 100

func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// MeanSquare is ⟨x²⟩.
func MeanSquare(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v * v
	}
	return sum / float64(len(vals))
}

// Variance is the population variance, normalised by len(vals).
func Variance(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	m := Mean(vals)
	sum := 0.0
	for _, v := range vals {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(vals))
}

func StdDev(vals []float64) float64 {
	return math.Sqrt(Variance(vals))
}

// StdErr is the standard error on the mean.
func StdErr(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return StdDev(vals) / math.Sqrt(float64(len(vals)))
}

// Fluctuation is ⟨x²⟩ − ⟨x⟩². Cancellation can leave a tiny negative
// value for a constant series; it is clamped to zero.
func Fluctuation(vals []float64) float64 {
	m := Mean(vals)
	f := MeanSquare(vals) - m*m
	if f < 0 && f > -1e-9*(1+m*m) {
		return 0
	}
	return f
}

// Susceptibility is the fluctuation of the magnetisation per site per kT.
func Susceptibility(vals []float64, size int, k, temp float64) float64 {
	return Fluctuation(vals) / (float64(size) * k * temp)
}

// HeatCapacity is the fluctuation of the energy per site per kT².
func HeatCapacity(vals []float64, size int, k, temp float64) float64 {
	return Fluctuation(vals) / (float64(size) * k * temp * temp)
}
