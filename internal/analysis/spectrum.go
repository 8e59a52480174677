package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns |FFT| of the mean-removed series for the
// non-negative frequencies.
func PowerSpectrum(vals []float64) []float64 {
	if len(vals) == 0 {
		return nil
	}
	spec := fft.FFTReal(centre(vals))
	ps := make([]float64, len(spec)/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

func centre(vals []float64) []float64 {
	mean := Mean(vals)
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = v - mean
	}
	return out
}
