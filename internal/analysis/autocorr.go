package analysis

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// Autocorrelation returns the normalised autocorrelation of vals for lags
// 0..maxLag, computed through the power spectrum of the mean-removed
// series. A constant series has no fluctuations and yields nil.
func Autocorrelation(vals []float64, maxLag int) []float64 {
	n := len(vals)
	if n == 0 || maxLag < 0 {
		return nil
	}
	if maxLag >= n {
		maxLag = n - 1
	}

	// Zero padding to 2n keeps the correlation from wrapping around.
	padded := make([]float64, 2*n)
	copy(padded, centre(vals))
	coeffs := fft.FFTReal(padded)
	for i, v := range coeffs {
		coeffs[i] = complex(real(v)*real(v)+imag(v)*imag(v), 0)
	}
	raw := fft.IFFT(coeffs)

	c0 := real(raw[0])
	if c0 <= 1e-12*float64(n) {
		return nil
	}
	acf := make([]float64, maxLag+1)
	for lag := range acf {
		acf[lag] = real(raw[lag]) / c0
	}
	return acf
}

// CorrelationTime is the first lag at which the autocorrelation falls
// below 1/e, or -1 if it never does within the series. A constant series
// has correlation time 0.
func CorrelationTime(vals []float64) int {
	acf := Autocorrelation(vals, len(vals)-1)
	if acf == nil {
		return 0
	}
	threshold := 1 / math.E
	for lag, c := range acf {
		if c < threshold {
			return lag
		}
	}
	return -1
}
