package analysis

import (
	"fmt"
	"math"
	"slices"

	"github.com/san-kum/spinlattice/internal/dynamo"
	"github.com/san-kum/spinlattice/internal/sim"
)

// IsingSummary is the report for a spin run.
type IsingSummary struct {
	Energy         float64 `json:"energy"`
	Magnetisation  float64 `json:"magnetisation"`
	HeatCapacity   float64 `json:"heat_capacity"`
	Susceptibility float64 `json:"susceptibility"`
	ErrEnergy      float64 `json:"err_energy"`
	ErrMagnet      float64 `json:"err_magnetisation"`
	ErrHeat        float64 `json:"err_heat_capacity"`
	ErrSuscept     float64 `json:"err_susceptibility"`
	Size           int     `json:"size"`
	Samples        int     `json:"samples"`
}

// Tuple returns (E, M, C, X, errC, errX, size, n).
func (s IsingSummary) Tuple() (float64, float64, float64, float64, float64, float64, int, int) {
	return s.Energy, s.Magnetisation, s.HeatCapacity, s.Susceptibility, s.ErrHeat, s.ErrSuscept, s.Size, s.Samples
}

// Ising summarises a series with Energy and Magnetisation columns.
func Ising(series *sim.Series, size int, p sim.Params, kSub int, rng dynamo.Random) (IsingSummary, error) {
	energies, ok := series.Column("Energy")
	if !ok {
		return IsingSummary{}, fmt.Errorf("%w: series has no Energy column", dynamo.ErrConfiguration)
	}
	mags, ok := series.Column("Magnetisation")
	if !ok {
		return IsingSummary{}, fmt.Errorf("%w: series has no Magnetisation column", dynamo.ErrConfiguration)
	}
	if len(energies) == 0 {
		return IsingSummary{}, dynamo.ErrEmptySeries
	}
	if size < 1 {
		return IsingSummary{}, dynamo.ConfigErrorf("size", size, "must be positive")
	}
	if p.K <= 0 || p.T <= 0 {
		return IsingSummary{}, dynamo.DomainErrorf("kT", p.K*p.T, "k and T must be positive")
	}

	heat := func(v []float64) float64 { return HeatCapacity(v, size, p.K, p.T) }
	suscept := func(v []float64) float64 { return Susceptibility(v, size, p.K, p.T) }

	return IsingSummary{
		Energy:         Mean(energies),
		Magnetisation:  Mean(mags),
		HeatCapacity:   heat(energies),
		Susceptibility: suscept(mags),
		ErrEnergy:      StdErr(energies),
		ErrMagnet:      StdErr(mags),
		ErrHeat:        Bootstrap(energies, heat, kSub, rng),
		ErrSuscept:     Bootstrap(mags, suscept, kSub, rng),
		Size:           size,
		Samples:        len(energies),
	}, nil
}

// EpidemicSummary is the report for an epidemic run. Psi is the infected
// fraction I/N.
type EpidemicSummary struct {
	AvPsi    float64 `json:"av_psi"`
	VarPsi   float64 `json:"var_psi"`
	AvI      float64 `json:"av_i"`
	VarI     float64 `json:"var_i"`
	ErrPsi   float64 `json:"err_psi"`
	Absorbed bool    `json:"absorbed"`
	Size     int     `json:"size"`
	Samples  int     `json:"samples"`
}

// Tuple returns (avPsi, varPsi, avI, varI, N, n).
func (s EpidemicSummary) Tuple() (float64, float64, float64, float64, int, int) {
	return s.AvPsi, s.VarPsi, s.AvI, s.VarI, s.Size, s.Samples
}

// Epidemic summarises a series with an I column. A series that is empty
// or ever reaches zero infected reports all moments as zero.
func Epidemic(series *sim.Series, size int) (EpidemicSummary, error) {
	infected, ok := series.Column("I")
	if !ok {
		return EpidemicSummary{}, fmt.Errorf("%w: series has no I column", dynamo.ErrConfiguration)
	}
	if size < 1 {
		return EpidemicSummary{}, dynamo.ConfigErrorf("size", size, "must be positive")
	}
	return EpidemicFromCounts(infected, size), nil
}

// EpidemicFromCounts applies the absorbing convention to raw infected counts.
func EpidemicFromCounts(infected []float64, size int) EpidemicSummary {
	out := EpidemicSummary{Size: size, Samples: len(infected)}
	if len(infected) == 0 || slices.Contains(infected, 0) {
		out.Absorbed = len(infected) > 0
		return out
	}

	psi := make([]float64, len(infected))
	for i, v := range infected {
		psi[i] = v / float64(size)
	}
	out.AvPsi = Mean(psi)
	out.VarPsi = Variance(psi)
	out.AvI = Mean(infected)
	out.VarI = Variance(infected)
	out.ErrPsi = math.Sqrt(out.VarPsi) / math.Sqrt(float64(len(psi)))
	return out
}
