package metrics

import (
	"math"

	"github.com/san-kum/spinlattice/internal/sim"
)

// AbsMagnetisation is the sweep average of |M|/N, read from the cache.
type AbsMagnetisation struct {
	name    string
	sum     float64
	samples int
}

func NewAbsMagnetisation() *AbsMagnetisation {
	return &AbsMagnetisation{name: "abs_magnetisation"}
}

func (m *AbsMagnetisation) Name() string { return m.name }

func (m *AbsMagnetisation) OnSweep(st *sim.State, t int) {
	m.sum += math.Abs(st.Obs.Magnetisation) / float64(st.Grid.Size())
	m.samples++
}

func (m *AbsMagnetisation) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *AbsMagnetisation) Reset() {
	m.sum = 0
	m.samples = 0
}

// InfectedFraction is the sweep average of I/N. Once a run is absorbed the
// metric keeps the last value.
type InfectedFraction struct {
	name    string
	sum     float64
	samples int
	peak    float64
}

func NewInfectedFraction() *InfectedFraction {
	return &InfectedFraction{name: "infected_fraction"}
}

func (f *InfectedFraction) Name() string { return f.name }

func (f *InfectedFraction) OnSweep(st *sim.State, t int) {
	psi := float64(st.Obs.Infected) / float64(st.Grid.Size())
	f.sum += psi
	f.samples++
	f.peak = math.Max(f.peak, psi)
}

func (f *InfectedFraction) Value() float64 {
	if f.samples == 0 {
		return 0
	}
	return f.sum / float64(f.samples)
}

// Peak is the largest infected fraction seen.
func (f *InfectedFraction) Peak() float64 { return f.peak }

func (f *InfectedFraction) Reset() {
	f.sum = 0
	f.samples = 0
	f.peak = 0
}
