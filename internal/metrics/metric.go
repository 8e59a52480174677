package metrics

import (
	"sort"

	"github.com/san-kum/spinlattice/internal/sim"
)

// Metric accumulates a scalar over the sweeps of a run. Every Metric is a
// sim.Observer and is attached with Simulator.AddObserver.
type Metric interface {
	sim.Observer
	Name() string
	Value() float64
	Reset()
}

// Set fans one sweep out to several metrics.
type Set []Metric

func (s Set) OnSweep(st *sim.State, t int) {
	for _, m := range s {
		m.OnSweep(st, t)
	}
}

func (s Set) Reset() {
	for _, m := range s {
		m.Reset()
	}
}

// Values collects the current value of every metric by name.
func (s Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s))
	for _, m := range s {
		out[m.Name()] = m.Value()
	}
	return out
}

// Names returns the metric names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for _, m := range s {
		names = append(names, m.Name())
	}
	sort.Strings(names)
	return names
}
