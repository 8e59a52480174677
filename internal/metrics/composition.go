package metrics

import (
	"fmt"

	"github.com/san-kum/spinlattice/internal/sim"
)

// Fraction is the sweep average of the share of sites holding one state.
type Fraction struct {
	name    string
	state   int
	sum     float64
	samples int
}

func NewFraction(label string, state int) *Fraction {
	return &Fraction{name: fmt.Sprintf("fraction_%s", label), state: state}
}

func (f *Fraction) Name() string { return f.name }

func (f *Fraction) OnSweep(st *sim.State, t int) {
	f.sum += float64(st.Grid.Count(f.state)) / float64(st.Grid.Size())
	f.samples++
}

func (f *Fraction) Value() float64 {
	if f.samples == 0 {
		return 0
	}
	return f.sum / float64(f.samples)
}

func (f *Fraction) Reset() {
	f.sum = 0
	f.samples = 0
}
