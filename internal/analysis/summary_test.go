package analysis_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/spinlattice/internal/analysis"
	"github.com/san-kum/spinlattice/internal/dynamo"
	"github.com/san-kum/spinlattice/internal/sim"
)

var _ = Describe("Ising summary", func() {
	params := sim.Params{J: 1, K: 1, T: 2}

	It("rejects an empty series", func() {
		series := sim.NewSeries("Energy", "Magnetisation")
		_, err := analysis.Ising(series, 4, params, 10, dynamo.NewRandom(1))
		Expect(err).To(MatchError(dynamo.ErrEmptySeries))
	})

	It("rejects a non-positive temperature", func() {
		series := sim.NewSeries("Energy", "Magnetisation")
		series.Append(1, -8, 4)
		_, err := analysis.Ising(series, 4, sim.Params{J: 1, K: 1}, 10, dynamo.NewRandom(1))
		Expect(err).To(MatchError(dynamo.ErrNumericDomain))
	})

	It("reports means, responses and errors", func() {
		series := sim.NewSeries("Energy", "Magnetisation")
		series.Append(10, -8, 4)
		series.Append(20, -4, -4)

		s, err := analysis.Ising(series, 2, params, 50, dynamo.NewRandom(3))
		Expect(err).NotTo(HaveOccurred())

		Expect(s.Energy).To(Equal(-6.0))
		Expect(s.Magnetisation).To(BeZero())
		Expect(s.HeatCapacity).To(BeNumerically("~", 4.0/(2*4), 1e-12))
		Expect(s.Susceptibility).To(BeNumerically("~", 16.0/(2*2), 1e-12))
		Expect(s.ErrEnergy).To(BeNumerically("~", 2/math.Sqrt2, 1e-12))
		Expect(s.ErrHeat).To(BeNumerically(">=", 0))
		Expect(s.Samples).To(Equal(2))

		e, m, c, x, errC, errX, size, n := s.Tuple()
		Expect([]float64{e, m, c, x, errC, errX}).To(Equal([]float64{
			s.Energy, s.Magnetisation, s.HeatCapacity, s.Susceptibility, s.ErrHeat, s.ErrSuscept,
		}))
		Expect(size).To(Equal(2))
		Expect(n).To(Equal(2))
	})

	It("gives zero responses and errors for a frozen run", func() {
		series := sim.NewSeries("Energy", "Magnetisation")
		for t := 1; t <= 20; t++ {
			series.Append(t, -32, 16)
		}
		s, err := analysis.Ising(series, 16, params, 100, dynamo.NewRandom(5))
		Expect(err).NotTo(HaveOccurred())
		Expect(s.HeatCapacity).To(BeZero())
		Expect(s.Susceptibility).To(BeZero())
		Expect(s.ErrHeat).To(BeZero())
		Expect(s.ErrSuscept).To(BeZero())
	})
})

var _ = Describe("Epidemic summary", func() {
	It("treats a series that hits zero as absorbed", func() {
		s := analysis.EpidemicFromCounts([]float64{5, 2, 0}, 100)
		Expect(s.AvPsi).To(Equal(0.0))
		Expect(s.VarPsi).To(Equal(0.0))
		Expect(s.AvI).To(Equal(0.0))
		Expect(s.VarI).To(Equal(0.0))
		Expect(s.Absorbed).To(BeTrue())
		Expect(s.Samples).To(Equal(3))
	})

	It("reports zeros for an empty series", func() {
		series := sim.NewSeries("I")
		s, err := analysis.Epidemic(series, 100)
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal(analysis.EpidemicSummary{Size: 100}))
	})

	It("normalises the infected count by the lattice size", func() {
		series := sim.NewSeries("I")
		series.Append(1, 2)
		series.Append(2, 4)

		s, err := analysis.Epidemic(series, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.AvPsi).To(BeNumerically("~", 0.3, 1e-12))
		Expect(s.VarPsi).To(BeNumerically("~", 0.01, 1e-12))
		Expect(s.AvI).To(Equal(3.0))
		Expect(s.VarI).To(Equal(1.0))
		Expect(s.ErrPsi).To(BeNumerically("~", 0.1/math.Sqrt2, 1e-12))

		avPsi, varPsi, avI, varI, n, samples := s.Tuple()
		Expect([]float64{avPsi, varPsi, avI, varI}).To(Equal([]float64{s.AvPsi, s.VarPsi, 3, 1}))
		Expect(n).To(Equal(10))
		Expect(samples).To(Equal(2))
	})

	It("requires an I column", func() {
		_, err := analysis.Epidemic(sim.NewSeries("Energy"), 10)
		Expect(err).To(MatchError(ContainSubstring("no I column")))
	})
})
