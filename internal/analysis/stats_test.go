package analysis_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/spinlattice/internal/analysis"
	"github.com/san-kum/spinlattice/internal/dynamo"
	"github.com/san-kum/spinlattice/internal/dynamo/dynamotest"
)

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

var _ = Describe("Moments", func() {
	It("computes mean and population variance", func() {
		vals := []float64{1, 2, 3, 4}
		Expect(analysis.Mean(vals)).To(Equal(2.5))
		Expect(analysis.Variance(vals)).To(BeNumerically("~", 1.25, 1e-12))
		Expect(analysis.StdErr(vals)).To(BeNumerically("~", math.Sqrt(1.25)/2, 1e-12))
	})

	It("returns zero for an empty series", func() {
		Expect(analysis.Mean(nil)).To(BeZero())
		Expect(analysis.Variance(nil)).To(BeZero())
		Expect(analysis.StdErr(nil)).To(BeZero())
	})

	It("divides the fluctuation by size, k and the right power of T", func() {
		vals := []float64{1, -1}
		Expect(analysis.Fluctuation(vals)).To(Equal(1.0))
		Expect(analysis.Susceptibility(vals, 2, 1, 2)).To(BeNumerically("~", 0.25, 1e-12))
		Expect(analysis.HeatCapacity(vals, 2, 1, 2)).To(BeNumerically("~", 0.125, 1e-12))
	})
})

var _ = Describe("Bootstrap", func() {
	It("is zero for a constant series regardless of kSub", func() {
		vals := repeat(3, 50)
		fn := func(v []float64) float64 { return analysis.Susceptibility(v, 16, 1, 2.2) }

		Expect(fn(vals)).To(BeZero())
		Expect(analysis.HeatCapacity(vals, 16, 1, 2.2)).To(BeZero())
		for _, kSub := range []int{1, 10, 100} {
			Expect(analysis.Bootstrap(vals, fn, kSub, dynamo.NewRandom(7))).To(BeZero())
		}
	})

	It("reports the spread of the statistic across resamples", func() {
		rng := dynamotest.NewScripted([]int{0, 0, 1, 1}, nil)
		err := analysis.Bootstrap([]float64{1, -1}, analysis.Mean, 2, rng)

		Expect(err).To(BeNumerically("~", 1, 1e-12))
		Expect(rng.IntDraws).To(Equal(4))
	})

	It("draws len(vals) indices per resample", func() {
		rng := dynamotest.NewScripted(make([]int, 15), nil)
		analysis.Bootstrap([]float64{1, 2, 3, 4, 5}, analysis.Mean, 3, rng)
		Expect(rng.IntDraws).To(Equal(15))
	})

	It("has no error for an empty series", func() {
		Expect(analysis.Bootstrap(nil, analysis.Mean, 10, dynamo.NewRandom(1))).To(BeZero())
	})
})

var _ = Describe("Resample", func() {
	It("picks values at the drawn indices without touching the input", func() {
		vals := []float64{10, 20, 30}
		rng := dynamotest.NewScripted([]int{2, 2, 0}, nil)

		Expect(analysis.Resample(vals, rng)).To(Equal([]float64{30, 30, 10}))
		Expect(vals).To(Equal([]float64{10, 20, 30}))
		Expect(rng.IntDraws).To(Equal(3))
	})
})

var _ = Describe("Autocorrelation", func() {
	It("is one at lag zero and anti-correlated for an alternating series", func() {
		vals := []float64{1, -1, 1, -1, 1, -1, 1, -1}
		acf := analysis.Autocorrelation(vals, 3)

		Expect(acf).To(HaveLen(4))
		Expect(acf[0]).To(BeNumerically("~", 1, 1e-9))
		Expect(acf[1]).To(BeNumerically("~", -7.0/8, 1e-9))
		Expect(acf[2]).To(BeNumerically("~", 6.0/8, 1e-9))
		Expect(analysis.CorrelationTime(vals)).To(Equal(1))
	})

	It("has no autocorrelation for a constant series", func() {
		Expect(analysis.Autocorrelation(repeat(2, 10), 5)).To(BeNil())
		Expect(analysis.CorrelationTime(repeat(2, 10))).To(BeZero())
	})

	It("clamps maxLag to the series length", func() {
		Expect(analysis.Autocorrelation([]float64{1, 2, 3}, 10)).To(HaveLen(3))
	})
})

var _ = Describe("PowerSpectrum", func() {
	It("has no power in a constant signal", func() {
		ps := analysis.PowerSpectrum([]float64{1, 1, 1, 1})
		Expect(ps).To(HaveLen(3))
		for _, p := range ps {
			Expect(p).To(BeNumerically("~", 0, 1e-9))
		}
	})

	It("peaks at the Nyquist bin for an alternating signal", func() {
		ps := analysis.PowerSpectrum([]float64{1, -1, 1, -1, 1, -1, 1, -1})
		Expect(ps[4]).To(BeNumerically("~", 8, 1e-9))
		Expect(ps[1]).To(BeNumerically("~", 0, 1e-9))
	})

	It("is empty for an empty series", func() {
		Expect(analysis.PowerSpectrum(nil)).To(BeNil())
	})
})
