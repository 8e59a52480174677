package dynamo

import "math/rand/v2"

// Random is the draw source consumed by update rules and estimators.
// Float64 returns a uniform value in [0, 1); IntN returns a uniform integer
// in [0, n). *rand.Rand satisfies it.
type Random interface {
	Float64() float64
	IntN(n int) int
}

// NewRandom returns a deterministic PCG-backed source for seed.
func NewRandom(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0))
}
