package sim

import (
	"context"
	"sync"
)

// Factory builds an independent simulator for one seed.
type Factory func(seed int64) (*Simulator, error)

// Ensemble runs numRuns independent simulators with consecutive seeds.
// Each goroutine owns its simulator exclusively.
type Ensemble struct {
	build     Factory
	numRuns   int
	seedStart int64
}

func NewEnsemble(build Factory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart}
}

// Run builds every member, runs each for sweeps sweeps and returns them in
// seed order.
func (e *Ensemble) Run(ctx context.Context, sweeps int) ([]*Simulator, error) {
	sims := make([]*Simulator, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			s, err := e.build(e.seedStart + int64(idx))
			if err != nil {
				errs[idx] = err
				return
			}
			sims[idx] = s
			_, errs[idx] = s.Run(ctx, sweeps)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return sims, nil
}
