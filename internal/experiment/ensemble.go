package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/spinlattice/internal/config"
	"github.com/san-kum/spinlattice/internal/sim"
)

// RunEnsemble runs n copies of cfg concurrently with seeds cfg.Seed,
// cfg.Seed+1, ... and returns their results in seed order.
func RunEnsemble(ctx context.Context, cfg *config.Config, reg *Registry, n int) ([]*Result, error) {
	if n < 1 {
		n = 1
	}
	exps := make([]*Experiment, n)
	build := func(seed int64) (*sim.Simulator, error) {
		c := cfg.Clone()
		c.Seed = seed
		c.Label = fmt.Sprintf("%s-%d", cfg.Label, seed)
		e, err := New(c, reg)
		if err != nil {
			return nil, err
		}
		exps[seed-cfg.Seed] = e
		return e.Simulator(), nil
	}

	if _, err := sim.NewEnsemble(build, n, cfg.Seed).Run(ctx, cfg.Sweeps); err != nil {
		return nil, err
	}

	results := make([]*Result, n)
	for i, e := range exps {
		res, err := e.Analyse()
		if err != nil {
			return nil, err
		}
		results[i] = res
	}
	return results, nil
}
