package driver

import (
	"context"
	"sync"
)

// Factory builds an independent driver for one seed.
type Factory func(seed int64) (*Driver, error)

// Ensemble runs independent lineages from consecutive seeds in parallel.
// Lineages never exchange genes; the ensemble only picks the best result.
type Ensemble struct {
	build     Factory
	numRuns   int
	seedStart int64
}

func NewEnsemble(build Factory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart}
}

// Run returns one driver and result per seed, in seed order.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Driver, []*Result, error) {
	drivers := make([]*Driver, e.numRuns)
	for i := range drivers {
		d, err := e.build(e.seedStart + int64(i))
		if err != nil {
			return nil, nil, err
		}
		drivers[i] = d
	}

	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = drivers[idx].Run(ctx, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return drivers, results, err
		}
	}

	return drivers, results, nil
}

// Best returns the index of the result whose final candidate has the lowest
// fitness, or -1.
func Best(results []*Result) int {
	best := -1
	for i, r := range results {
		if r == nil {
			continue
		}
		if best < 0 || r.FinalFitness < results[best].FinalFitness {
			best = i
		}
	}
	return best
}
