package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Ensemble runs independent releases concurrently, one stepper per
// goroutine. Metrics builds a fresh metric set for each run; it may be nil.
type Ensemble struct {
	base    *Simulator
	workers int
	Metrics func() []Metric
}

func NewEnsemble(s *Simulator, workers int) *Ensemble {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Ensemble{base: s, workers: workers}
}

// Run returns one result per release in release order. Particle failures
// are reported in each Result.Err; Run itself fails only on an invalid
// release or a cancelled context.
func (e *Ensemble) Run(ctx context.Context, releases []Release) ([]*Result, error) {
	results := make([]*Result, len(releases))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, rel := range releases {
		g.Go(func() error {
			sim := New(e.base.field, e.base.params, e.base.order)
			if e.Metrics != nil {
				for _, m := range e.Metrics() {
					sim.AddMetric(m)
				}
			}

			res, err := sim.Run(ctx, rel)
			results[i] = res
			if res == nil || ctx.Err() != nil {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
