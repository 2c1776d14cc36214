package scan

import (
	"cmp"
	"context"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"sloan/internal/persistence"
)

// MapFunc computes the result for one integer. ok=false drops the integer from
// the output.
type MapFunc func(x uint64) (persistence.Result, bool)

// Backend maps a pure function over every integer of a range and returns the
// kept results sorted by Integer.
type Backend interface {
	Map(ctx context.Context, r Range, fn MapFunc) ([]persistence.Result, error)
}

// ctxPollInterval is how many integers a worker handles between context checks.
const ctxPollInterval = 1024

// Sequential runs the map on the calling goroutine.
type Sequential struct{}

func (Sequential) Map(ctx context.Context, r Range, fn MapFunc) ([]persistence.Result, error) {
	out := make([]persistence.Result, 0, r.Len())
	var n uint64
	for x := r.Start; x < r.End; x++ {
		if n++; n%ctxPollInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if res, ok := fn(x); ok {
			out = append(out, res)
		}
	}
	return out, ctx.Err()
}

// Parallel splits a range across Workers goroutines. Worker w takes
// Start+w, Start+w+Workers, ... so expensive large integers spread evenly.
// Workers share nothing; their batches are merged and sorted after the join.
type Parallel struct {
	Workers int
}

func (p Parallel) Map(ctx context.Context, r Range, fn MapFunc) ([]persistence.Result, error) {
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if n := r.Len(); uint64(workers) > n {
		workers = int(n)
	}
	if workers <= 1 {
		return Sequential{}.Map(ctx, r, fn)
	}

	batches := make([][]persistence.Result, workers)
	g, gctx := errgroup.WithContext(ctx)
	stride := uint64(workers)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			var batch []persistence.Result
			var n uint64
			for x := r.Start + uint64(w); x < r.End; x += stride {
				if n++; n%ctxPollInterval == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				if res, ok := fn(x); ok {
					batch = append(batch, res)
				}
				// x += stride can wrap near the top of uint64.
				if r.End-x <= stride {
					break
				}
			}
			batches[w] = batch
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := slices.Concat(batches...)
	slices.SortFunc(out, func(a, b persistence.Result) int {
		return cmp.Compare(a.Integer, b.Integer)
	})
	return out, ctx.Err()
}

// NewBackend picks Sequential for a single worker and Parallel otherwise.
// workers <= 0 means one worker per CPU.
func NewBackend(workers int) Backend {
	if workers == 1 {
		return Sequential{}
	}
	return Parallel{Workers: workers}
}
