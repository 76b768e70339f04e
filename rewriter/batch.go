package rewriter

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/moriyoshi/badass-srs/types"
)

type Result struct {
	Input  string
	Output string
	Err    error
}

// Batch runs every address through rw in direction dir, at most limit at a
// time (unbounded if limit <= 0). Results are in input order. Items not yet
// started when ctx is done carry ctx's error.
func Batch(ctx context.Context, rw types.Rewriter, dir types.Direction, addrs []string, limit int) []Result {
	results := make([]Result, len(addrs))
	var eg errgroup.Group
	if limit > 0 {
		eg.SetLimit(limit)
	}
	for i, addr := range addrs {
		i, addr := i, addr
		eg.Go(func() error {
			results[i].Input = addr
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Output, results[i].Err = dir.Apply(rw, addr)
			return nil
		})
	}
	_ = eg.Wait()
	return results
}
