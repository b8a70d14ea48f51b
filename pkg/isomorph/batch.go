package isomorph

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sanonone/kektorgraph/pkg/graph"
)

// Pair is one isomorphism question for MatchAll.
type Pair struct {
	A, B *graph.Graph
}

// MatchAll runs Isomorphic on every pair with at most workers searches in
// flight (workers <= 0 means one per pair). Results are in pair order. Graphs
// are immutable, so pairs may share instances. The first cancellation error
// stops the remaining searches and is returned.
func MatchAll(ctx context.Context, pairs []Pair, workers int, opts ...Option) ([]WholeResult, error) {
	results := make([]WholeResult, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, p := range pairs {
		g.Go(func() error {
			res, err := Isomorphic(gctx, p.A, p.B, opts...)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
