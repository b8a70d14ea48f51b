package graph

import (
	"fmt"
	"math/rand"
	"strconv"
)

// Random returns a graph with n nodes and e edges whose endpoints are drawn
// from a generator seeded with seed, so equal arguments give equal graphs.
//
// When simple is true the result has no self-loops and at most one edge per
// unordered node pair; asking for more edges than n*(n-1)/2 fails with ErrSize.
// Otherwise loops and parallel edges may occur.
//
// Node i is labelled with its decimal index; edges are unlabelled.
func Random(name string, n, e int, seed int64, simple bool, opts ...Option) (*Graph, error) {
	if n < 0 || e < 0 {
		return nil, fmt.Errorf("Random: n=%d e=%d must be non-negative: %w", n, e, ErrSize)
	}
	if e > 0 && n == 0 {
		return nil, fmt.Errorf("Random: %d edges need at least one node: %w", e, ErrSize)
	}
	if simple {
		pairs := int64(n) * int64(n-1) / 2
		if int64(e) > pairs {
			return nil, fmt.Errorf("Random: %d simple edges requested, %d nodes allow %d: %w", e, n, pairs, ErrSize)
		}
	}

	rng := rand.New(rand.NewSource(seed))
	nodes := make([]NodeSpec, n)
	for i := range nodes {
		nodes[i] = NodeSpec{Label: strconv.Itoa(i)}
	}

	var edges []EdgeSpec
	switch {
	case !simple:
		edges = make([]EdgeSpec, e)
		for i := range edges {
			edges[i] = EdgeSpec{Node1: rng.Intn(n), Node2: rng.Intn(n)}
		}
	case int64(e)*2 > int64(n)*int64(n-1)/2:
		edges = densePairs(rng, n, e)
	default:
		edges = sparsePairs(rng, n, e)
	}

	o := applyOptions(opts)
	return build("Random", name, o.direct, nodes, edges)
}

// densePairs picks e distinct unordered pairs by partially shuffling the full
// pair list. Used when e is more than half of all pairs.
func densePairs(rng *rand.Rand, n, e int) []EdgeSpec {
	all := make([]EdgeSpec, 0, n*(n-1)/2)
	for u := 0; u < n; u++ {
		for v := u + 1; v < n; v++ {
			all = append(all, EdgeSpec{Node1: u, Node2: v})
		}
	}
	for i := 0; i < e; i++ {
		j := i + rng.Intn(len(all)-i)
		all[i], all[j] = all[j], all[i]
	}
	out := all[:e:e]
	for i := range out {
		if rng.Intn(2) == 1 {
			out[i].Node1, out[i].Node2 = out[i].Node2, out[i].Node1
		}
	}
	return out
}

// sparsePairs picks e distinct unordered pairs by rejection sampling.
func sparsePairs(rng *rand.Rand, n, e int) []EdgeSpec {
	seen := make(map[[2]int]struct{}, e)
	out := make([]EdgeSpec, 0, e)
	for len(out) < e {
		u, v := rng.Intn(n), rng.Intn(n)
		if u == v {
			continue
		}
		key := [2]int{min(u, v), max(u, v)}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, EdgeSpec{Node1: u, Node2: v})
	}
	return out
}
