// Package isomorph implements exact graph matching over the graph package's
// binary layout: a whole-graph isomorphism test and a subgraph matcher.
//
// Both matchers treat graphs as undirected multigraphs. Edge direction is
// ignored, parallel edges count with multiplicity and self-loops are kept
// apart from ordinary adjacency.
package isomorph

import (
	"context"
	"time"

	"github.com/sanonone/kektorgraph/pkg/graph"
	"github.com/sanonone/kektorgraph/pkg/metrics"
)

// Reason explains the outcome of Isomorphic.
type Reason int

const (
	// Matched means a full node mapping was found.
	Matched Reason = iota
	// CountMismatch means the node or edge counts differ.
	CountMismatch
	// SpectrumMismatch means the adjacency spectra differ.
	SpectrumMismatch
	// EmptyCandidates means some node of a has no degree-compatible partner.
	EmptyCandidates
	// Exhausted means the search tried every candidate without success.
	Exhausted
)

func (r Reason) String() string {
	switch r {
	case Matched:
		return "matched"
	case CountMismatch:
		return "count-mismatch"
	case SpectrumMismatch:
		return "spectrum-mismatch"
	case EmptyCandidates:
		return "empty-candidates"
	case Exhausted:
		return "exhausted"
	}
	return "unknown"
}

// WholeResult is the outcome of Isomorphic.
type WholeResult struct {
	Found  bool
	Reason Reason
	// Mapping sends node i of a to node Mapping[i] of b. Nil unless Found.
	Mapping []int
	Stats   Stats
}

// IsIsomorphic reports whether a and b are isomorphic, with default options
// and no cancellation.
func IsIsomorphic(a, b *graph.Graph) bool {
	res, err := Isomorphic(context.Background(), a, b)
	return err == nil && res.Found
}

// Isomorphic decides whether a and b are isomorphic. The only error returned is
// ctx.Err() when ctx is cancelled mid-search.
func Isomorphic(ctx context.Context, a, b *graph.Graph, opts ...Option) (WholeResult, error) {
	s := newSettings(opts)
	start := time.Now()
	w := &wholeSearch{a: a, b: b, s: s, ctx: ctx}
	res, err := w.run()
	res.Stats.Elapsed = time.Since(start)

	outcome := res.Reason.String()
	if err != nil {
		outcome = "cancelled"
	}
	metrics.SearchesTotal.WithLabelValues("whole", outcome).Inc()
	metrics.SearchDuration.WithLabelValues("whole").Observe(res.Stats.Elapsed.Seconds())
	metrics.SearchSteps.WithLabelValues("whole").Add(float64(res.Stats.Steps))
	return res, err
}

type wholeSearch struct {
	a, b *graph.Graph
	s    settings
	ctx  context.Context

	cands [][]int
	fwd   []int // a -> b, -1 when unmatched
	inv   []int // b -> a, -1 when unmatched
	cntA  []int
	cntB  []int
	stats Stats
}

func (w *wholeSearch) run() (WholeResult, error) {
	a, b := w.a, w.b
	if a.NumNodes() != b.NumNodes() || a.NumEdges() != b.NumEdges() {
		return WholeResult{Reason: CountMismatch}, nil
	}
	n := a.NumNodes()
	if n == 0 {
		return WholeResult{Found: true, Reason: Matched, Mapping: []int{}}, nil
	}

	if w.s.eigenMaxNodes > 0 && n <= w.s.eigenMaxNodes {
		sa, okA := Spectrum(a)
		sb, okB := Spectrum(b)
		if okA && okB && !sameSpectrum(sa, sb, w.s.eigenDecimals) {
			return WholeResult{Reason: SpectrumMismatch}, nil
		}
	}

	w.cands = make([][]int, n)
	for i := 0; i < n; i++ {
		di, li := a.Degree(i), a.SelfLoops(i)
		for j := 0; j < n; j++ {
			if b.Degree(j) == di && b.SelfLoops(j) == li {
				w.cands[i] = append(w.cands[i], j)
			}
		}
		if len(w.cands[i]) == 0 {
			return WholeResult{Reason: EmptyCandidates}, nil
		}
	}

	w.fwd = filled(n, -1)
	w.inv = filled(n, -1)
	w.cntA = make([]int, n)
	w.cntB = make([]int, n)

	found, err := w.backtrack()
	if err != nil {
		return WholeResult{Reason: Exhausted, Stats: w.stats}, err
	}
	if !found {
		return WholeResult{Reason: Exhausted, Stats: w.stats}, nil
	}
	return WholeResult{Found: true, Reason: Matched, Mapping: w.fwd, Stats: w.stats}, nil
}

// backtrack assigns nodes of a in index order. ptr[i] is the next candidate
// to try for node i; moving back to i-1 undoes its assignment and advances it.
func (w *wholeSearch) backtrack() (bool, error) {
	n := len(w.cands)
	ptr := make([]int, n)
	i := 0
	for i >= 0 {
		if i == n {
			return true, nil
		}
		advanced := false
		for ptr[i] < len(w.cands[i]) {
			j := w.cands[i][ptr[i]]
			ptr[i]++
			if w.inv[j] >= 0 {
				continue
			}
			w.stats.Steps++
			if w.stats.Steps%w.s.checkInterval == 0 {
				if err := w.ctx.Err(); err != nil {
					return false, err
				}
			}
			if w.consistent(i, j) {
				w.fwd[i], w.inv[j] = j, i
				advanced = true
				break
			}
		}
		if advanced {
			i++
			continue
		}
		ptr[i] = 0
		i--
		if i >= 0 {
			w.stats.Backtracks++
			w.inv[w.fwd[i]] = -1
			w.fwd[i] = -1
		}
	}
	return false, nil
}

// consistent reports whether pairing i with j keeps the edge multiplicity
// between every matched pair equal in both graphs.
func (w *wholeSearch) consistent(i, j int) bool {
	var touchedA, touchedB []int
	for _, u := range w.a.Neighbors(i) {
		if u != i && w.fwd[u] >= 0 {
			if w.cntA[u] == 0 {
				touchedA = append(touchedA, u)
			}
			w.cntA[u]++
		}
	}
	for _, v := range w.b.Neighbors(j) {
		if v != j && w.inv[v] >= 0 {
			if w.cntB[v] == 0 {
				touchedB = append(touchedB, v)
			}
			w.cntB[v]++
		}
	}

	ok := len(touchedA) == len(touchedB)
	if ok {
		for _, u := range touchedA {
			if w.cntB[w.fwd[u]] != w.cntA[u] {
				ok = false
				break
			}
		}
	}

	for _, u := range touchedA {
		w.cntA[u] = 0
	}
	for _, v := range touchedB {
		w.cntB[v] = 0
	}
	return ok
}

func filled(n, v int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}
