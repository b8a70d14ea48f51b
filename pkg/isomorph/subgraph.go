package isomorph

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/sanonone/kektorgraph/pkg/graph"
	"github.com/sanonone/kektorgraph/pkg/metrics"
)

// Embedding maps a pattern into a target graph.
type Embedding struct {
	// Nodes[p] is the target node pattern node p maps to.
	Nodes []int
	// Edges[pe] is the target edge pattern edge pe maps to. Parallel pattern
	// edges may share a target edge unless WithInjectiveEdges is set.
	Edges []int
}

// Induce builds the subgraph of target made of the embedded nodes and edges.
// Nodes and edges are renumbered in ascending target index order.
func (e Embedding) Induce(target *graph.Graph) (*graph.Graph, error) {
	return target.InduceSubgraph(e.Nodes, e.Edges)
}

// SubgraphMatcher finds embeddings of a pattern graph in a target graph: an
// injective node mapping under which every pattern edge has a target edge
// joining the mapped endpoints, with both passing the comparators.
//
// A SubgraphMatcher is not safe for concurrent use; the graphs it reads are.
type SubgraphMatcher struct {
	target  *graph.Graph
	pattern *graph.Graph
	s       settings

	cands [][]int
	order []int
	stats Stats
}

// NewSubgraphMatcher prepares the candidate lists and visiting order for
// matching pattern into target.
func NewSubgraphMatcher(target, pattern *graph.Graph, opts ...Option) *SubgraphMatcher {
	m := &SubgraphMatcher{target: target, pattern: pattern, s: newSettings(opts)}

	np := pattern.NumNodes()
	m.cands = make([][]int, np)
	for p := 0; p < np; p++ {
		dp := pattern.Degree(p)
		for t := 0; t < target.NumNodes(); t++ {
			if target.Degree(t) >= dp && m.s.nodeCmp.MatchNode(target, t, pattern, p) {
				m.cands[p] = append(m.cands[p], t)
			}
		}
	}
	m.order = make([]int, np)
	for p := range m.order {
		m.order[p] = p
	}
	slices.SortStableFunc(m.order, func(x, y int) int { return len(m.cands[x]) - len(m.cands[y]) })
	return m
}

// Stats returns the statistics of the most recent search.
func (m *SubgraphMatcher) Stats() Stats { return m.stats }

var errStop = errors.New("stop")

// Each calls fn with every embedding in search order until fn returns false,
// the search is exhausted, or ctx is cancelled. An empty pattern yields one
// empty embedding. The embedding passed to fn is owned by fn.
func (m *SubgraphMatcher) Each(ctx context.Context, fn func(Embedding) bool) error {
	start := time.Now()
	m.stats = Stats{}
	err := m.each(ctx, fn)
	m.stats.Elapsed = time.Since(start)

	outcome := "none"
	switch {
	case err != nil:
		outcome = "cancelled"
	case m.stats.Embeddings > 0:
		outcome = "found"
	}
	metrics.SearchesTotal.WithLabelValues("subgraph", outcome).Inc()
	metrics.SearchDuration.WithLabelValues("subgraph").Observe(m.stats.Elapsed.Seconds())
	metrics.SearchSteps.WithLabelValues("subgraph").Add(float64(m.stats.Steps))
	return err
}

func (m *SubgraphMatcher) each(ctx context.Context, fn func(Embedding) bool) error {
	if m.pattern.NumNodes() == 0 {
		m.stats.Embeddings++
		fn(Embedding{Nodes: []int{}, Edges: []int{}})
		return nil
	}
	for _, c := range m.cands {
		if len(c) == 0 {
			return nil
		}
	}
	s := &subSearch{
		m:       m,
		ctx:     ctx,
		fn:      fn,
		mapping: filled(m.pattern.NumNodes(), -1),
		used:    make([]bool, m.target.NumNodes()),
	}
	err := s.extend(0)
	if errors.Is(err, errStop) {
		return nil
	}
	return err
}

// Find returns the first embedding, if any.
func (m *SubgraphMatcher) Find(ctx context.Context) (Embedding, bool, error) {
	var out Embedding
	found := false
	err := m.Each(ctx, func(e Embedding) bool {
		out, found = e, true
		return false
	})
	return out, found, err
}

// FindAll returns up to limit embeddings; limit <= 0 means no limit. On
// cancellation the embeddings found so far are returned with ctx.Err().
func (m *SubgraphMatcher) FindAll(ctx context.Context, limit int) ([]Embedding, error) {
	var out []Embedding
	err := m.Each(ctx, func(e Embedding) bool {
		out = append(out, e)
		return limit <= 0 || len(out) < limit
	})
	return out, err
}

type subSearch struct {
	m   *SubgraphMatcher
	ctx context.Context
	fn  func(Embedding) bool

	mapping []int  // pattern -> target, -1 when unmatched
	used    []bool // target nodes taken
}

// extend assigns the pattern node at position depth of the visiting order.
func (s *subSearch) extend(depth int) error {
	m := s.m
	if depth == len(m.order) {
		return s.emit()
	}
	p := m.order[depth]
	for _, t := range m.cands[p] {
		if s.used[t] {
			continue
		}
		m.stats.Steps++
		if m.stats.Steps%m.s.checkInterval == 0 {
			if err := s.ctx.Err(); err != nil {
				return err
			}
		}
		if !s.accept(p, t) {
			continue
		}
		s.mapping[p], s.used[t] = t, true
		if err := s.extend(depth + 1); err != nil {
			return err
		}
		s.mapping[p], s.used[t] = -1, false
		m.stats.Backtracks++
	}
	return nil
}

// accept reports whether every pattern edge between p and an already matched
// node (or p itself) has a comparator-equal target edge between t and that
// node's image.
func (s *subSearch) accept(p, t int) bool {
	for pe, q := range s.m.pattern.Neighbors(p) {
		tq := t
		if q != p {
			if tq = s.mapping[q]; tq < 0 {
				continue
			}
		}
		if !s.hasTargetEdge(t, tq, pe) {
			return false
		}
	}
	return true
}

func (s *subSearch) hasTargetEdge(t, u, pe int) bool {
	m := s.m
	for te, w := range m.target.Neighbors(t) {
		if w == u && m.s.edgeCmp.MatchEdge(m.target, te, m.pattern, pe) {
			return true
		}
	}
	return false
}

// emit derives the edge mapping for the current node assignment and reports
// it. With injective edges, assignments whose pattern edges cannot take
// distinct target edges are skipped.
func (s *subSearch) emit() error {
	edges, ok := s.deriveEdges()
	if !ok {
		return nil
	}
	m := s.m
	m.stats.Embeddings++
	e := Embedding{Nodes: slices.Clone(s.mapping), Edges: edges}
	if !s.fn(e) {
		return errStop
	}
	return nil
}

// deriveEdges maps each pattern edge to a comparator-equal target edge between
// the mapped endpoints. Edges running the same way as the pattern edge are
// preferred. Without injective edges the first candidate is taken, and parallel
// pattern edges may share a target edge.
func (s *subSearch) deriveEdges() ([]int, bool) {
	m := s.m
	cands := make([][]int, m.pattern.NumEdges())
	for pe := range cands {
		if cands[pe] = s.edgeCandidates(pe); len(cands[pe]) == 0 {
			return nil, false
		}
	}
	if m.s.injectiveEdges {
		return matchEdges(cands)
	}
	out := make([]int, len(cands))
	for pe, c := range cands {
		out[pe] = c[0]
	}
	return out, true
}

// edgeCandidates lists the target edges pattern edge pe may map to under the
// current assignment, same-orientation edges first.
func (s *subSearch) edgeCandidates(pe int) []int {
	m := s.m
	t1, t2 := s.mapping[m.pattern.EdgeNode1(pe)], s.mapping[m.pattern.EdgeNode2(pe)]
	var same, reversed []int
	for _, te := range m.target.EdgesBetween(t1, t2) {
		if !m.s.edgeCmp.MatchEdge(m.target, te, m.pattern, pe) {
			continue
		}
		if m.target.EdgeNode1(te) == t1 {
			same = append(same, te)
		} else {
			reversed = append(reversed, te)
		}
	}
	return append(same, reversed...)
}

// matchEdges finds a maximum bipartite matching between pattern edges and
// their candidate target edges with augmenting paths. It fails unless every
// pattern edge is matched.
func matchEdges(cands [][]int) ([]int, bool) {
	owner := make(map[int]int) // target edge -> pattern edge
	var augment func(pe int, seen map[int]bool) bool
	augment = func(pe int, seen map[int]bool) bool {
		for _, te := range cands[pe] {
			if seen[te] {
				continue
			}
			seen[te] = true
			if q, taken := owner[te]; !taken || augment(q, seen) {
				owner[te] = pe
				return true
			}
		}
		return false
	}
	for pe := range cands {
		if !augment(pe, make(map[int]bool)) {
			return nil, false
		}
	}
	out := make([]int, len(cands))
	for te, pe := range owner {
		out[pe] = te
	}
	return out, true
}
