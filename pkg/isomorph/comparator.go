package isomorph

import "github.com/sanonone/kektorgraph/pkg/graph"

// NodeComparator decides whether target node t may stand in for pattern node p.
type NodeComparator interface {
	MatchNode(target *graph.Graph, t int, pattern *graph.Graph, p int) bool
}

// EdgeComparator decides whether target edge te may stand in for pattern edge pe.
type EdgeComparator interface {
	MatchEdge(target *graph.Graph, te int, pattern *graph.Graph, pe int) bool
}

// NodeFunc adapts a function to NodeComparator.
type NodeFunc func(target *graph.Graph, t int, pattern *graph.Graph, p int) bool

func (f NodeFunc) MatchNode(target *graph.Graph, t int, pattern *graph.Graph, p int) bool {
	return f(target, t, pattern, p)
}

// EdgeFunc adapts a function to EdgeComparator.
type EdgeFunc func(target *graph.Graph, te int, pattern *graph.Graph, pe int) bool

func (f EdgeFunc) MatchEdge(target *graph.Graph, te int, pattern *graph.Graph, pe int) bool {
	return f(target, te, pattern, pe)
}

var (
	// AnyNode accepts every node pair.
	AnyNode NodeComparator = NodeFunc(func(*graph.Graph, int, *graph.Graph, int) bool { return true })

	// AnyEdge accepts every edge pair.
	AnyEdge EdgeComparator = EdgeFunc(func(*graph.Graph, int, *graph.Graph, int) bool { return true })

	// NodeLabels accepts nodes with equal labels.
	NodeLabels NodeComparator = NodeFunc(func(target *graph.Graph, t int, pattern *graph.Graph, p int) bool {
		return target.NodeLabel(t) == pattern.NodeLabel(p)
	})

	// EdgeLabels accepts edges with equal labels.
	EdgeLabels EdgeComparator = EdgeFunc(func(target *graph.Graph, te int, pattern *graph.Graph, pe int) bool {
		return target.EdgeLabel(te) == pattern.EdgeLabel(pe)
	})
)
