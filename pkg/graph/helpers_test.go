package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// path3 returns 0 -> 1 -> 2 with labelled nodes and edges.
func path3(t *testing.T) *Graph {
	t.Helper()
	g, err := Build("path3",
		[]NodeSpec{{Label: "a", Weight: 1}, {Label: "b", Weight: 2}, {Label: "c", Weight: 3}},
		[]EdgeSpec{{Node1: 0, Node2: 1, Label: "ab"}, {Node1: 1, Node2: 2, Label: "bc"}},
	)
	require.NoError(t, err)
	return g
}

// requireSameGraph asserts that a and b have identical attributes, endpoints
// and logical connection runs, regardless of slack.
func requireSameGraph(t *testing.T, want, got *Graph) {
	t.Helper()
	require.Equal(t, want.NumNodes(), got.NumNodes(), "node count")
	require.Equal(t, want.NumEdges(), got.NumEdges(), "edge count")
	require.Equal(t, want.Nodes(), got.Nodes())
	require.Equal(t, want.Edges(), got.Edges())
	for n := 0; n < want.NumNodes(); n++ {
		require.Equal(t, want.InDegree(n), got.InDegree(n), "in-degree of %d", n)
		require.Equal(t, want.OutDegree(n), got.OutDegree(n), "out-degree of %d", n)
		require.Equal(t, want.ConnectingEdges(n), got.ConnectingEdges(n), "edges of %d", n)
		require.Equal(t, want.ConnectingNodes(n), got.ConnectingNodes(n), "nodes of %d", n)
	}
}

// requireDegreeSymmetry checks in+out == degree == len(connecting edges).
func requireDegreeSymmetry(t *testing.T, g *Graph) {
	t.Helper()
	for n := 0; n < g.NumNodes(); n++ {
		require.Equal(t, g.InDegree(n)+g.OutDegree(n), g.Degree(n))
		require.Len(t, g.ConnectingEdges(n), g.Degree(n))
		require.Len(t, g.ConnectingNodes(n), g.Degree(n))
	}
}
