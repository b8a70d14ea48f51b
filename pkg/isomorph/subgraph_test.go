package isomorph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanonone/kektorgraph/pkg/graph"
)

func labelledTriangle(t *testing.T, pendant bool) *graph.Graph {
	t.Helper()
	nodes := []graph.NodeSpec{{Label: "A"}, {Label: "A"}, {Label: "B"}}
	edges := []graph.EdgeSpec{
		{Node1: 0, Node2: 1, Label: "eA"},
		{Node1: 1, Node2: 2, Label: "eA"},
		{Node1: 2, Node2: 0, Label: "eB"},
	}
	if pendant {
		nodes = append(nodes, graph.NodeSpec{Label: "C"})
		edges = append(edges, graph.EdgeSpec{Node1: 2, Node2: 3, Label: "eP"})
	}
	g, err := graph.Build("triangle", nodes, edges)
	require.NoError(t, err)
	return g
}

func labels(g *graph.Graph) (nodes, edges []string) {
	for n := 0; n < g.NumNodes(); n++ {
		nodes = append(nodes, g.NodeLabel(n))
	}
	for e := 0; e < g.NumEdges(); e++ {
		edges = append(edges, g.EdgeLabel(e))
	}
	return nodes, edges
}

// requireEmbedding checks node injectivity and that each pattern edge maps
// onto a distinct target edge joining the images of its endpoints.
func requireEmbedding(t *testing.T, target, pattern *graph.Graph, emb Embedding) {
	t.Helper()
	require.Len(t, emb.Nodes, pattern.NumNodes())
	require.Len(t, emb.Edges, pattern.NumEdges())
	seenNodes := make(map[int]bool)
	for _, tn := range emb.Nodes {
		require.False(t, seenNodes[tn], "node %d used twice", tn)
		seenNodes[tn] = true
	}
	seenEdges := make(map[int]bool)
	for pe, te := range emb.Edges {
		require.False(t, seenEdges[te], "edge %d used twice", te)
		seenEdges[te] = true
		a, b := emb.Nodes[pattern.EdgeNode1(pe)], emb.Nodes[pattern.EdgeNode2(pe)]
		x, y := target.EdgeNode1(te), target.EdgeNode2(te)
		require.True(t, (a == x && b == y) || (a == y && b == x), "pattern edge %d", pe)
	}
}

func TestExampleLabelledTriangle(t *testing.T) {
	pattern := labelledTriangle(t, false)
	target := labelledTriangle(t, true)

	m := NewSubgraphMatcher(target, pattern, WithNodeComparator(NodeLabels), WithEdgeComparator(EdgeLabels))
	emb, ok, err := m.Find(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	requireEmbedding(t, target, pattern, emb)

	induced, err := emb.Induce(target)
	require.NoError(t, err)
	wantNodes, wantEdges := labels(pattern)
	gotNodes, gotEdges := labels(induced)
	assert.ElementsMatch(t, wantNodes, gotNodes)
	assert.ElementsMatch(t, wantEdges, gotEdges)

	assert.Equal(t, 1, m.Stats().Embeddings)
	assert.Positive(t, m.Stats().Steps)
}

func TestLabelsRestrictEmbeddings(t *testing.T) {
	pattern := labelledTriangle(t, false)
	target := labelledTriangle(t, true)

	// Only the identity respects both node and edge labels.
	all, err := NewSubgraphMatcher(target, pattern,
		WithNodeComparator(NodeLabels), WithEdgeComparator(EdgeLabels)).FindAll(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, []int{0, 1, 2}, all[0].Nodes)
	assert.Equal(t, []int{0, 1, 2}, all[0].Edges)

	// Node labels alone allow swapping the two A nodes.
	all, err = NewSubgraphMatcher(target, pattern, WithNodeComparator(NodeLabels)).FindAll(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// A renamed edge label no longer fits.
	renamed, err := target.RelabelEdge(2, "eX")
	require.NoError(t, err)
	_, ok, err := NewSubgraphMatcher(renamed, pattern,
		WithNodeComparator(NodeLabels), WithEdgeComparator(EdgeLabels)).Find(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTriangleInK4(t *testing.T) {
	k4 := build(t, 4, [][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}})
	tri := build(t, 3, [][2]int{{0, 1}, {1, 2}, {2, 0}})
	m := NewSubgraphMatcher(k4, tri)

	all, err := m.FindAll(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 24)
	for _, emb := range all {
		requireEmbedding(t, k4, tri, emb)
	}
	assert.Equal(t, 24, m.Stats().Embeddings)

	some, err := m.FindAll(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, some, 5)

	count := 0
	require.NoError(t, m.Each(context.Background(), func(Embedding) bool {
		count++
		return count < 3
	}))
	assert.Equal(t, 3, count)
}

func TestNoEmbedding(t *testing.T) {
	path := build(t, 4, [][2]int{{0, 1}, {1, 2}, {2, 3}})
	tri := build(t, 3, [][2]int{{0, 1}, {1, 2}, {2, 0}})
	emb, ok, err := NewSubgraphMatcher(path, tri).Find(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, emb.Nodes)

	// A pattern node of degree 3 has no candidate in a path.
	star := build(t, 4, [][2]int{{0, 1}, {0, 2}, {0, 3}})
	m := NewSubgraphMatcher(path, star)
	all, err := m.FindAll(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Zero(t, m.Stats().Steps)
}

func TestEmptyPattern(t *testing.T) {
	empty, err := graph.Build("empty", nil, nil)
	require.NoError(t, err)
	all, err := NewSubgraphMatcher(labelledTriangle(t, true), empty).FindAll(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Empty(t, all[0].Nodes)
	assert.Empty(t, all[0].Edges)
}

func TestParallelPatternEdges(t *testing.T) {
	double := build(t, 2, [][2]int{{0, 1}, {1, 0}})
	tri := build(t, 3, [][2]int{{0, 1}, {1, 2}, {2, 0}})

	// Both pattern edges may map onto the one edge joining the images.
	all, err := NewSubgraphMatcher(tri, double).FindAll(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, all, 6)
	for _, emb := range all {
		require.Len(t, emb.Edges, 2)
		assert.Equal(t, emb.Edges[0], emb.Edges[1])
	}

	_, ok, err := NewSubgraphMatcher(tri, double, WithInjectiveEdges()).Find(context.Background())
	require.NoError(t, err)
	assert.False(t, ok, "two pattern edges cannot share one target edge")

	target := build(t, 3, [][2]int{{2, 0}, {0, 1}, {0, 2}})
	for _, opts := range [][]Option{nil, {WithInjectiveEdges()}} {
		all, err := NewSubgraphMatcher(target, double, opts...).FindAll(context.Background(), 0)
		require.NoError(t, err)
		require.Len(t, all, 2)
		for _, emb := range all {
			requireEmbedding(t, target, double, emb)
			assert.ElementsMatch(t, []int{0, 2}, emb.Nodes)
			// The pattern edge 0->1 takes the target edge running the same way.
			if emb.Nodes[0] == 2 {
				assert.Equal(t, []int{0, 2}, emb.Edges)
			} else {
				assert.Equal(t, []int{2, 0}, emb.Edges)
			}
		}
	}
}

func TestInjectiveEdgesReassignsParallelEdges(t *testing.T) {
	target, err := graph.Build("t",
		[]graph.NodeSpec{{}, {}},
		[]graph.EdgeSpec{{Node1: 0, Node2: 1, Weight: 5}, {Node1: 0, Node2: 1, Weight: 1}},
	)
	require.NoError(t, err)
	pattern, err := graph.Build("p",
		[]graph.NodeSpec{{}, {}},
		[]graph.EdgeSpec{{Node1: 0, Node2: 1, Weight: 1}, {Node1: 0, Node2: 1, Weight: 5}},
	)
	require.NoError(t, err)
	atLeast := EdgeFunc(func(tg *graph.Graph, te int, pg *graph.Graph, pe int) bool {
		return tg.EdgeWeight(te) >= pg.EdgeWeight(pe)
	})

	// The light pattern edge fits both target edges, the heavy one only the
	// first, so the light edge has to give way.
	all, err := NewSubgraphMatcher(target, pattern,
		WithEdgeComparator(atLeast), WithInjectiveEdges()).FindAll(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, emb := range all {
		requireEmbedding(t, target, pattern, emb)
		assert.Equal(t, []int{1, 0}, emb.Edges)
	}
}

func TestSelfLoopPattern(t *testing.T) {
	loop := build(t, 1, [][2]int{{0, 0}})
	path := build(t, 3, [][2]int{{0, 1}, {1, 2}})
	_, ok, err := NewSubgraphMatcher(path, loop).Find(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	looped := build(t, 3, [][2]int{{0, 1}, {1, 2}, {2, 2}})
	emb, ok, err := NewSubgraphMatcher(looped, loop).Find(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int{2}, emb.Nodes)
	assert.Equal(t, []int{2}, emb.Edges)
}

func TestFuncComparators(t *testing.T) {
	target, err := graph.Build("w",
		[]graph.NodeSpec{{Weight: 1}, {Weight: 5}, {Weight: 9}},
		[]graph.EdgeSpec{{Node1: 0, Node2: 1, Weight: 2}, {Node1: 1, Node2: 2, Weight: 7}},
	)
	require.NoError(t, err)
	pattern, err := graph.Build("p",
		[]graph.NodeSpec{{Weight: 4}, {Weight: 4}},
		[]graph.EdgeSpec{{Node1: 0, Node2: 1, Weight: 5}},
	)
	require.NoError(t, err)

	heavier := NodeFunc(func(tg *graph.Graph, tn int, pg *graph.Graph, pn int) bool {
		return tg.NodeWeight(tn) >= pg.NodeWeight(pn)
	})
	heavierEdge := EdgeFunc(func(tg *graph.Graph, te int, pg *graph.Graph, pe int) bool {
		return tg.EdgeWeight(te) >= pg.EdgeWeight(pe)
	})
	all, err := NewSubgraphMatcher(target, pattern,
		WithNodeComparator(heavier), WithEdgeComparator(heavierEdge)).FindAll(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, emb := range all {
		assert.ElementsMatch(t, []int{1, 2}, emb.Nodes)
		assert.Equal(t, []int{1}, emb.Edges)
	}
}

func TestSubgraphCancellation(t *testing.T) {
	k4 := build(t, 4, [][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}})
	tri := build(t, 3, [][2]int{{0, 1}, {1, 2}, {2, 0}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewSubgraphMatcher(k4, tri, WithCheckInterval(1))
	found, err := m.FindAll(ctx, 0)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, found)
}

func TestSubgraphOfRandomGraph(t *testing.T) {
	target, err := graph.Random("target", 40, 90, 12, false)
	require.NoError(t, err)
	nodes := []int{0, 1, 2, 3, 4, 5, 6, 7}
	var edges []int
	for e := 0; e < target.NumEdges(); e++ {
		if target.EdgeNode1(e) < 8 && target.EdgeNode2(e) < 8 {
			edges = append(edges, e)
		}
	}
	pattern, err := target.InduceSubgraph(nodes, edges)
	require.NoError(t, err)

	emb, ok, err := NewSubgraphMatcher(target, pattern, WithInjectiveEdges()).Find(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	requireEmbedding(t, target, pattern, emb)
}
