package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertNode(t *testing.T) {
	g := path3(t)
	g2, n, err := g.InsertNode(NodeSpec{Label: "d", Weight: 9, Type: 2, Age: 1})
	require.NoError(t, err)
	require.NoError(t, g2.Check())

	assert.Equal(t, 3, n)
	assert.Equal(t, 4, g2.NumNodes())
	assert.Equal(t, NodeSpec{Label: "d", Weight: 9, Type: 2, Age: 1}, g2.Node(3))
	assert.Equal(t, 0, g2.Degree(3))

	// The receiver is untouched.
	assert.Equal(t, 3, g.NumNodes())
	require.NoError(t, g.Check())
}

func TestDeleteNodeRequiresZeroDegree(t *testing.T) {
	g := path3(t)
	_, err := g.DeleteNode(1)
	require.ErrorIs(t, err, ErrPrecondition)

	_, err = g.DeleteNode(3)
	require.ErrorIs(t, err, ErrRange)
}

func TestDeleteNodeRenumbers(t *testing.T) {
	g, err := Build("gap",
		[]NodeSpec{{Label: "a"}, {Label: "lonely"}, {Label: "b"}, {Label: "c"}},
		[]EdgeSpec{{Node1: 0, Node2: 2, Label: "ab"}, {Node1: 3, Node2: 2, Label: "cb"}},
	)
	require.NoError(t, err)

	g2, err := g.DeleteNode(1)
	require.NoError(t, err)
	require.NoError(t, g2.Check())

	assert.Equal(t, 3, g2.NumNodes())
	assert.Equal(t, "b", g2.NodeLabel(1))
	assert.Equal(t, 1, g2.EdgeNode2(0))
	assert.Equal(t, 2, g2.EdgeNode1(1))
	assert.Equal(t, []int{0, 2}, g2.ConnectingNodes(1))
	requireDegreeSymmetry(t, g2)
}

func TestInsertEdge(t *testing.T) {
	g := path3(t)
	g2, e, err := g.InsertEdge(EdgeSpec{Node1: 2, Node2: 0, Label: "ca", Weight: 5})
	require.NoError(t, err)
	require.NoError(t, g2.Check())

	assert.Equal(t, 2, e)
	assert.Equal(t, EdgeSpec{Node1: 2, Node2: 0, Label: "ca", Weight: 5}, g2.Edge(2))
	assert.Equal(t, []int{2, 0}, g2.ConnectingEdges(0))
	assert.Equal(t, []int{1, 2}, g2.ConnectingEdges(2))

	// Both endpoint runs were rewritten at the end; their old slots are slack.
	assert.Equal(t, g.NumConnections()+2+2, g2.NumConnections())
	assert.Equal(t, 2, g2.Slack().Connections)

	_, _, err = g.InsertEdge(EdgeSpec{Node1: 0, Node2: 3})
	require.ErrorIs(t, err, ErrRange)
	_, _, err = g.InsertEdge(EdgeSpec{Node1: -1, Node2: 0})
	require.ErrorIs(t, err, ErrRange)
}

func TestInsertSelfLoop(t *testing.T) {
	g := path3(t)
	g2, e, err := g.InsertEdge(EdgeSpec{Node1: 1, Node2: 1, Label: "loop"})
	require.NoError(t, err)
	require.NoError(t, g2.Check())

	assert.Equal(t, 4, g2.Degree(1))
	assert.Equal(t, 1, g2.SelfLoops(1))
	assert.Equal(t, []int{0, e, 1, e}, g2.ConnectingEdges(1))
}

func TestDeleteEdgeShiftsReferences(t *testing.T) {
	g, err := Build("square",
		[]NodeSpec{{Label: "0"}, {Label: "1"}, {Label: "2"}, {Label: "3"}},
		[]EdgeSpec{
			{Node1: 0, Node2: 1, Label: "e0"},
			{Node1: 1, Node2: 2, Label: "e1"},
			{Node1: 2, Node2: 3, Label: "e2"},
			{Node1: 3, Node2: 0, Label: "e3"},
			{Node1: 1, Node2: 3, Label: "e4"},
		},
	)
	require.NoError(t, err)

	g2, err := g.DeleteEdge(1)
	require.NoError(t, err)
	require.NoError(t, g2.Check())

	assert.Equal(t, g.NumEdges()-1, g2.NumEdges())
	assert.Equal(t, []string{"e0", "e2", "e3", "e4"}, edgeLabels(g2))
	// Every reference to an index above 1 moved down by one.
	for n := 0; n < g.NumNodes(); n++ {
		var want []int
		for _, e := range g.ConnectingEdges(n) {
			switch {
			case e == 1:
			case e > 1:
				want = append(want, e-1)
			default:
				want = append(want, e)
			}
		}
		assert.Equal(t, want, g2.ConnectingEdges(n), "node %d", n)
	}
	assert.Equal(t, 2, g2.Degree(1))
	assert.Equal(t, 2, g2.Slack().Connections)
	requireDegreeSymmetry(t, g2)

	_, err = g.DeleteEdge(5)
	require.ErrorIs(t, err, ErrRange)
}

func TestDeleteSelfLoop(t *testing.T) {
	g, err := Build("loop",
		[]NodeSpec{{Label: "a"}, {Label: "b"}},
		[]EdgeSpec{{Node1: 0, Node2: 1}, {Node1: 0, Node2: 0}, {Node1: 1, Node2: 0}},
	)
	require.NoError(t, err)
	g2, err := g.DeleteEdge(1)
	require.NoError(t, err)
	require.NoError(t, g2.Check())
	assert.Equal(t, 0, g2.SelfLoops(0))
	assert.Equal(t, []int{1, 0}, g2.ConnectingEdges(0))
}

func TestDeleteThenDeleteNode(t *testing.T) {
	g := path3(t)
	for _, e := range []int{1, 0} {
		var err error
		g, err = g.DeleteEdge(e)
		require.NoError(t, err)
	}
	g, err := g.DeleteNode(1)
	require.NoError(t, err)
	require.NoError(t, g.Check())
	assert.Equal(t, []string{"a", "c"}, nodeLabels(g))
}

func TestRelabel(t *testing.T) {
	g := path3(t)
	g2, err := g.RelabelNode(1, "bee")
	require.NoError(t, err)
	g2, err = g2.RelabelEdge(0, "")
	require.NoError(t, err)
	require.NoError(t, g2.Check())

	assert.Equal(t, "bee", g2.NodeLabel(1))
	assert.Equal(t, "", g2.EdgeLabel(0))
	assert.Equal(t, "b", g.NodeLabel(1))
	assert.Equal(t, SlackStats{NodeLabelUnits: 1, EdgeLabelUnits: 2}, g2.Slack())

	c := g2.Compact()
	require.NoError(t, c.Check())
	assert.Equal(t, SlackStats{}, c.Slack())
	requireSameGraph(t, g2, c)
}

func TestRewireEdges(t *testing.T) {
	g := path3(t)
	g2, err := g.RewireEdges([]Rewire{{Edge: 0, Node1: 2, Node2: 0}, {Edge: 1, Node1: 0, Node2: 1}})
	require.NoError(t, err)
	require.NoError(t, g2.Check())

	assert.Equal(t, "ab", g2.EdgeLabel(0))
	assert.Equal(t, 2, g2.EdgeNode1(0))
	assert.Equal(t, 0, g2.EdgeNode2(0))
	assert.Equal(t, []int{0, 1}, g2.ConnectingEdges(0))

	_, err = g.RewireEdges([]Rewire{{Edge: 0, Node1: 0, Node2: 9}})
	require.ErrorIs(t, err, ErrRange)
}

func TestInduceSubgraph(t *testing.T) {
	g := path3(t)

	sub, err := g.InduceSubgraph([]int{2, 1}, []int{1})
	require.NoError(t, err)
	require.NoError(t, sub.Check())
	assert.Equal(t, []string{"b", "c"}, nodeLabels(sub))
	assert.Equal(t, EdgeSpec{Node1: 0, Node2: 1, Label: "bc"}, sub.Edge(0))

	_, err = g.InduceSubgraph([]int{0, 1}, []int{1})
	require.ErrorIs(t, err, ErrPrecondition)

	_, err = g.InduceSubgraph([]int{5}, nil)
	require.ErrorIs(t, err, ErrRange)
}

func TestInduceAllIsIdentity(t *testing.T) {
	g, err := Random("r", 30, 80, 7, false)
	require.NoError(t, err)
	// Leave some slack behind first.
	g, _, err = g.InsertEdge(EdgeSpec{Node1: 3, Node2: 4, Label: "late"})
	require.NoError(t, err)
	g, err = g.DeleteEdge(10)
	require.NoError(t, err)

	all := func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	same, err := g.InduceSubgraph(all(g.NumNodes()), all(g.NumEdges()))
	require.NoError(t, err)
	requireSameGraph(t, g, same)
}

func TestDeleteNodesAndEdges(t *testing.T) {
	g := path3(t)
	g2, err := g.DeleteNodesAndEdges([]int{0}, nil)
	require.NoError(t, err)
	require.NoError(t, g2.Check())
	assert.Equal(t, []string{"b", "c"}, nodeLabels(g2))
	assert.Equal(t, []string{"bc"}, edgeLabels(g2))

	g3, err := g.DeleteNodesAndEdges(nil, []int{1})
	require.NoError(t, err)
	assert.Equal(t, 3, g3.NumNodes())
	assert.Equal(t, []string{"ab"}, edgeLabels(g3))

	assert.Equal(t, []int{0, 1}, g.IncidentEdges([]int{1, 2}))
}

func TestAdvanceGeneration(t *testing.T) {
	g := path3(t)

	next, err := g.AdvanceGeneration(GenerationDelta{
		DeleteNodes: []int{2},
		AddNodes:    []NodeSpec{{Label: "new"}},
		AddEdges:    []EdgeSpec{{Node1: 1, Node2: 3, Label: "b-new"}},
	})
	require.NoError(t, err)
	require.NoError(t, next.Check())

	// a, b survive; a', b' are their copies; "new" is added.
	assert.Equal(t, []string{"a", "b", "a", "b", "new"}, nodeLabels(next))
	assert.Equal(t, []int8{0, 0, 1, 1, 1}, nodeAges(next))
	assert.Equal(t, int8(0), next.OldestGeneration())
	assert.Equal(t, int8(1), next.NewestGeneration())

	// ab survives; bc is orphaned; two time edges; ab is duplicated; b'-new added.
	assert.Equal(t, []string{"ab", TimeEdgeLabel, TimeEdgeLabel, "ab", "b-new"}, edgeLabels(next))
	assert.Equal(t, EdgeSpec{Node1: 0, Node2: 2, Label: TimeEdgeLabel, Type: TimeEdgeType, Age: 1}, next.Edge(1))
	assert.Equal(t, EdgeSpec{Node1: 2, Node2: 3, Label: "ab", Age: 1}, next.Edge(3))
	assert.Equal(t, EdgeSpec{Node1: 3, Node2: 4, Label: "b-new", Age: 1}, next.Edge(4))

	slice := next.GenerationSlice(1)
	require.NoError(t, slice.Check())
	assert.Equal(t, []string{"a", "b", "new"}, nodeLabels(slice))
	assert.Equal(t, []string{"ab", "b-new"}, edgeLabels(slice))

	// A second step only copies generation 1.
	third, err := next.AdvanceGeneration(GenerationDelta{})
	require.NoError(t, err)
	assert.Equal(t, 5+3, third.NumNodes())
	assert.Equal(t, int8(2), third.NewestGeneration())
}

func TestAdvanceGenerationErrors(t *testing.T) {
	g := path3(t)
	_, err := g.AdvanceGeneration(GenerationDelta{DeleteNodes: []int{7}})
	require.ErrorIs(t, err, ErrRange)

	// Node 2 is deleted, so its copy cannot be an endpoint.
	_, err = g.AdvanceGeneration(GenerationDelta{
		DeleteNodes: []int{2},
		AddEdges:    []EdgeSpec{{Node1: 0, Node2: 2}},
	})
	require.ErrorIs(t, err, ErrRange)

	old, err := Build("old", []NodeSpec{{Age: MaxAge}}, nil)
	require.NoError(t, err)
	_, err = old.AdvanceGeneration(GenerationDelta{})
	require.ErrorIs(t, err, ErrCapacity)

	empty, err := Build("empty", nil, nil)
	require.NoError(t, err)
	first, err := empty.AdvanceGeneration(GenerationDelta{AddNodes: []NodeSpec{{Label: "x", Age: 9}}})
	require.NoError(t, err)
	assert.Equal(t, []int8{0}, nodeAges(first))
}

func TestEditsKeepInvariants(t *testing.T) {
	g, err := Random("inv", 20, 40, 3, false)
	require.NoError(t, err)
	steps := []func(*Graph) (*Graph, error){
		func(g *Graph) (*Graph, error) {
			g2, _, err := g.InsertNode(NodeSpec{Label: "n"})
			return g2, err
		},
		func(g *Graph) (*Graph, error) {
			g2, _, err := g.InsertEdge(EdgeSpec{Node1: 20, Node2: 5})
			return g2, err
		},
		func(g *Graph) (*Graph, error) { return g.DeleteEdge(0) },
		func(g *Graph) (*Graph, error) { return g.DeleteEdge(g.NumEdges() - 1) },
		func(g *Graph) (*Graph, error) { return g.RelabelNode(4, "four") },
		func(g *Graph) (*Graph, error) {
			return g.RewireEdges([]Rewire{{Edge: 3, Node1: 1, Node2: 1}})
		},
		func(g *Graph) (*Graph, error) { return g.AdvanceGeneration(GenerationDelta{DeleteEdges: []int{2}}) },
		func(g *Graph) (*Graph, error) { return g.Compact(), nil },
	}
	for i, step := range steps {
		g, err = step(g)
		require.NoError(t, err, "step %d", i)
		require.NoError(t, g.Check(), "step %d", i)
		requireDegreeSymmetry(t, g)
	}
}

func nodeLabels(g *Graph) []string {
	out := make([]string, g.NumNodes())
	for i := range out {
		out[i] = g.NodeLabel(i)
	}
	return out
}

func edgeLabels(g *Graph) []string {
	out := make([]string, g.NumEdges())
	for i := range out {
		out[i] = g.EdgeLabel(i)
	}
	return out
}

func nodeAges(g *Graph) []int8 {
	out := make([]int8, g.NumNodes())
	for i := range out {
		out[i] = g.NodeAge(i)
	}
	return out
}
