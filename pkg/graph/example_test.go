package graph_test

import (
	"fmt"

	"github.com/sanonone/kektorgraph/pkg/graph"
)

func ExampleGraph_InsertEdge() {
	g, _ := graph.Build("demo", []graph.NodeSpec{{Label: "0"}, {Label: "1"}, {Label: "2"}}, nil)
	g, _, _ = g.InsertEdge(graph.EdgeSpec{Node1: 0, Node2: 1})
	g, _, _ = g.InsertEdge(graph.EdgeSpec{Node1: 1, Node2: 2})

	fmt.Println(g.Degree(1), g.ConnectingNodes(1), g.IsConsistent())
	// Output: 2 [0 2] true
}

func ExampleGraph_DeleteEdge() {
	g, _ := graph.Build("demo",
		[]graph.NodeSpec{{Label: "a"}, {Label: "b"}},
		[]graph.EdgeSpec{{Node1: 0, Node2: 1, Label: "x"}, {Node1: 1, Node2: 0, Label: "y"}},
	)
	g, _ = g.DeleteEdge(0)
	fmt.Println(g.NumEdges(), g.EdgeLabel(0), g.ConnectingEdges(0))
	// Output: 1 y [0]
}
