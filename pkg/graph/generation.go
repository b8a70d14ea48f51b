package graph

import "fmt"

// GenerationDelta lists the changes folded into one AdvanceGeneration step.
//
// DeleteNodes and DeleteEdges index the current graph. AddEdges endpoints
// index the next generation: i < NumNodes() names the copy of current node i
// (which must be a surviving node of the newest generation), and
// NumNodes()+k names AddNodes[k].
type GenerationDelta struct {
	DeleteNodes []int
	DeleteEdges []int
	AddNodes    []NodeSpec
	AddEdges    []EdgeSpec
}

// AdvanceGeneration returns the next time slice of an evolving graph.
//
// Let g be the newest generation (-1 for an empty graph). The result holds:
//   - every node and edge of the receiver that was not deleted, with edges
//     orphaned by deleted nodes dropped;
//   - a copy at age g+1 of every surviving generation-g node, linked from the
//     original by a zero-weight TimeEdgeLabel edge of type TimeEdgeType;
//   - a copy at age g+1 of every surviving generation-g edge between two copied
//     nodes;
//   - AddNodes and AddEdges, stamped with age g+1.
//
// History is never rewritten: older generations are carried over unchanged.
func (g *Graph) AdvanceGeneration(delta GenerationDelta) (*Graph, error) {
	const op = "AdvanceGeneration"
	cur := int(g.newestGen)
	if g.numNodes == 0 {
		cur = -1
	}
	next := cur + 1
	if next > MaxAge {
		return nil, fmt.Errorf("%s: generation %d exceeds the age range: %w", op, next, ErrCapacity)
	}

	deadNode := make([]bool, g.numNodes)
	for _, n := range delta.DeleteNodes {
		if !g.HasNode(n) {
			return nil, rangeErr(op, "node", n, g.numNodes)
		}
		deadNode[n] = true
	}
	deadEdge := make([]bool, g.numEdges)
	for _, e := range delta.DeleteEdges {
		if !g.HasEdge(e) {
			return nil, rangeErr(op, "edge", e, g.numEdges)
		}
		deadEdge[e] = true
	}

	// Survivors keep their relative order, then come the copies, then additions.
	survivor := make([]int, g.numNodes)
	copyOf := make([]int, g.numNodes)
	nodes := make([]NodeSpec, 0, g.numNodes+len(delta.AddNodes))
	for n := 0; n < g.numNodes; n++ {
		survivor[n], copyOf[n] = -1, -1
		if deadNode[n] {
			continue
		}
		survivor[n] = len(nodes)
		nodes = append(nodes, g.Node(n))
	}
	for n := 0; n < g.numNodes; n++ {
		if survivor[n] < 0 || int(g.node(n).age()) != cur {
			continue
		}
		spec := nodes[survivor[n]]
		spec.Age = int8(next)
		copyOf[n] = len(nodes)
		nodes = append(nodes, spec)
	}
	addBase := len(nodes)
	for _, spec := range delta.AddNodes {
		spec.Age = int8(next)
		nodes = append(nodes, spec)
	}

	edges := make([]EdgeSpec, 0, g.numEdges+len(nodes))
	for e := 0; e < g.numEdges; e++ {
		r := g.edge(e)
		if deadEdge[e] || deadNode[r.node1()] || deadNode[r.node2()] {
			deadEdge[e] = true
			continue
		}
		spec := g.Edge(e)
		spec.Node1, spec.Node2 = survivor[spec.Node1], survivor[spec.Node2]
		edges = append(edges, spec)
	}
	for n := 0; n < g.numNodes; n++ {
		if copyOf[n] < 0 {
			continue
		}
		edges = append(edges, EdgeSpec{
			Node1: survivor[n],
			Node2: copyOf[n],
			Label: TimeEdgeLabel,
			Type:  TimeEdgeType,
			Age:   int8(next),
		})
	}
	for e := 0; e < g.numEdges; e++ {
		r := g.edge(e)
		if deadEdge[e] || int(r.age()) != cur || copyOf[r.node1()] < 0 || copyOf[r.node2()] < 0 {
			continue
		}
		spec := g.Edge(e)
		spec.Node1, spec.Node2 = copyOf[spec.Node1], copyOf[spec.Node2]
		spec.Age = int8(next)
		edges = append(edges, spec)
	}

	resolve := func(i int, end string) (int, error) {
		switch {
		case i >= 0 && i < g.numNodes && copyOf[i] >= 0:
			return copyOf[i], nil
		case i >= g.numNodes && i < g.numNodes+len(delta.AddNodes):
			return addBase + i - g.numNodes, nil
		default:
			return 0, fmt.Errorf("%s: added edge %s %d is neither a surviving generation-%d node nor an added node: %w",
				op, end, i, cur, ErrRange)
		}
	}
	for _, spec := range delta.AddEdges {
		n1, err := resolve(spec.Node1, "node1")
		if err != nil {
			return nil, err
		}
		n2, err := resolve(spec.Node2, "node2")
		if err != nil {
			return nil, err
		}
		spec.Node1, spec.Node2 = n1, n2
		spec.Age = int8(next)
		edges = append(edges, spec)
	}

	return build(op, g.name, g.direct, nodes, edges)
}

// GenerationSlice returns the subgraph of nodes and edges whose age is age.
func (g *Graph) GenerationSlice(age int8) *Graph {
	nodeMap := make([]int, g.numNodes)
	for n := range nodeMap {
		if g.node(n).age() != age {
			nodeMap[n] = -1
		}
	}
	keepEdge := make([]bool, g.numEdges)
	for e := range keepEdge {
		r := g.edge(e)
		keepEdge[e] = r.age() == age && nodeMap[r.node1()] >= 0 && nodeMap[r.node2()] >= 0
	}
	return g.induce("GenerationSlice", nodeMap, keepEdge)
}
