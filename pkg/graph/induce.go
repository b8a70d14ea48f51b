package graph

import (
	"fmt"
	"slices"
)

// InduceSubgraph returns the graph made of the listed nodes and edges. Every
// listed edge must have both endpoints in nodeSet. Survivors are renumbered
// densely from 0 in ascending original index order and all regions are
// rebuilt, so the result carries no slack. Duplicates in either set are
// ignored.
func (g *Graph) InduceSubgraph(nodeSet, edgeSet []int) (*Graph, error) {
	const op = "InduceSubgraph"
	nodeMap := make([]int, g.numNodes)
	for i := range nodeMap {
		nodeMap[i] = -1
	}
	for _, n := range nodeSet {
		if !g.HasNode(n) {
			return nil, rangeErr(op, "node", n, g.numNodes)
		}
		nodeMap[n] = 0
	}
	keepEdge := make([]bool, g.numEdges)
	for _, e := range edgeSet {
		if !g.HasEdge(e) {
			return nil, rangeErr(op, "edge", e, g.numEdges)
		}
		r := g.edge(e)
		if nodeMap[r.node1()] < 0 || nodeMap[r.node2()] < 0 {
			return nil, fmt.Errorf("%s: edge %d joins %d and %d, not both in the node set: %w",
				op, e, r.node1(), r.node2(), ErrPrecondition)
		}
		keepEdge[e] = true
	}
	return g.induce(op, nodeMap, keepEdge), nil
}

// induce rebuilds g keeping nodes with nodeMap[n] >= 0 and edges with
// keepEdge[e]. Kept edges must join kept nodes. nodeMap is overwritten with
// the new indices.
func (g *Graph) induce(op string, nodeMap []int, keepEdge []bool) *Graph {
	nodes := make([]NodeSpec, 0, g.numNodes)
	for n := range nodeMap {
		if nodeMap[n] < 0 {
			continue
		}
		nodeMap[n] = len(nodes)
		nodes = append(nodes, g.Node(n))
	}
	edges := make([]EdgeSpec, 0, g.numEdges)
	for e, keep := range keepEdge {
		if !keep {
			continue
		}
		spec := g.Edge(e)
		spec.Node1, spec.Node2 = nodeMap[spec.Node1], nodeMap[spec.Node2]
		edges = append(edges, spec)
	}
	ng, err := build(op, g.name, g.direct, nodes, edges)
	if err != nil {
		// Labels and indices were valid in g and the result is no larger.
		panic(err)
	}
	return ng
}

// DeleteNodesAndEdges returns g without the listed nodes and edges. Edges
// incident to a deleted node are dropped as well. It is the complement form of
// InduceSubgraph.
func (g *Graph) DeleteNodesAndEdges(nodes, edges []int) (*Graph, error) {
	const op = "DeleteNodesAndEdges"
	nodeMap := make([]int, g.numNodes)
	for _, n := range nodes {
		if !g.HasNode(n) {
			return nil, rangeErr(op, "node", n, g.numNodes)
		}
		nodeMap[n] = -1
	}
	keepEdge := make([]bool, g.numEdges)
	for e := range keepEdge {
		r := g.edge(e)
		keepEdge[e] = nodeMap[r.node1()] >= 0 && nodeMap[r.node2()] >= 0
	}
	for _, e := range edges {
		if !g.HasEdge(e) {
			return nil, rangeErr(op, "edge", e, g.numEdges)
		}
		keepEdge[e] = false
	}
	return g.induce(op, nodeMap, keepEdge), nil
}

// IncidentEdges returns the sorted, de-duplicated edges touching any node in
// nodes. It is the edge set to remove before deleting those nodes.
func (g *Graph) IncidentEdges(nodes []int) []int {
	var out []int
	for _, n := range nodes {
		for e := range g.Neighbors(n) {
			out = append(out, e)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// SlackStats reports unreachable space left behind by edits.
type SlackStats struct {
	// Connections is the number of connection slots not inside any node's run.
	Connections int
	// NodeLabelUnits and EdgeLabelUnits count arena code units no label uses.
	NodeLabelUnits int
	EdgeLabelUnits int
}

// Slack measures g's unreachable connection slots and label code units.
func (g *Graph) Slack() SlackStats {
	s := SlackStats{
		Connections:    g.numConns - 2*g.numEdges,
		NodeLabelUnits: g.NodeLabelUnits(),
		EdgeLabelUnits: g.EdgeLabelUnits(),
	}
	for n := 0; n < g.numNodes; n++ {
		s.NodeLabelUnits -= g.node(n).labelLen()
	}
	for e := 0; e < g.numEdges; e++ {
		s.EdgeLabelUnits -= g.edge(e).labelLen()
	}
	return s
}

// Compact returns a copy of g with all slack reclaimed. Indices, attributes and
// run order are unchanged.
func (g *Graph) Compact() *Graph {
	nodeMap := make([]int, g.numNodes)
	keepEdge := make([]bool, g.numEdges)
	for e := range keepEdge {
		keepEdge[e] = true
	}
	return g.induce("Compact", nodeMap, keepEdge)
}
