package graph

import "fmt"

// Build constructs a graph from explicit node and edge lists.
//
// Construction takes two passes. The first sizes the record tables and label
// arenas exactly and records every label's (offset, length). The second counts
// each node's in- and out-degree, assigns each node a run starting at the
// cumulative size of all earlier runs, and fills the runs in edge order.
func Build(name string, nodes []NodeSpec, edges []EdgeSpec, opts ...Option) (*Graph, error) {
	o := applyOptions(opts)
	return build("Build", name, o.direct, nodes, edges)
}

func build(op, name string, direct bool, nodes []NodeSpec, edges []EdgeSpec) (*Graph, error) {
	if len(nodes) > MaxIndex {
		return nil, fmt.Errorf("%s: %d nodes exceed the index space: %w", op, len(nodes), ErrCapacity)
	}
	if 2*len(edges) > MaxIndex {
		return nil, fmt.Errorf("%s: %d edges exceed the connection index space: %w", op, len(edges), ErrCapacity)
	}

	// Pass 1: validate and size.
	nodeUnits, edgeUnits := 0, 0
	for i, n := range nodes {
		u, err := checkLabel(op, "node", i, n.Label)
		if err != nil {
			return nil, err
		}
		nodeUnits += u
	}
	for i, e := range edges {
		if e.Node1 < 0 || e.Node1 >= len(nodes) {
			return nil, fmt.Errorf("%s: edge %d node1 %d not in [0,%d): %w", op, i, e.Node1, len(nodes), ErrRange)
		}
		if e.Node2 < 0 || e.Node2 >= len(nodes) {
			return nil, fmt.Errorf("%s: edge %d node2 %d not in [0,%d): %w", op, i, e.Node2, len(nodes), ErrRange)
		}
		u, err := checkLabel(op, "edge", i, e.Label)
		if err != nil {
			return nil, err
		}
		edgeUnits += u
	}
	if err := checkArena(op, "node", nodeUnits); err != nil {
		return nil, err
	}
	if err := checkArena(op, "edge", edgeUnits); err != nil {
		return nil, err
	}

	r := allocRegions(direct,
		len(nodes)*NodeRecordSize,
		len(edges)*EdgeRecordSize,
		2*len(edges)*ConnectionRecordSize,
		nodeUnits*LabelUnitSize,
		edgeUnits*LabelUnitSize,
	)

	nw := labelWriter{arena: r.nodeLabels}
	for i, n := range nodes {
		rec := nodeRec(r.nodes[i*NodeRecordSize : (i+1)*NodeRecordSize])
		rec.setLabel(nw.write(n.Label))
		rec.setAttrs(n.Weight, n.Type, n.Age)
	}
	ew := labelWriter{arena: r.edgeLabels}
	for i, e := range edges {
		rec := edgeRec(r.edges[i*EdgeRecordSize : (i+1)*EdgeRecordSize])
		rec.setEnds(e.Node1, e.Node2)
		rec.setLabel(ew.write(e.Label))
		rec.setAttrs(e.Weight, e.Type, e.Age)
	}

	// Pass 2: connection table.
	fillConnections(r.nodes, len(nodes), r.edges, len(edges), r.conns)

	return newGraph(name, direct, r), nil
}

// fillConnections lays out one run per node in conns, which must hold exactly
// 2*numEdges entries, and points every node record at its run.
func fillConnections(nodes []byte, numNodes int, edges []byte, numEdges int, conns []byte) {
	in := make([]int, numNodes)
	out := make([]int, numNodes)
	for e := 0; e < numEdges; e++ {
		rec := edgeRec(edges[e*EdgeRecordSize : (e+1)*EdgeRecordSize])
		out[rec.node1()]++
		in[rec.node2()]++
	}

	// inCur/outCur hold the next free slot of each node's in and out halves.
	inCur := make([]int, numNodes)
	outCur := make([]int, numNodes)
	off := 0
	for n := 0; n < numNodes; n++ {
		nodeRec(nodes[n*NodeRecordSize:(n+1)*NodeRecordSize]).setRun(off, in[n], out[n])
		inCur[n] = off
		outCur[n] = off + in[n]
		off += in[n] + out[n]
	}

	for e := 0; e < numEdges; e++ {
		rec := edgeRec(edges[e*EdgeRecordSize : (e+1)*EdgeRecordSize])
		n1, n2 := rec.node1(), rec.node2()
		putConn(conns, outCur[n1], e, n2)
		outCur[n1]++
		putConn(conns, inCur[n2], e, n1)
		inCur[n2]++
	}
}
