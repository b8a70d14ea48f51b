package graph

import "fmt"

// InsertNode returns a copy of g with one extra zero-degree node appended, and
// the new node's index. Existing regions are copied verbatim; the label is
// appended to a larger node label arena.
func (g *Graph) InsertNode(spec NodeSpec) (*Graph, int, error) {
	const op = "InsertNode"
	if g.numNodes+1 > MaxIndex {
		return nil, 0, fmt.Errorf("%s: node index space exhausted: %w", op, ErrCapacity)
	}
	units, err := checkLabel(op, "node", g.numNodes, spec.Label)
	if err != nil {
		return nil, 0, err
	}
	if err := checkArena(op, "node", g.NodeLabelUnits()+units); err != nil {
		return nil, 0, err
	}

	r := g.resized(
		len(g.nodes)+NodeRecordSize,
		len(g.edges),
		len(g.conns),
		len(g.nodeLabels)+units*LabelUnitSize,
		len(g.edgeLabels),
	)

	n := g.numNodes
	rec := nodeRec(r.nodes[n*NodeRecordSize:])
	w := labelWriter{arena: r.nodeLabels, next: g.NodeLabelUnits()}
	rec.setLabel(w.write(spec.Label))
	rec.setRun(g.numConns, 0, 0)
	rec.setAttrs(spec.Weight, spec.Type, spec.Age)

	return newGraph(g.name, g.direct, r), n, nil
}

// DeleteNode returns a copy of g without node n. The node must have no incident
// edges; remove them first. Nodes after n shift down by one index and every
// edge endpoint and connection entry is renumbered accordingly.
func (g *Graph) DeleteNode(n int) (*Graph, error) {
	const op = "DeleteNode"
	if !g.HasNode(n) {
		return nil, rangeErr(op, "node", n, g.numNodes)
	}
	if d := g.Degree(n); d != 0 {
		return nil, fmt.Errorf("%s: node %d has degree %d: %w", op, n, d, ErrPrecondition)
	}

	r := g.resized(
		len(g.nodes)-NodeRecordSize,
		len(g.edges),
		len(g.conns),
		len(g.nodeLabels),
		len(g.edgeLabels),
	)
	cut := n * NodeRecordSize
	copy(r.nodes[cut:], g.nodes[cut+NodeRecordSize:])

	for e := 0; e < g.numEdges; e++ {
		rec := edgeRec(r.edges[e*EdgeRecordSize : (e+1)*EdgeRecordSize])
		n1, n2 := rec.node1(), rec.node2()
		if n1 > n {
			n1--
		}
		if n2 > n {
			n2--
		}
		rec.setEnds(n1, n2)
	}
	for i := 0; i < g.numConns; i++ {
		if e, m := connAt(r.conns, i); m > n {
			putConn(r.conns, i, e, m-1)
		}
	}
	return newGraph(g.name, g.direct, r), nil
}

// RelabelNode returns a copy of g in which node n carries label. The new text is
// appended to the arena; the old text stays behind as slack.
func (g *Graph) RelabelNode(n int, label string) (*Graph, error) {
	const op = "RelabelNode"
	if !g.HasNode(n) {
		return nil, rangeErr(op, "node", n, g.numNodes)
	}
	units, err := checkLabel(op, "node", n, label)
	if err != nil {
		return nil, err
	}
	if err := checkArena(op, "node", g.NodeLabelUnits()+units); err != nil {
		return nil, err
	}
	r := g.resized(
		len(g.nodes),
		len(g.edges),
		len(g.conns),
		len(g.nodeLabels)+units*LabelUnitSize,
		len(g.edgeLabels),
	)

	w := labelWriter{arena: r.nodeLabels, next: g.NodeLabelUnits()}
	nodeRec(r.nodes[n*NodeRecordSize:(n+1)*NodeRecordSize]).setLabel(w.write(label))
	return newGraph(g.name, g.direct, r), nil
}
