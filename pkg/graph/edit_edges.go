package graph

import "fmt"

// InsertEdge returns a copy of g with one extra edge appended, and the new
// edge's index. The runs of both endpoints are rewritten at the end of the
// connection region with the new entry added; their old entries become slack.
func (g *Graph) InsertEdge(spec EdgeSpec) (*Graph, int, error) {
	const op = "InsertEdge"
	if !g.HasNode(spec.Node1) {
		return nil, 0, rangeErr(op, "node1", spec.Node1, g.numNodes)
	}
	if !g.HasNode(spec.Node2) {
		return nil, 0, rangeErr(op, "node2", spec.Node2, g.numNodes)
	}
	units, err := checkLabel(op, "edge", g.numEdges, spec.Label)
	if err != nil {
		return nil, 0, err
	}
	if err := checkArena(op, "edge", g.EdgeLabelUnits()+units); err != nil {
		return nil, 0, err
	}

	n1, n2 := spec.Node1, spec.Node2
	grow := g.Degree(n1) + 1
	if n2 != n1 {
		grow += g.Degree(n2) + 1
	} else {
		grow++
	}
	if g.numConns+grow > MaxIndex || 2*(g.numEdges+1) > MaxIndex {
		return nil, 0, fmt.Errorf("%s: connection index space exhausted: %w", op, ErrCapacity)
	}

	r := g.resized(
		len(g.nodes),
		len(g.edges)+EdgeRecordSize,
		len(g.conns)+grow*ConnectionRecordSize,
		len(g.nodeLabels),
		len(g.edgeLabels)+units*LabelUnitSize,
	)

	e := g.numEdges
	rec := edgeRec(r.edges[e*EdgeRecordSize:])
	rec.setEnds(n1, n2)
	w := labelWriter{arena: r.edgeLabels, next: g.EdgeLabelUnits()}
	rec.setLabel(w.write(spec.Label))
	rec.setAttrs(spec.Weight, spec.Type, spec.Age)

	// The new edge has the largest index, so appending keeps each half sorted.
	if n1 == n2 {
		g.appendRun(r, n1, g.numConns, e, n1, n1)
	} else {
		next := g.appendRun(r, n1, g.numConns, e, -1, n2)
		g.appendRun(r, n2, next, e, n1, -1)
	}
	return newGraph(g.name, g.direct, r), e, nil
}

// appendRun copies node n's run to slot at in r and returns the slot after the
// new run. A non-negative inFrom adds (e, inFrom) to the in half; a
// non-negative outTo adds (e, outTo) to the out half.
func (g *Graph) appendRun(r regions, n, at, e, inFrom, outTo int) int {
	old := g.node(n)
	in, out := old.inDegree(), old.outDegree()

	pos := at
	copy(r.conns[pos*ConnectionRecordSize:], g.conns[old.inOffset()*ConnectionRecordSize:(old.inOffset()+in)*ConnectionRecordSize])
	pos += in
	if inFrom >= 0 {
		putConn(r.conns, pos, e, inFrom)
		pos++
		in++
	}
	copy(r.conns[pos*ConnectionRecordSize:], g.conns[old.outOffset()*ConnectionRecordSize:(old.outOffset()+out)*ConnectionRecordSize])
	pos += out
	if outTo >= 0 {
		putConn(r.conns, pos, e, outTo)
		pos++
		out++
	}
	nodeRec(r.nodes[n*NodeRecordSize:(n+1)*NodeRecordSize]).setRun(at, in, out)
	return pos
}

// DeleteEdge returns a copy of g without edge e. Later edge records shift down
// one slot and every connection entry referencing an edge index above e is
// decremented. The in- and out-entries of e are removed by compacting only the
// two affected runs; the freed slot at the end of each run becomes slack.
func (g *Graph) DeleteEdge(e int) (*Graph, error) {
	const op = "DeleteEdge"
	if !g.HasEdge(e) {
		return nil, rangeErr(op, "edge", e, g.numEdges)
	}

	r := g.resized(
		len(g.nodes),
		len(g.edges)-EdgeRecordSize,
		len(g.conns),
		len(g.nodeLabels),
		len(g.edgeLabels),
	)
	cut := e * EdgeRecordSize
	copy(r.edges[cut:], g.edges[cut+EdgeRecordSize:])

	old := g.edge(e)
	removeOut(r, old.node1(), e)
	removeIn(r, old.node2(), e)

	for i := 0; i < g.numConns; i++ {
		if ce, m := connAt(r.conns, i); ce > e {
			putConn(r.conns, i, ce-1, m)
		}
	}
	return newGraph(g.name, g.direct, r), nil
}

// removeOut drops edge e from the out half of n's run.
func removeOut(r regions, n, e int) {
	rec := nodeRec(r.nodes[n*NodeRecordSize : (n+1)*NodeRecordSize])
	start, out := rec.outOffset(), rec.outDegree()
	for i := start; i < start+out; i++ {
		if ce, _ := connAt(r.conns, i); ce == e {
			shiftLeft(r.conns, i, start+out)
			rec.setRun(rec.inOffset(), rec.inDegree(), out-1)
			return
		}
	}
}

// removeIn drops edge e from the in half of n's run, moving the out half down
// with it so the run stays contiguous.
func removeIn(r regions, n, e int) {
	rec := nodeRec(r.nodes[n*NodeRecordSize : (n+1)*NodeRecordSize])
	start, in, out := rec.inOffset(), rec.inDegree(), rec.outDegree()
	for i := start; i < start+in; i++ {
		if ce, _ := connAt(r.conns, i); ce == e {
			shiftLeft(r.conns, i, start+in+out)
			rec.setRun(start, in-1, out)
			return
		}
	}
}

// shiftLeft moves connection slots (i, end) one slot down, overwriting slot i.
func shiftLeft(conns []byte, i, end int) {
	copy(conns[i*ConnectionRecordSize:end*ConnectionRecordSize], conns[(i+1)*ConnectionRecordSize:end*ConnectionRecordSize])
}

// RelabelEdge returns a copy of g in which edge e carries label. The new text is
// appended to the arena; the old text stays behind as slack.
func (g *Graph) RelabelEdge(e int, label string) (*Graph, error) {
	const op = "RelabelEdge"
	if !g.HasEdge(e) {
		return nil, rangeErr(op, "edge", e, g.numEdges)
	}
	units, err := checkLabel(op, "edge", e, label)
	if err != nil {
		return nil, err
	}
	if err := checkArena(op, "edge", g.EdgeLabelUnits()+units); err != nil {
		return nil, err
	}
	r := g.resized(
		len(g.nodes),
		len(g.edges),
		len(g.conns),
		len(g.nodeLabels),
		len(g.edgeLabels)+units*LabelUnitSize,
	)

	w := labelWriter{arena: r.edgeLabels, next: g.EdgeLabelUnits()}
	edgeRec(r.edges[e*EdgeRecordSize : (e+1)*EdgeRecordSize]).setLabel(w.write(label))
	return newGraph(g.name, g.direct, r), nil
}

// Rewire moves one edge to new endpoints.
type Rewire struct {
	Edge  int
	Node1 int
	Node2 int
}

// RewireEdges returns a copy of g in which every listed edge has the given
// endpoints. Edge indices, labels and attributes are preserved; only the
// connection table is rebuilt. When an edge is listed twice the last entry wins.
func (g *Graph) RewireEdges(rewires []Rewire) (*Graph, error) {
	const op = "RewireEdges"
	for _, rw := range rewires {
		if !g.HasEdge(rw.Edge) {
			return nil, rangeErr(op, "edge", rw.Edge, g.numEdges)
		}
		if !g.HasNode(rw.Node1) {
			return nil, rangeErr(op, "node1", rw.Node1, g.numNodes)
		}
		if !g.HasNode(rw.Node2) {
			return nil, rangeErr(op, "node2", rw.Node2, g.numNodes)
		}
	}

	r := g.resized(
		len(g.nodes),
		len(g.edges),
		2*g.numEdges*ConnectionRecordSize,
		len(g.nodeLabels),
		len(g.edgeLabels),
	)
	for _, rw := range rewires {
		edgeRec(r.edges[rw.Edge*EdgeRecordSize:(rw.Edge+1)*EdgeRecordSize]).setEnds(rw.Node1, rw.Node2)
	}
	fillConnections(r.nodes, g.numNodes, r.edges, g.numEdges, r.conns)
	return newGraph(g.name, g.direct, r), nil
}
