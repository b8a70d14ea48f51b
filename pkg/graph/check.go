package graph

import "fmt"

// IsConsistent reports whether Check finds no violation.
func (g *Graph) IsConsistent() bool { return g.Check() == nil }

// Check validates the agreement between the edge table and the connection
// table. It returns nil or the first *Violation found.
//
// Node runs are checked first (bounds, no gap between the in and out halves,
// each entry agreeing with its edge's endpoints), then every edge is looked up
// in node1's out half and node2's in half, then the degree totals.
func (g *Graph) Check() error {
	for n := 0; n < g.numNodes; n++ {
		if v := g.checkNode(n); v != nil {
			return v
		}
	}
	for e := 0; e < g.numEdges; e++ {
		if v := g.checkEdge(e); v != nil {
			return v
		}
	}
	totalIn, totalOut := 0, 0
	for n := 0; n < g.numNodes; n++ {
		totalIn += g.node(n).inDegree()
		totalOut += g.node(n).outDegree()
	}
	if totalIn != g.numEdges || totalOut != g.numEdges {
		return &Violation{Kind: ViolationDegreeTotal, Index: -1,
			Detail: fmt.Sprintf("in-degree sum %d, out-degree sum %d, edges %d", totalIn, totalOut, g.numEdges)}
	}
	return nil
}

func (g *Graph) checkNode(n int) *Violation {
	r := g.node(n)
	in, out := r.inDegree(), r.outDegree()
	start := r.inOffset()
	if in < 0 || out < 0 || start < 0 || start+in+out > g.numConns {
		return &Violation{Kind: ViolationRunBounds, Index: n,
			Detail: fmt.Sprintf("run [%d,+%d+%d) outside %d connection slots", start, in, out, g.numConns)}
	}
	if r.outOffset() != start+in {
		return &Violation{Kind: ViolationRunGap, Index: n,
			Detail: fmt.Sprintf("out half at %d, in half ends at %d", r.outOffset(), start+in)}
	}
	if ls, ll := r.labelStart(), r.labelLen(); ls < 0 || ll < 0 || ls+ll > g.NodeLabelUnits() {
		return &Violation{Kind: ViolationLabelBounds, Index: n,
			Detail: fmt.Sprintf("label [%d,+%d) outside %d code units", ls, ll, g.NodeLabelUnits())}
	}
	for i := start; i < start+in; i++ {
		e, m := connAt(g.conns, i)
		if !g.HasEdge(e) || g.edge(e).node2() != n || g.edge(e).node1() != m {
			return &Violation{Kind: ViolationInEntry, Index: n,
				Detail: fmt.Sprintf("in-entry (%d,%d) at slot %d does not match its edge", e, m, i)}
		}
	}
	for i := start + in; i < start+in+out; i++ {
		e, m := connAt(g.conns, i)
		if !g.HasEdge(e) || g.edge(e).node1() != n || g.edge(e).node2() != m {
			return &Violation{Kind: ViolationOutEntry, Index: n,
				Detail: fmt.Sprintf("out-entry (%d,%d) at slot %d does not match its edge", e, m, i)}
		}
	}
	return nil
}

func (g *Graph) checkEdge(e int) *Violation {
	r := g.edge(e)
	n1, n2 := r.node1(), r.node2()
	if !g.HasNode(n1) || !g.HasNode(n2) {
		return &Violation{Kind: ViolationEdgeEndpoint, Index: e,
			Detail: fmt.Sprintf("endpoints (%d,%d) not in [0,%d)", n1, n2, g.numNodes)}
	}
	if ls, ll := r.labelStart(), r.labelLen(); ls < 0 || ll < 0 || ls+ll > g.EdgeLabelUnits() {
		return &Violation{Kind: ViolationLabelBounds, Index: e,
			Detail: fmt.Sprintf("label [%d,+%d) outside %d code units", ls, ll, g.EdgeLabelUnits())}
	}
	rec1 := g.node(n1)
	switch c := g.countEntries(rec1.outOffset(), rec1.outDegree(), e, n2); {
	case c == 0:
		return &Violation{Kind: ViolationMissingOut, Index: e,
			Detail: fmt.Sprintf("not in the out-list of node %d", n1)}
	case c > 1:
		return &Violation{Kind: ViolationDuplicateEntry, Index: e,
			Detail: fmt.Sprintf("%d times in the out-list of node %d", c, n1)}
	}
	rec2 := g.node(n2)
	switch c := g.countEntries(rec2.inOffset(), rec2.inDegree(), e, n1); {
	case c == 0:
		return &Violation{Kind: ViolationMissingIn, Index: e,
			Detail: fmt.Sprintf("not in the in-list of node %d", n2)}
	case c > 1:
		return &Violation{Kind: ViolationDuplicateEntry, Index: e,
			Detail: fmt.Sprintf("%d times in the in-list of node %d", c, n2)}
	}
	return nil
}

func (g *Graph) countEntries(start, count, e, m int) int {
	c := 0
	for i := start; i < start+count; i++ {
		if ce, cm := connAt(g.conns, i); ce == e && cm == m {
			c++
		}
	}
	return c
}
