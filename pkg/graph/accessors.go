package graph

import (
	"fmt"
	"iter"
	"slices"
)

// Index accessors panic with an error wrapping ErrRange when given an index
// outside [0,NumNodes) or [0,NumEdges), the same contract as slice indexing.
// Use HasNode and HasEdge to validate untrusted input first.

// HasNode reports whether n is a valid node index.
func (g *Graph) HasNode(n int) bool { return n >= 0 && n < g.numNodes }

// HasEdge reports whether e is a valid edge index.
func (g *Graph) HasEdge(e int) bool { return e >= 0 && e < g.numEdges }

func (g *Graph) mustNode(n int) nodeRec {
	if !g.HasNode(n) {
		panic(rangeErr("graph", "node", n, g.numNodes))
	}
	return g.node(n)
}

func (g *Graph) mustEdge(e int) edgeRec {
	if !g.HasEdge(e) {
		panic(rangeErr("graph", "edge", e, g.numEdges))
	}
	return g.edge(e)
}

// NodeLabel returns the label of node n.
func (g *Graph) NodeLabel(n int) string {
	r := g.mustNode(n)
	return decodeLabel(g.nodeLabels, r.labelStart(), r.labelLen())
}

// NodeWeight returns the weight of node n.
func (g *Graph) NodeWeight(n int) int32 { return g.mustNode(n).weight() }

// NodeType returns the type tag of node n.
func (g *Graph) NodeType(n int) int8 { return g.mustNode(n).typ() }

// NodeAge returns the generation of node n.
func (g *Graph) NodeAge(n int) int8 { return g.mustNode(n).age() }

// InDegree returns the number of edges whose node2 is n.
func (g *Graph) InDegree(n int) int { return g.mustNode(n).inDegree() }

// OutDegree returns the number of edges whose node1 is n.
func (g *Graph) OutDegree(n int) int { return g.mustNode(n).outDegree() }

// Degree returns InDegree(n)+OutDegree(n). A self-loop counts twice.
func (g *Graph) Degree(n int) int {
	r := g.mustNode(n)
	return r.inDegree() + r.outDegree()
}

// Node returns all attributes of node n.
func (g *Graph) Node(n int) NodeSpec {
	r := g.mustNode(n)
	return NodeSpec{
		Label:  decodeLabel(g.nodeLabels, r.labelStart(), r.labelLen()),
		Weight: r.weight(),
		Type:   r.typ(),
		Age:    r.age(),
	}
}

// Nodes returns the attributes of every node in index order.
func (g *Graph) Nodes() []NodeSpec {
	out := make([]NodeSpec, g.numNodes)
	for n := range out {
		out[n] = g.Node(n)
	}
	return out
}

// EdgeLabel returns the label of edge e.
func (g *Graph) EdgeLabel(e int) string {
	r := g.mustEdge(e)
	return decodeLabel(g.edgeLabels, r.labelStart(), r.labelLen())
}

// EdgeWeight returns the weight of edge e.
func (g *Graph) EdgeWeight(e int) int32 { return g.mustEdge(e).weight() }

// EdgeType returns the type tag of edge e.
func (g *Graph) EdgeType(e int) int8 { return g.mustEdge(e).typ() }

// EdgeAge returns the generation of edge e.
func (g *Graph) EdgeAge(e int) int8 { return g.mustEdge(e).age() }

// EdgeNode1 returns the "from" endpoint of edge e.
func (g *Graph) EdgeNode1(e int) int { return g.mustEdge(e).node1() }

// EdgeNode2 returns the "to" endpoint of edge e.
func (g *Graph) EdgeNode2(e int) int { return g.mustEdge(e).node2() }

// OtherEnd returns the endpoint of e that is not n. For a self-loop it is n.
func (g *Graph) OtherEnd(e, n int) int {
	r := g.mustEdge(e)
	if r.node1() == n {
		return r.node2()
	}
	return r.node1()
}

// Edge returns all attributes of edge e.
func (g *Graph) Edge(e int) EdgeSpec {
	r := g.mustEdge(e)
	return EdgeSpec{
		Node1:  r.node1(),
		Node2:  r.node2(),
		Label:  decodeLabel(g.edgeLabels, r.labelStart(), r.labelLen()),
		Weight: r.weight(),
		Type:   r.typ(),
		Age:    r.age(),
	}
}

// Edges returns the attributes of every edge in index order.
func (g *Graph) Edges() []EdgeSpec {
	out := make([]EdgeSpec, g.numEdges)
	for e := range out {
		out[e] = g.Edge(e)
	}
	return out
}

// ConnectingEdges returns the edges incident to n: in-edges first, then
// out-edges, each in ascending edge index order.
func (g *Graph) ConnectingEdges(n int) []int {
	buf := make([]int, g.Degree(n))
	g.fillRun(n, buf, nil)
	return buf
}

// ConnectingNodes returns the opposite endpoint of each edge reported by
// ConnectingEdges, in the same order.
func (g *Graph) ConnectingNodes(n int) []int {
	buf := make([]int, g.Degree(n))
	g.fillRun(n, nil, buf)
	return buf
}

// ConnectingEdgesInto writes the edges incident to n into buf and returns how
// many were written. buf must hold at least Degree(n) elements.
func (g *Graph) ConnectingEdgesInto(n int, buf []int) (int, error) {
	return g.ConnectionsInto(n, buf, nil)
}

// ConnectingNodesInto writes the neighbours of n into buf and returns how many
// were written. buf must hold at least Degree(n) elements.
func (g *Graph) ConnectingNodesInto(n int, buf []int) (int, error) {
	return g.ConnectionsInto(n, nil, buf)
}

// ConnectionsInto writes the incident edges and neighbours of n into the
// non-nil buffers. Each non-nil buffer must hold at least Degree(n) elements.
func (g *Graph) ConnectionsInto(n int, edges, nodes []int) (int, error) {
	if !g.HasNode(n) {
		return 0, rangeErr("ConnectionsInto", "node", n, g.numNodes)
	}
	d := g.Degree(n)
	if (edges != nil && len(edges) < d) || (nodes != nil && len(nodes) < d) {
		return 0, fmt.Errorf("ConnectionsInto: node %d has degree %d, buffers hold %d/%d: %w",
			n, d, len(edges), len(nodes), ErrCapacity)
	}
	g.fillRun(n, edges, nodes)
	return d, nil
}

func (g *Graph) fillRun(n int, edges, nodes []int) {
	r := g.node(n)
	start, d := r.inOffset(), r.inDegree()+r.outDegree()
	for i := 0; i < d; i++ {
		e, m := connAt(g.conns, start+i)
		if edges != nil {
			edges[i] = e
		}
		if nodes != nil {
			nodes[i] = m
		}
	}
}

// InEdges returns the edges whose node2 is n, in ascending order.
func (g *Graph) InEdges(n int) []int {
	r := g.mustNode(n)
	out := make([]int, r.inDegree())
	for i := range out {
		out[i], _ = connAt(g.conns, r.inOffset()+i)
	}
	return out
}

// OutEdges returns the edges whose node1 is n, in ascending order.
func (g *Graph) OutEdges(n int) []int {
	r := g.mustNode(n)
	out := make([]int, r.outDegree())
	for i := range out {
		out[i], _ = connAt(g.conns, r.outOffset()+i)
	}
	return out
}

// Neighbors iterates the (edge, neighbour) pairs of n without allocating.
func (g *Graph) Neighbors(n int) iter.Seq2[int, int] {
	r := g.mustNode(n)
	start, d := r.inOffset(), r.inDegree()+r.outDegree()
	return func(yield func(int, int) bool) {
		for i := 0; i < d; i++ {
			if !yield(connAt(g.conns, start+i)) {
				return
			}
		}
	}
}

// EdgesBetween returns every edge connecting a and b in either direction, in
// ascending order.
func (g *Graph) EdgesBetween(a, b int) []int {
	g.mustNode(b)
	var out []int
	if a == b {
		// A self-loop sits in both halves of the run; the out half lists it once.
		r := g.mustNode(a)
		for i := 0; i < r.outDegree(); i++ {
			if e, m := connAt(g.conns, r.outOffset()+i); m == a {
				out = append(out, e)
			}
		}
		return out
	}
	for e, m := range g.Neighbors(a) {
		if m == b {
			out = append(out, e)
		}
	}
	slices.Sort(out)
	return out
}

// HasEdgeBetween reports whether a and b are joined by at least one edge.
func (g *Graph) HasEdgeBetween(a, b int) bool {
	g.mustNode(b)
	for _, m := range g.Neighbors(a) {
		if m == b {
			return true
		}
	}
	return false
}

// SelfLoops returns the number of edges from n to itself.
func (g *Graph) SelfLoops(n int) int {
	r := g.mustNode(n)
	loops := 0
	for i := 0; i < r.outDegree(); i++ {
		if _, m := connAt(g.conns, r.outOffset()+i); m == n {
			loops++
		}
	}
	return loops
}
