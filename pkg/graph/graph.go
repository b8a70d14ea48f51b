// Package graph implements a compact binary graph engine.
//
// A Graph owns five flat byte regions: the node table (28-byte records), the
// edge table (20-byte records), the connection table (8-byte (edge, node)
// pairs), and two label arenas of UTF-16 code units. Every query is index
// arithmetic over these regions; there are no per-node heap objects.
//
// Each node's adjacency is one contiguous run in the connection table, its
// in-entries first and its out-entries right after. Both halves are ordered by
// ascending edge index.
//
// A Graph is immutable. Structural edits (InsertNode, DeleteEdge,
// InduceSubgraph, AdvanceGeneration, ...) return a new instance and leave the
// receiver untouched, so any instance can be read from many goroutines without
// locking.
//
// Basic usage:
//
//	g, err := graph.Build("demo",
//	    []graph.NodeSpec{{Label: "a"}, {Label: "b"}},
//	    []graph.EdgeSpec{{Node1: 0, Node2: 1, Label: "ab"}},
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	g2, _, err := g.InsertNode(graph.NodeSpec{Label: "c"})
package graph

// TimeEdgeType is the type tag of the synthetic edges AdvanceGeneration uses to
// link a node to its next-generation copy.
const TimeEdgeType int8 = -1

// TimeEdgeLabel is the label of synthetic generation edges.
const TimeEdgeLabel = "time"

// NodeSpec carries the scalar attributes of one node.
type NodeSpec struct {
	Label  string `json:"label"`
	Weight int32  `json:"weight"`
	Type   int8   `json:"type"`
	Age    int8   `json:"age"`
}

// EdgeSpec carries the endpoints and scalar attributes of one edge. Node1 is
// the "from" end and Node2 the "to" end under a directed interpretation.
type EdgeSpec struct {
	Node1  int    `json:"node1"`
	Node2  int    `json:"node2"`
	Label  string `json:"label"`
	Weight int32  `json:"weight"`
	Type   int8   `json:"type"`
	Age    int8   `json:"age"`
}

// Graph is an immutable graph instance. Create one with Build, Random, Load or
// the ingest package; derive new ones with the edit methods.
type Graph struct {
	name   string
	direct bool

	numNodes int
	numEdges int
	numConns int

	regions

	oldestGen int8
	newestGen int8
}

// Option configures graph construction.
type Option func(*options)

type options struct {
	direct bool
}

// WithDirect selects the storage mode. In direct mode the five regions share a
// single contiguous allocation.
func WithDirect(direct bool) Option {
	return func(o *options) { o.direct = direct }
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Name returns the graph's name.
func (g *Graph) Name() string { return g.name }

// Direct reports whether the regions share one contiguous allocation.
func (g *Graph) Direct() bool { return g.direct }

// NumNodes returns the number of nodes.
func (g *Graph) NumNodes() int { return g.numNodes }

// NumEdges returns the number of edges.
func (g *Graph) NumEdges() int { return g.numEdges }

// NumConnections returns the number of connection-table slots, including slack.
func (g *Graph) NumConnections() int { return g.numConns }

// NodeLabelUnits returns the size of the node label arena in code units,
// including slack.
func (g *Graph) NodeLabelUnits() int { return len(g.nodeLabels) / LabelUnitSize }

// EdgeLabelUnits returns the size of the edge label arena in code units,
// including slack.
func (g *Graph) EdgeLabelUnits() int { return len(g.edgeLabels) / LabelUnitSize }

// OldestGeneration returns the smallest node age, or 0 for an empty graph.
func (g *Graph) OldestGeneration() int8 { return g.oldestGen }

// NewestGeneration returns the largest node age, or 0 for an empty graph.
func (g *Graph) NewestGeneration() int8 { return g.newestGen }

// Clone returns a deep copy. The copy shares no memory with g.
func (g *Graph) Clone() *Graph {
	return newGraph(g.name, g.direct, g.copyRegions(g.direct))
}

// Rename returns a copy of g carrying a new name.
func (g *Graph) Rename(name string) *Graph {
	return newGraph(name, g.direct, g.copyRegions(g.direct))
}

// WithStorage returns a copy of g in the requested storage mode.
func (g *Graph) WithStorage(direct bool) *Graph {
	return newGraph(g.name, direct, g.copyRegions(direct))
}

func (g *Graph) copyRegions(direct bool) regions {
	return g.resizedAs(direct, len(g.nodes), len(g.edges), len(g.conns), len(g.nodeLabels), len(g.edgeLabels))
}

// resized allocates regions of the given byte sizes in g's storage mode and
// copies as much of g's regions into them as fits.
func (g *Graph) resized(nodes, edges, conns, nodeLabels, edgeLabels int) regions {
	return g.resizedAs(g.direct, nodes, edges, conns, nodeLabels, edgeLabels)
}

func (g *Graph) resizedAs(direct bool, nodes, edges, conns, nodeLabels, edgeLabels int) regions {
	r := allocRegions(direct, nodes, edges, conns, nodeLabels, edgeLabels)
	copy(r.nodes, g.nodes)
	copy(r.edges, g.edges)
	copy(r.conns, g.conns)
	copy(r.nodeLabels, g.nodeLabels)
	copy(r.edgeLabels, g.edgeLabels)
	return r
}

// newGraph wraps r in a Graph, deriving the counts from region sizes.
func newGraph(name string, direct bool, r regions) *Graph {
	ng := &Graph{
		name:     name,
		direct:   direct,
		numNodes: len(r.nodes) / NodeRecordSize,
		numEdges: len(r.edges) / EdgeRecordSize,
		numConns: len(r.conns) / ConnectionRecordSize,
		regions:  r,
	}
	ng.scanGenerations()
	return ng
}

func (g *Graph) scanGenerations() {
	if g.numNodes == 0 {
		g.oldestGen, g.newestGen = 0, 0
		return
	}
	lo, hi := int8(MaxAge), int8(MinAge)
	for n := 0; n < g.numNodes; n++ {
		a := g.node(n).age()
		lo = min(lo, a)
		hi = max(hi, a)
	}
	g.oldestGen, g.newestGen = lo, hi
}

func (g *Graph) node(n int) nodeRec {
	off := n * NodeRecordSize
	return nodeRec(g.nodes[off : off+NodeRecordSize])
}

func (g *Graph) edge(e int) edgeRec {
	off := e * EdgeRecordSize
	return edgeRec(g.edges[off : off+EdgeRecordSize])
}
