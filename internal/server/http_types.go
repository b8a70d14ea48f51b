package server

import (
	"github.com/sanonone/kektorgraph/pkg/graph"
	"github.com/sanonone/kektorgraph/pkg/isomorph"
)

// GraphSummary is one catalog entry.
type GraphSummary struct {
	Key            string `json:"key"`
	Name           string `json:"name"`
	Nodes          int    `json:"nodes"`
	Edges          int    `json:"edges"`
	NodeLabelBytes int    `json:"node_label_bytes"`
	EdgeLabelBytes int    `json:"edge_label_bytes"`
	Direct         bool   `json:"direct"`
}

func summaryOf(key string, info graph.Info) GraphSummary {
	return GraphSummary{
		Key:            key,
		Name:           info.Name,
		Nodes:          info.NumberOfNodes,
		Edges:          info.NumberOfEdges,
		NodeLabelBytes: info.NumberOfNodeLabelBytes,
		EdgeLabelBytes: info.NumberOfEdgeLabelBytes,
		Direct:         info.Direct,
	}
}

// GraphDetail adds the in-memory layout figures of a loaded graph.
type GraphDetail struct {
	GraphSummary
	Connections      int  `json:"connections"`
	SlackConnections int  `json:"slack_connections"`
	SlackNodeUnits   int  `json:"slack_node_label_units"`
	SlackEdgeUnits   int  `json:"slack_edge_label_units"`
	OldestGeneration int8 `json:"oldest_generation"`
	NewestGeneration int8 `json:"newest_generation"`
}

// CheckResponse reports the consistency of a stored graph.
type CheckResponse struct {
	Key        string `json:"key"`
	Consistent bool   `json:"consistent"`
	Kind       string `json:"kind,omitempty"`
	Index      int    `json:"index,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// InduceRequest stores the subgraph of a graph made of the given nodes and
// edges under a new key.
type InduceRequest struct {
	Key   string `json:"key"`
	Nodes []int  `json:"nodes"`
	Edges []int  `json:"edges"`
}

// KeyPair names two stored graphs.
type KeyPair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// IsomorphicRequest asks for whole-graph isomorphism of each pair. Workers is
// clamped to match.max_workers.
type IsomorphicRequest struct {
	Pairs   []KeyPair `json:"pairs"`
	Workers int       `json:"workers,omitempty"`
}

// IsomorphicResult is the outcome for one pair.
type IsomorphicResult struct {
	A          string  `json:"a"`
	B          string  `json:"b"`
	Found      bool    `json:"found"`
	Reason     string  `json:"reason"`
	Mapping    []int   `json:"mapping,omitempty"`
	Steps      int     `json:"steps"`
	Backtracks int     `json:"backtracks"`
	ElapsedMS  float64 `json:"elapsed_ms"`
}

// IsomorphicResponse holds one result per requested pair, in order.
type IsomorphicResponse struct {
	Results []IsomorphicResult `json:"results"`
}

func isomorphicResult(p KeyPair, res isomorph.WholeResult) IsomorphicResult {
	return IsomorphicResult{
		A:          p.A,
		B:          p.B,
		Found:      res.Found,
		Reason:     res.Reason.String(),
		Mapping:    res.Mapping,
		Steps:      res.Stats.Steps,
		Backtracks: res.Stats.Backtracks,
		ElapsedMS:  float64(res.Stats.Elapsed.Microseconds()) / 1000,
	}
}

// SubgraphRequest asks for embeddings of Pattern in Target. Limit nil means
// the configured maximum; 0 means no limit. Async runs the search as a task.
type SubgraphRequest struct {
	Target  string `json:"target"`
	Pattern string `json:"pattern"`
	Labels  bool   `json:"labels,omitempty"`
	Limit   *int   `json:"limit,omitempty"`
	Async   bool   `json:"async,omitempty"`

	// InjectiveEdges maps parallel pattern edges to distinct target edges.
	InjectiveEdges bool `json:"injective_edges,omitempty"`
}

// EmbeddingView is the JSON form of isomorph.Embedding.
type EmbeddingView struct {
	Nodes []int `json:"nodes"`
	Edges []int `json:"edges"`
}

// SubgraphResponse lists the embeddings found.
type SubgraphResponse struct {
	Embeddings []EmbeddingView `json:"embeddings"`
	Steps      int             `json:"steps"`
	Backtracks int             `json:"backtracks"`
	ElapsedMS  float64         `json:"elapsed_ms"`
}

func subgraphResponse(found []isomorph.Embedding, stats isomorph.Stats) SubgraphResponse {
	out := SubgraphResponse{
		Embeddings: make([]EmbeddingView, len(found)),
		Steps:      stats.Steps,
		Backtracks: stats.Backtracks,
		ElapsedMS:  float64(stats.Elapsed.Microseconds()) / 1000,
	}
	for i, e := range found {
		out.Embeddings[i] = EmbeddingView{Nodes: e.Nodes, Edges: e.Edges}
	}
	return out
}

// PutGraphResponse reports where an uploaded graph was stored.
type PutGraphResponse struct {
	Key   string `json:"key"`
	Nodes int    `json:"nodes"`
	Edges int    `json:"edges"`
}
