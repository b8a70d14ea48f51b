package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are package globals registered through promauto on the default
// registry; the CLI and the HTTP API expose them with promhttp.

var (
	// Searches run by the matchers, labeled by matcher ("whole", "subgraph")
	// and outcome (the whole-graph reason, or "found", "none", "cancelled").
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kektorgraph_searches_total",
			Help: "Total number of isomorphism searches run",
		},
		[]string{"matcher", "outcome"},
	)

	// Wall time of one search. Buckets run from a trivial count mismatch to a
	// long exhaustive backtrack.
	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kektorgraph_search_duration_seconds",
			Help:    "Duration of isomorphism searches in seconds",
			Buckets: []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
		},
		[]string{"matcher"},
	)

	// Candidate assignments evaluated by the matchers.
	SearchSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kektorgraph_search_steps_total",
			Help: "Total number of candidate assignments evaluated",
		},
		[]string{"matcher"},
	)

	// Catalog operations, labeled by op (put, get, delete, load) and status
	// (ok, error, cached).
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kektorgraph_store_operations_total",
			Help: "Total number of graph store operations",
		},
		[]string{"op", "status"},
	)

	// Size of each stored graph, labeled by graph name and kind (nodes, edges).
	GraphElements = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kektorgraph_graph_elements",
			Help: "Number of nodes or edges in each stored graph",
		},
		[]string{"graph", "kind"},
	)

	// HTTP API requests, labeled by method, route pattern and status code.
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kektorgraph_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kektorgraph_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
