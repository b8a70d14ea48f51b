package isomorph

import "time"

// Defaults used when no option overrides them.
const (
	DefaultCheckInterval = 1024
	DefaultEigenMaxNodes = 500
	DefaultEigenDecimals = 6
)

// Option configures a matcher. Options that do not apply to a matcher are
// ignored by it.
type Option func(*settings)

type settings struct {
	checkInterval int
	eigenMaxNodes int
	eigenDecimals int
	nodeCmp       NodeComparator
	edgeCmp       EdgeComparator

	injectiveEdges bool
}

func newSettings(opts []Option) settings {
	s := settings{
		checkInterval: DefaultCheckInterval,
		eigenMaxNodes: DefaultEigenMaxNodes,
		eigenDecimals: DefaultEigenDecimals,
		nodeCmp:       AnyNode,
		edgeCmp:       AnyEdge,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.checkInterval <= 0 {
		s.checkInterval = DefaultCheckInterval
	}
	if s.nodeCmp == nil {
		s.nodeCmp = AnyNode
	}
	if s.edgeCmp == nil {
		s.edgeCmp = AnyEdge
	}
	return s
}

// WithCheckInterval sets how many search steps run between context checks.
func WithCheckInterval(steps int) Option {
	return func(s *settings) { s.checkInterval = steps }
}

// WithEigenMaxNodes skips the spectrum filter for graphs with more nodes than
// n. Zero or a negative value disables the filter.
func WithEigenMaxNodes(n int) Option {
	return func(s *settings) { s.eigenMaxNodes = n }
}

// WithEigenDecimals sets the number of decimals eigenvalues are compared at.
func WithEigenDecimals(d int) Option {
	return func(s *settings) { s.eigenDecimals = d }
}

// WithNodeComparator sets the subgraph matcher's node comparator.
func WithNodeComparator(c NodeComparator) Option {
	return func(s *settings) { s.nodeCmp = c }
}

// WithEdgeComparator sets the subgraph matcher's edge comparator.
func WithEdgeComparator(c EdgeComparator) Option {
	return func(s *settings) { s.edgeCmp = c }
}

// WithInjectiveEdges makes the subgraph matcher map distinct pattern edges to
// distinct target edges, so parallel pattern edges need as many parallel
// target edges.
func WithInjectiveEdges() Option {
	return func(s *settings) { s.injectiveEdges = true }
}

// Stats describes the work done by one search.
type Stats struct {
	// Steps counts candidate assignments evaluated.
	Steps int
	// Backtracks counts assignments undone after a dead end.
	Backtracks int
	// Embeddings counts complete matches reported (subgraph matcher only).
	Embeddings int
	Elapsed    time.Duration
}
