package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers branch with errors.Is; every error returned by this
// package wraps exactly one of these.
var (
	// ErrSize indicates a random graph cannot be generated under the requested
	// constraints (e.g. more simple edges than vertex pairs).
	ErrSize = errors.New("graph: infeasible size")

	// ErrRange indicates a node or edge index outside the graph's index space.
	ErrRange = errors.New("graph: index out of range")

	// ErrPrecondition indicates an edit whose precondition does not hold, such as
	// deleting a node that still has incident edges.
	ErrPrecondition = errors.New("graph: precondition violated")

	// ErrIO indicates a missing, short or malformed persisted or ingested file.
	ErrIO = errors.New("graph: i/o error")

	// ErrCapacity indicates a value that does not fit its fixed-size field, a
	// label arena beyond the addressable maximum, or an undersized caller buffer.
	ErrCapacity = errors.New("graph: capacity exceeded")

	// ErrInconsistent is wrapped by every *Violation reported by Check.
	ErrInconsistent = errors.New("graph: inconsistent layout")
)

// ViolationKind classifies a consistency failure.
type ViolationKind string

const (
	ViolationEdgeEndpoint   ViolationKind = "edge-endpoint"
	ViolationMissingOut     ViolationKind = "missing-out-entry"
	ViolationMissingIn      ViolationKind = "missing-in-entry"
	ViolationDuplicateEntry ViolationKind = "duplicate-entry"
	ViolationInEntry        ViolationKind = "in-entry-mismatch"
	ViolationOutEntry       ViolationKind = "out-entry-mismatch"
	ViolationRunGap         ViolationKind = "run-gap"
	ViolationRunBounds      ViolationKind = "run-bounds"
	ViolationLabelBounds    ViolationKind = "label-bounds"
	ViolationDegreeTotal    ViolationKind = "degree-total"
)

// Violation describes the first broken invariant found by Check.
type Violation struct {
	Kind ViolationKind
	// Index is the node or edge index the violation was found on, -1 for
	// graph-wide checks.
	Index  int
	Detail string
}

func (v *Violation) Error() string {
	if v.Index < 0 {
		return fmt.Sprintf("graph: %s: %s", v.Kind, v.Detail)
	}
	return fmt.Sprintf("graph: %s at %d: %s", v.Kind, v.Index, v.Detail)
}

func (v *Violation) Unwrap() error { return ErrInconsistent }

func rangeErr(op, what string, idx, limit int) error {
	return fmt.Errorf("%s: %s %d not in [0,%d): %w", op, what, idx, limit, ErrRange)
}
