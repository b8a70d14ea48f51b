// Package ingest reads graphs from the one-way interchange formats: adjacency
// text, tab-separated node and edge lists, compact binary adjacency and JSON.
// None of them round-trips; graph.Save and graph.Load own persistence.
package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sanonone/kektorgraph/pkg/graph"
)

// ParseError reports malformed input. It wraps graph.ErrIO.
type ParseError struct {
	File string
	// Line is 1-based. For binary input it is the 1-based record number, 0 for
	// the header.
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

func (e *ParseError) Unwrap() error { return graph.ErrIO }

func parseErr(file string, line int, format string, args ...any) *ParseError {
	return &ParseError{File: file, Line: line, Msg: fmt.Sprintf(format, args...)}
}

// baseName strips the directory and extension from path.
func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
