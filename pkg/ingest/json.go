package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sanonone/kektorgraph/pkg/graph"
)

// Document is the JSON interchange form of a graph.
type Document struct {
	Name  string           `json:"name"`
	Nodes []graph.NodeSpec `json:"nodes"`
	Edges []graph.EdgeSpec `json:"edges"`
}

// ReadJSONFile reads a JSON document from path.
func ReadJSONFile(path string, opts ...graph.Option) (*graph.Graph, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ReadJSONFile: %v: %w", err, graph.ErrIO)
	}
	return decodeJSON(raw, path, opts)
}

// ReadJSON reads a JSON document from r. Unknown fields are rejected.
func ReadJSON(r io.Reader, opts ...graph.Option) (*graph.Graph, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ReadJSON: %v: %w", err, graph.ErrIO)
	}
	return decodeJSON(raw, "json", opts)
}

func decodeJSON(raw []byte, file string, opts []graph.Option) (*graph.Graph, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, parseErr(file, jsonErrorLine(raw, err), "%v", err)
	}
	if dec.More() {
		rest := bytes.TrimLeft(raw[dec.InputOffset():], " \t\r\n")
		return nil, parseErr(file, lineAt(raw, int64(len(raw)-len(rest))), "trailing data after document")
	}
	g, err := graph.Build(doc.Name, doc.Nodes, doc.Edges, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return g, nil
}

// EncodeJSON converts g to its interchange document.
func EncodeJSON(g *graph.Graph) Document {
	return Document{Name: g.Name(), Nodes: g.Nodes(), Edges: g.Edges()}
}

func jsonErrorLine(raw []byte, err error) int {
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		return lineAt(raw, syn.Offset)
	}
	var typ *json.UnmarshalTypeError
	if errors.As(err, &typ) {
		return lineAt(raw, typ.Offset)
	}
	return 1
}

// lineAt returns the 1-based line holding byte offset off.
func lineAt(raw []byte, off int64) int {
	off = min(max(off, 0), int64(len(raw)))
	return bytes.Count(raw[:off], []byte("\n")) + 1
}
