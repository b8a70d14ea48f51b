package ingest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sanonone/kektorgraph/pkg/graph"
)

// ReadAdjacencyFile reads an adjacency text file; the graph is named after the
// file's base name.
func ReadAdjacencyFile(path string, opts ...graph.Option) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ReadAdjacencyFile: %v: %w", err, graph.ErrIO)
	}
	defer f.Close()
	return readAdjacency(f, path, baseName(path), opts)
}

// ReadAdjacency reads adjacency text from r.
//
// Each line holds whitespace-separated node names: the first is the source and
// every further name is the target of one edge from it, so "a b" is one edge
// and "a b c" two. A line with a single name declares an isolated node. Text
// after '#' is a comment. Nodes are numbered in order of first appearance and
// labelled with their names; edges are unlabelled.
func ReadAdjacency(r io.Reader, name string, opts ...graph.Option) (*graph.Graph, error) {
	return readAdjacency(r, name, name, opts)
}

func readAdjacency(r io.Reader, file, name string, opts []graph.Option) (*graph.Graph, error) {
	index := make(map[string]int)
	var nodes []graph.NodeSpec
	var edges []graph.EdgeSpec
	intern := func(label string) int {
		if i, ok := index[label]; ok {
			return i
		}
		index[label] = len(nodes)
		nodes = append(nodes, graph.NodeSpec{Label: label})
		return len(nodes) - 1
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text, _, _ := strings.Cut(sc.Text(), "#")
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		src := intern(fields[0])
		for _, f := range fields[1:] {
			edges = append(edges, graph.EdgeSpec{Node1: src, Node2: intern(f)})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, parseErr(file, line+1, "%v", err)
	}

	g, err := graph.Build(name, nodes, edges, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return g, nil
}
