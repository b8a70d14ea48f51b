package ingest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sanonone/kektorgraph/pkg/graph"
)

// ReadTSVFiles reads a graph from a node list and an edge list, both
// tab-separated with one record per line. Empty lines and lines starting with
// '#' are skipped.
//
// Node lines: label [weight [type [age]]]. Node i is the i-th node line.
// Edge lines: node1 node2 [label [weight [type [age]]]], where node1 and node2
// are node indices.
//
// Missing trailing columns default to zero or the empty label. The graph is
// named after the node file.
func ReadTSVFiles(nodePath, edgePath string, opts ...graph.Option) (*graph.Graph, error) {
	nf, err := os.Open(nodePath)
	if err != nil {
		return nil, fmt.Errorf("ReadTSVFiles: %v: %w", err, graph.ErrIO)
	}
	defer nf.Close()
	ef, err := os.Open(edgePath)
	if err != nil {
		return nil, fmt.Errorf("ReadTSVFiles: %v: %w", err, graph.ErrIO)
	}
	defer ef.Close()
	return readTSV(nf, ef, nodePath, edgePath, baseName(nodePath), opts)
}

// ReadTSV is ReadTSVFiles over readers. Errors name the streams "nodes" and
// "edges".
func ReadTSV(nodes, edges io.Reader, name string, opts ...graph.Option) (*graph.Graph, error) {
	return readTSV(nodes, edges, "nodes", "edges", name, opts)
}

func readTSV(nodes, edges io.Reader, nodeFile, edgeFile, name string, opts []graph.Option) (*graph.Graph, error) {
	var ns []graph.NodeSpec
	err := eachRecord(nodes, nodeFile, func(line int, cols []string) error {
		spec := graph.NodeSpec{Label: cols[0]}
		if err := scalars(nodeFile, line, cols[1:], &spec.Weight, &spec.Type, &spec.Age); err != nil {
			return err
		}
		ns = append(ns, spec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var es []graph.EdgeSpec
	err = eachRecord(edges, edgeFile, func(line int, cols []string) error {
		if len(cols) < 2 {
			return parseErr(edgeFile, line, "want at least 2 columns, got %d", len(cols))
		}
		var spec graph.EdgeSpec
		var err error
		if spec.Node1, err = strconv.Atoi(cols[0]); err != nil {
			return parseErr(edgeFile, line, "bad node1 %q", cols[0])
		}
		if spec.Node2, err = strconv.Atoi(cols[1]); err != nil {
			return parseErr(edgeFile, line, "bad node2 %q", cols[1])
		}
		if spec.Node1 < 0 || spec.Node1 >= len(ns) || spec.Node2 < 0 || spec.Node2 >= len(ns) {
			return parseErr(edgeFile, line, "endpoint (%d,%d) outside %d nodes", spec.Node1, spec.Node2, len(ns))
		}
		if len(cols) > 2 {
			spec.Label = cols[2]
		}
		if len(cols) > 3 {
			if err := scalars(edgeFile, line, cols[3:], &spec.Weight, &spec.Type, &spec.Age); err != nil {
				return err
			}
		}
		es = append(es, spec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	g, err := graph.Build(name, ns, es, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", nodeFile, err)
	}
	return g, nil
}

func eachRecord(r io.Reader, file string, fn func(line int, cols []string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := fn(line, strings.Split(text, "\t")); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return parseErr(file, line+1, "%v", err)
	}
	return nil
}

// scalars parses up to three trailing columns into weight, type and age.
func scalars(file string, line int, cols []string, weight *int32, typ, age *int8) error {
	if len(cols) > 3 {
		return parseErr(file, line, "%d extra columns", len(cols)-3)
	}
	if len(cols) > 0 {
		v, err := strconv.ParseInt(cols[0], 10, 32)
		if err != nil {
			return parseErr(file, line, "bad weight %q", cols[0])
		}
		*weight = int32(v)
	}
	if len(cols) > 1 {
		v, err := strconv.ParseInt(cols[1], 10, 8)
		if err != nil {
			return parseErr(file, line, "bad type %q", cols[1])
		}
		*typ = int8(v)
	}
	if len(cols) > 2 {
		v, err := strconv.ParseInt(cols[2], 10, 8)
		if err != nil {
			return parseErr(file, line, "bad age %q", cols[2])
		}
		*age = int8(v)
	}
	return nil
}
