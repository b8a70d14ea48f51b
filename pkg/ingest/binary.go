package ingest

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sanonone/kektorgraph/pkg/graph"
)

// Binary adjacency layout, little-endian:
//
//	header: int32 numberOfNodes, int32 numberOfEdges
//	record: int32 node1, int32 node2   (numberOfEdges times)
//
// Node i is labelled with its decimal index; edges are unlabelled.
const (
	binaryHeaderSize = 8
	binaryRecordSize = 8

	// MaxBinaryNodes bounds the node count a binary adjacency header may
	// declare.
	MaxBinaryNodes = 1 << 24
)

// ReadBinaryAdjacencyFile reads a binary adjacency file; the graph is named
// after the file's base name.
func ReadBinaryAdjacencyFile(path string, opts ...graph.Option) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ReadBinaryAdjacencyFile: %v: %w", err, graph.ErrIO)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("ReadBinaryAdjacencyFile: %v: %w", err, graph.ErrIO)
	}
	return readBinaryAdjacency(bufio.NewReader(f), st.Size(), path, baseName(path), opts)
}

// ReadBinaryAdjacency reads binary adjacency from r. Trailing bytes after the
// last record are an error.
func ReadBinaryAdjacency(r io.Reader, name string, opts ...graph.Option) (*graph.Graph, error) {
	return readBinaryAdjacency(r, -1, name, name, opts)
}

// readBinaryAdjacency checks the header against size when it is known
// (size >= 0) before reading any record.
func readBinaryAdjacency(r io.Reader, size int64, file, name string, opts []graph.Option) (*graph.Graph, error) {
	var hdr [binaryHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, parseErr(file, 0, "short header: %v", err)
	}
	n := int32(binary.LittleEndian.Uint32(hdr[0:4]))
	e := int32(binary.LittleEndian.Uint32(hdr[4:8]))
	if n < 0 || e < 0 {
		return nil, parseErr(file, 0, "negative counts n=%d e=%d", n, e)
	}
	if n > MaxBinaryNodes {
		return nil, parseErr(file, 0, "%d nodes exceed the limit of %d", n, MaxBinaryNodes)
	}
	if want := binaryHeaderSize + binaryRecordSize*int64(e); size >= 0 && size != want {
		return nil, parseErr(file, 0, "header declares %d edges (%d bytes) but the file holds %d bytes", e, want, size)
	}

	// Grow as records arrive so a lying edge count cannot force a huge
	// allocation.
	edges := make([]graph.EdgeSpec, 0, min(int(e), 1<<16))
	var rec [binaryRecordSize]byte
	for i := 0; i < int(e); i++ {
		if _, err := io.ReadFull(r, rec[:]); err != nil {
			return nil, parseErr(file, i+1, "short record: %v", err)
		}
		n1 := int(int32(binary.LittleEndian.Uint32(rec[0:4])))
		n2 := int(int32(binary.LittleEndian.Uint32(rec[4:8])))
		if n1 < 0 || n1 >= int(n) || n2 < 0 || n2 >= int(n) {
			return nil, parseErr(file, i+1, "endpoint (%d,%d) outside %d nodes", n1, n2, n)
		}
		edges = append(edges, graph.EdgeSpec{Node1: n1, Node2: n2})
	}
	var extra [1]byte
	if _, err := io.ReadFull(r, extra[:]); !errors.Is(err, io.EOF) {
		return nil, parseErr(file, int(e)+1, "trailing data after %d records", e)
	}

	nodes := make([]graph.NodeSpec, n)
	for i := range nodes {
		nodes[i].Label = strconv.Itoa(i)
	}

	g, err := graph.Build(name, nodes, edges, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return g, nil
}

// WriteBinaryAdjacency writes g's endpoints in the binary adjacency layout.
// Labels and attributes are not represented.
func WriteBinaryAdjacency(w io.Writer, g *graph.Graph) error {
	buf := make([]byte, binaryHeaderSize, binaryHeaderSize+binaryRecordSize*g.NumEdges())
	binary.LittleEndian.PutUint32(buf[0:4], uint32(g.NumNodes()))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(g.NumEdges()))
	for e := 0; e < g.NumEdges(); e++ {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(g.EdgeNode1(e)))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(g.EdgeNode2(e)))
	}
	_, err := w.Write(buf)
	return err
}
