package persistence

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sanonone/kektorgraph/pkg/graph"
)

// BundleExt is the conventional file extension of a graph bundle.
const BundleExt = ".kgb"

// bundleOrder is the frame sequence of a bundle. OpEnd carries no payload and
// guards against truncation on a frame boundary.
var bundleOrder = []OpCode{OpInfo, OpNodes, OpEdges, OpConnections, OpNodeLabels, OpEdgeLabels, OpEnd}

// WriteBundle writes g as a bundle to w.
func WriteBundle(w io.Writer, g *graph.Graph) error {
	info, err := g.Info().MarshalText()
	if err != nil {
		return fmt.Errorf("WriteBundle: %w", err)
	}
	bw := bufio.NewWriter(w)
	fw := NewFrameWriter(bw)
	payloads := append([][]byte{info}, g.Regions()...)
	payloads = append(payloads, nil)
	for i, op := range bundleOrder {
		if err := fw.WriteFrame(op, payloads[i]); err != nil {
			return fmt.Errorf("WriteBundle: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("WriteBundle: %w", err)
	}
	return nil
}

// ReadBundle reads one bundle from r. Corrupt, truncated or out-of-order
// frames and inconsistent layouts fail with an error wrapping graph.ErrIO.
func ReadBundle(r io.Reader) (*graph.Graph, error) {
	br := bufio.NewReader(r)
	var info graph.Info
	regions := make([][]byte, 0, len(graph.RegionExts))
	for i, want := range bundleOrder {
		op, payload, err := ReadFrame(br)
		if errors.Is(err, io.EOF) {
			err = ErrIncompleteFrame
		}
		if err != nil {
			return nil, fmt.Errorf("ReadBundle: frame %d: %w: %w", i, graph.ErrIO, err)
		}
		if op != want {
			return nil, fmt.Errorf("ReadBundle: frame %d: opcode %#x, want %#x: %w", i, op, want, graph.ErrIO)
		}
		switch op {
		case OpInfo:
			if err := info.UnmarshalText(payload); err != nil {
				return nil, fmt.Errorf("ReadBundle: %w", err)
			}
		case OpEnd:
		default:
			regions = append(regions, payload)
		}
	}
	g, err := graph.FromRegions(info, regions)
	if err != nil {
		return nil, fmt.Errorf("ReadBundle: %w", err)
	}
	return g, nil
}

// WriteBundleFile writes g to path through a temporary file and a rename.
func WriteBundleFile(path string, g *graph.Graph) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("WriteBundleFile: %v: %w", err, graph.ErrIO)
	}
	err = WriteBundle(f, g)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp, path)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("WriteBundleFile: %v: %w", err, graph.ErrIO)
	}
	return nil
}

// ReadBundleFile reads the bundle stored at path.
func ReadBundleFile(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ReadBundleFile: %v: %w", err, graph.ErrIO)
	}
	defer f.Close()
	return ReadBundle(f)
}
