package graph

import (
	"fmt"
	"unicode/utf16"
)

// regions holds the five byte regions of one graph instance.
type regions struct {
	nodes      []byte
	edges      []byte
	conns      []byte
	nodeLabels []byte
	edgeLabels []byte
}

// allocRegions allocates zeroed regions of the given byte sizes. In direct mode
// all five regions are carved from one slab; each sub-slice has its capacity
// clamped so an append can never spill into the neighbouring region.
func allocRegions(direct bool, nodes, edges, conns, nodeLabels, edgeLabels int) regions {
	if !direct {
		return regions{
			nodes:      make([]byte, nodes),
			edges:      make([]byte, edges),
			conns:      make([]byte, conns),
			nodeLabels: make([]byte, nodeLabels),
			edgeLabels: make([]byte, edgeLabels),
		}
	}
	slab := make([]byte, nodes+edges+conns+nodeLabels+edgeLabels)
	var r regions
	off := 0
	carve := func(n int) []byte {
		s := slab[off : off+n : off+n]
		off += n
		return s
	}
	r.nodes = carve(nodes)
	r.edges = carve(edges)
	r.conns = carve(conns)
	r.nodeLabels = carve(nodeLabels)
	r.edgeLabels = carve(edgeLabels)
	return r
}

// labelUnits returns the number of UTF-16 code units needed to store s.
func labelUnits(s string) int {
	n := 0
	for _, r := range s {
		if utf16.RuneLen(r) == 2 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// labelWriter appends labels into a pre-sized arena.
type labelWriter struct {
	arena []byte
	next  int // next free code unit
}

// write stores s at the current position and returns its (start, length) in
// code units. The arena must have been sized to fit.
func (w *labelWriter) write(s string) (int, int) {
	start := w.next
	for _, u := range utf16.Encode([]rune(s)) {
		le.PutUint16(w.arena[w.next*LabelUnitSize:], u)
		w.next++
	}
	return start, w.next - start
}

// copyUnits copies n code units starting at start from src into the writer,
// returning the new start.
func (w *labelWriter) copyUnits(src []byte, start, n int) int {
	dst := w.next
	copy(w.arena[dst*LabelUnitSize:(dst+n)*LabelUnitSize], src[start*LabelUnitSize:(start+n)*LabelUnitSize])
	w.next += n
	return dst
}

func decodeLabel(arena []byte, start, n int) string {
	if n == 0 {
		return ""
	}
	units := make([]uint16, n)
	for i := range units {
		units[i] = le.Uint16(arena[(start+i)*LabelUnitSize:])
	}
	return string(utf16.Decode(units))
}

func checkLabel(op, what string, idx int, s string) (int, error) {
	n := labelUnits(s)
	if n > MaxLabelLen {
		return 0, fmt.Errorf("%s: %s %d label has %d code units, max %d: %w", op, what, idx, n, MaxLabelLen, ErrCapacity)
	}
	return n, nil
}

func checkArena(op, which string, units int) error {
	if units > MaxArenaUnits {
		return fmt.Errorf("%s: %s label arena needs %d code units, max %d: %w", op, which, units, MaxArenaUnits, ErrCapacity)
	}
	return nil
}
