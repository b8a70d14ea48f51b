package graph

import "encoding/binary"

// Fixed record sizes in bytes. These are part of the on-disk format.
const (
	NodeRecordSize       = 28
	EdgeRecordSize       = 20
	ConnectionRecordSize = 8

	// LabelUnitSize is the width of one label code unit (UTF-16) in the arenas.
	LabelUnitSize = 2
)

// Node record field offsets.
const (
	nodeLabelStart    = 0  // i32
	nodeLabelLen      = 4  // i16
	nodeInConnOffset  = 6  // i32
	nodeInDegree      = 10 // i32
	nodeOutConnOffset = 14 // i32
	nodeOutDegree     = 18 // i32
	nodeWeight        = 22 // i32
	nodeType          = 26 // i8
	nodeAge           = 27 // i8
)

// Edge record field offsets.
const (
	edgeNode1      = 0  // i32
	edgeNode2      = 4  // i32
	edgeLabelStart = 8  // i32
	edgeLabelLen   = 12 // i16
	edgeWeight     = 14 // i32
	edgeType       = 18 // i8
	edgeAge        = 19 // i8
)

// Connection record field offsets.
const (
	connEdge = 0 // i32
	connNode = 4 // i32
)

// Addressing limits implied by the field widths.
const (
	MaxLabelLen   = 1<<15 - 1 // i16 length
	MaxArenaUnits = 1<<31 - 1 // i32 start
	MaxIndex      = 1<<31 - 1 // i32 node/edge/connection index
	MinAge        = -128
	MaxAge        = 127
)

var le = binary.LittleEndian

func getI32(b []byte, off int) int32 { return int32(le.Uint32(b[off : off+4])) }
func getI16(b []byte, off int) int16 { return int16(le.Uint16(b[off : off+2])) }
func getI8(b []byte, off int) int8   { return int8(b[off]) }

func putI32(b []byte, off int, v int32) { le.PutUint32(b[off:off+4], uint32(v)) }
func putI16(b []byte, off int, v int16) { le.PutUint16(b[off:off+2], uint16(v)) }
func putI8(b []byte, off int, v int8)   { b[off] = byte(v) }

// nodeRec is a view over one node record inside a node region.
type nodeRec []byte

func (r nodeRec) labelStart() int    { return int(getI32(r, nodeLabelStart)) }
func (r nodeRec) labelLen() int      { return int(getI16(r, nodeLabelLen)) }
func (r nodeRec) inOffset() int      { return int(getI32(r, nodeInConnOffset)) }
func (r nodeRec) inDegree() int      { return int(getI32(r, nodeInDegree)) }
func (r nodeRec) outOffset() int     { return int(getI32(r, nodeOutConnOffset)) }
func (r nodeRec) outDegree() int     { return int(getI32(r, nodeOutDegree)) }
func (r nodeRec) weight() int32      { return getI32(r, nodeWeight) }
func (r nodeRec) typ() int8          { return getI8(r, nodeType) }
func (r nodeRec) age() int8          { return getI8(r, nodeAge) }
func (r nodeRec) setLabel(start, n int) {
	putI32(r, nodeLabelStart, int32(start))
	putI16(r, nodeLabelLen, int16(n))
}

// setRun points the node at a run starting at off holding in entries then out entries.
func (r nodeRec) setRun(off, in, out int) {
	putI32(r, nodeInConnOffset, int32(off))
	putI32(r, nodeInDegree, int32(in))
	putI32(r, nodeOutConnOffset, int32(off+in))
	putI32(r, nodeOutDegree, int32(out))
}

func (r nodeRec) setAttrs(weight int32, typ, age int8) {
	putI32(r, nodeWeight, weight)
	putI8(r, nodeType, typ)
	putI8(r, nodeAge, age)
}

// edgeRec is a view over one edge record inside an edge region.
type edgeRec []byte

func (r edgeRec) node1() int      { return int(getI32(r, edgeNode1)) }
func (r edgeRec) node2() int      { return int(getI32(r, edgeNode2)) }
func (r edgeRec) labelStart() int { return int(getI32(r, edgeLabelStart)) }
func (r edgeRec) labelLen() int   { return int(getI16(r, edgeLabelLen)) }
func (r edgeRec) weight() int32   { return getI32(r, edgeWeight) }
func (r edgeRec) typ() int8       { return getI8(r, edgeType) }
func (r edgeRec) age() int8       { return getI8(r, edgeAge) }

func (r edgeRec) setEnds(n1, n2 int) {
	putI32(r, edgeNode1, int32(n1))
	putI32(r, edgeNode2, int32(n2))
}

func (r edgeRec) setLabel(start, n int) {
	putI32(r, edgeLabelStart, int32(start))
	putI16(r, edgeLabelLen, int16(n))
}

func (r edgeRec) setAttrs(weight int32, typ, age int8) {
	putI32(r, edgeWeight, weight)
	putI8(r, edgeType, typ)
	putI8(r, edgeAge, age)
}

func connAt(conns []byte, i int) (edge, node int) {
	off := i * ConnectionRecordSize
	return int(getI32(conns, off+connEdge)), int(getI32(conns, off+connNode))
}

func putConn(conns []byte, i, edge, node int) {
	off := i * ConnectionRecordSize
	putI32(conns, off+connEdge, int32(edge))
	putI32(conns, off+connNode, int32(node))
}
