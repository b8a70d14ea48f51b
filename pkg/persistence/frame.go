// Package persistence reads and writes graph bundles: a single self-checking
// file carrying a graph's metadata and its five regions as CRC32-framed
// sections.
package persistence

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
)

const (
	// MagicByte marks the start of every frame.
	MagicByte = 0xA5

	// HeaderSize is Magic(1) + OpCode(1) + Length(4) + CRC32(4).
	HeaderSize = 10

	// MaxPayload bounds the declared length of a single frame.
	MaxPayload = 1 << 31

	// readChunk is the buffer reserved up front for a frame payload.
	readChunk = 64 << 10
)

// OpCode identifies the section a frame carries.
type OpCode byte

const (
	OpInfo OpCode = 0x01 + iota
	OpNodes
	OpEdges
	OpConnections
	OpNodeLabels
	OpEdgeLabels
	OpEnd
)

var (
	// ErrInvalidMagic means the stream lost synchronization or is not a bundle.
	ErrInvalidMagic = errors.New("invalid magic byte")
	// ErrChecksumMismatch means a frame payload is corrupt.
	ErrChecksumMismatch = errors.New("crc32 checksum mismatch")
	// ErrIncompleteFrame means the stream ended inside a frame.
	ErrIncompleteFrame = errors.New("incomplete frame")
	// ErrFrameTooLarge means a frame header announces more than MaxPayload bytes.
	ErrFrameTooLarge = errors.New("frame too large")
)

// FrameWriter writes frames to an io.Writer. Wrap files in a bufio.Writer so
// header and payload reach the OS in one write.
type FrameWriter struct {
	w      io.Writer
	header [HeaderSize]byte
}

// NewFrameWriter wraps w.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

// WriteFrame writes [Magic][OpCode][Length][CRC][Payload].
func (fw *FrameWriter) WriteFrame(op OpCode, payload []byte) error {
	if int64(len(payload)) > MaxPayload {
		return ErrFrameTooLarge
	}
	h := fw.header[:]
	h[0] = MagicByte
	h[1] = byte(op)
	binary.LittleEndian.PutUint32(h[2:6], uint32(len(payload)))
	binary.LittleEndian.PutUint32(h[6:10], crc32.ChecksumIEEE(payload))

	if _, err := fw.w.Write(h); err != nil {
		return err
	}
	_, err := fw.w.Write(payload)
	return err
}

// ReadFrame reads and validates the next frame. It returns io.EOF only when
// the stream ends exactly on a frame boundary.
func ReadFrame(r io.Reader) (OpCode, []byte, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.EOF {
			return 0, nil, io.EOF
		}
		return 0, nil, ErrIncompleteFrame
	}
	if header[0] != MagicByte {
		return 0, nil, ErrInvalidMagic
	}
	op := OpCode(header[1])
	length := binary.LittleEndian.Uint32(header[2:6])
	expectedCRC := binary.LittleEndian.Uint32(header[6:10])
	if int64(length) > MaxPayload {
		return op, nil, ErrFrameTooLarge
	}

	// The buffer grows with the bytes that actually arrive, so a lying length
	// fails at end of stream rather than on allocation.
	var buf bytes.Buffer
	buf.Grow(int(min(length, readChunk)))
	if n, err := io.CopyN(&buf, r, int64(length)); n != int64(length) || err != nil {
		return op, nil, ErrIncompleteFrame
	}
	payload := buf.Bytes()
	if crc32.ChecksumIEEE(payload) != expectedCRC {
		return op, nil, ErrChecksumMismatch
	}
	return op, payload, nil
}
