package vopl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrFormat is returned for bytes that are not a supported VOPL v3 file or pack.
var ErrFormat = errors.New("vopl: invalid format")

// IsVOPL reports whether data starts with the .vopl magic.
func IsVOPL(data []byte) bool {
	return len(data) >= len(magic) && string(data[:len(magic)]) == magic && !IsPack(data)
}

// leReader reads little-endian fields and keeps the first error.
type leReader struct {
	r   *bytes.Reader
	err error
}

func (l *leReader) read(v any) {
	if l.err == nil {
		l.err = binary.Read(l.r, binary.LittleEndian, v)
	}
}

func (l *leReader) bytes(n int) []byte {
	if l.err != nil {
		return nil
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(l.r, b); err != nil {
		l.err = err
		return nil
	}
	return b
}

// ParseVOPLHeaderFromBytes parses the header of a full .vopl file and returns it
// together with the per-file encoding byte and the payload slice.
func ParseVOPLHeaderFromBytes(data []byte) (VOPLHeader, uint8, []byte, error) {
	var hdr VOPLHeader
	if len(data) < headerSize || string(data[:len(magic)]) != magic {
		return hdr, 0, nil, ErrFormat
	}
	var enc uint8
	r := &leReader{r: bytes.NewReader(data[len(magic):])}
	r.read(&hdr.Ver)
	r.read(&enc)
	r.read(&hdr.BPP)
	r.read(&hdr.W)
	r.read(&hdr.H)
	r.read(&hdr.D)
	r.read(&hdr.Pal)
	r.read(&hdr.PLen)
	if r.err != nil {
		return hdr, 0, nil, fmt.Errorf("%w: %v", ErrFormat, r.err)
	}
	if hdr.Ver != version {
		return hdr, 0, nil, fmt.Errorf("%w: unsupported version %d", ErrFormat, hdr.Ver)
	}
	if uint64(len(data)-headerSize) != uint64(hdr.PLen) {
		return hdr, 0, nil, fmt.Errorf("%w: payload length %d, header says %d", ErrFormat, len(data)-headerSize, hdr.PLen)
	}
	return hdr, enc, data[headerSize:], nil
}

// LoadVoplGridFromBytes parses a .vopl file from memory and returns the grid and its header.
func LoadVoplGridFromBytes(data []byte) (*VoxelGrid, VOPLHeader, error) {
	hdr, enc, payload, err := ParseVOPLHeaderFromBytes(data)
	if err != nil {
		return nil, hdr, err
	}
	grid, err := DecodePayload(hdr, enc, payload)
	return grid, hdr, err
}

// DecodePayload expands one encoded chunk payload. The high bit of enc marks a
// zlib-compressed payload.
func DecodePayload(hdr VOPLHeader, enc uint8, payload []byte) (*VoxelGrid, error) {
	if int(hdr.W) != Width || int(hdr.H) != Height || int(hdr.D) != Depth {
		return nil, fmt.Errorf("%w: chunk size %dx%dx%d", ErrFormat, hdr.W, hdr.H, hdr.D)
	}
	if hdr.BPP < 1 || hdr.BPP > 8 {
		return nil, fmt.Errorf("%w: bpp %d", ErrFormat, hdr.BPP)
	}
	if enc&0x80 != 0 {
		var err error
		if payload, err = zlibDecompress(payload); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFormat, err)
		}
	}
	stream := make([]uint8, cells)
	var err error
	switch int(enc & 0x7F) {
	case encDense:
		err = decodeDense(stream, payload, hdr.BPP)
	case encSparse:
		err = decodeSparse(stream, payload, hdr.BPP)
	case encSparse2:
		err = decodeSparse2(stream, payload, hdr.BPP)
	default:
		return nil, fmt.Errorf("%w: unknown encoding %d", ErrFormat, enc&0x7F)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	grid := new(VoxelGrid)
	applyOrder(grid, stream)
	return grid, nil
}

func decodeDense(stream, payload []byte, bpp uint8) error {
	br := &bitUnpacker{in: payload}
	for i := range stream {
		v, err := br.next(bpp)
		if err != nil {
			return err
		}
		stream[i] = uint8(v)
	}
	return nil
}

func decodeSparse(stream, payload []byte, bpp uint8) error {
	br := &bitUnpacker{in: payload}
	n, err := br.next(16)
	if err != nil {
		return err
	}
	for range n {
		idx, err := br.next(12)
		if err != nil {
			return err
		}
		col, err := br.next(bpp)
		if err != nil {
			return err
		}
		stream[idx] = uint8(col)
	}
	return nil
}

func decodeSparse2(stream, payload []byte, bpp uint8) error {
	if len(payload) < bitmapSize {
		return fmt.Errorf("sparse2 payload too short (%d bytes)", len(payload))
	}
	bitmap := payload[:bitmapSize]
	br := &bitUnpacker{in: payload[bitmapSize:]}
	for i := range stream {
		if (bitmap[i>>3]>>(uint(i)&7))&1 == 0 {
			continue
		}
		v, err := br.next(bpp)
		if err != nil {
			return err
		}
		stream[i] = uint8(v)
	}
	return nil
}
