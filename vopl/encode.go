package vopl

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"
)

const (
	encDense   = 0
	encSparse  = 1
	encSparse2 = 3 // occupancy bitmap + nonzero values

	bitmapSize = cells / 8
)

type encoded struct {
	encoding int
	payload  []byte
}

func encodeDense(stream []uint8, bpp uint8) []byte {
	bw := &bitPacker{}
	for _, c := range stream {
		bw.put(uint64(c), bpp)
	}
	return bw.finish()
}

func encodeSparse(stream []uint8, bpp uint8) []byte {
	bw := &bitPacker{}
	count := 0
	for _, c := range stream {
		if c != 0 {
			count++
		}
	}
	bw.put(uint64(count), 16)
	for i, c := range stream {
		if c == 0 {
			continue
		}
		bw.put(uint64(i), 12)
		bw.put(uint64(c), bpp)
	}
	return bw.finish()
}

func encodeSparse2(stream []uint8, bpp uint8) []byte {
	out := make([]byte, bitmapSize, bitmapSize+len(stream))
	bw := &bitPacker{}
	for i, v := range stream {
		if v != 0 {
			out[i>>3] |= 1 << (uint(i) & 7)
			bw.put(uint64(v), bpp)
		}
	}
	return append(out, bw.finish()...)
}

func zlibCompress(b []byte) []byte {
	var buf bytes.Buffer
	zw, _ := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	_, _ = zw.Write(b)
	_ = zw.Close()
	return buf.Bytes()
}

func zlibDecompress(b []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// bestEncoding picks the smallest of every payload encoding, raw or zlib-compressed.
func bestEncoding(grid *VoxelGrid, bpp uint8) encoded {
	stream := flatten(grid)
	candidates := []encoded{
		{encoding: encDense, payload: encodeDense(stream, bpp)},
		{encoding: encSparse, payload: encodeSparse(stream, bpp)},
		{encoding: encSparse2, payload: encodeSparse2(stream, bpp)},
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if len(c.payload) < len(best.payload) {
			best = c
		}
	}
	for _, c := range candidates {
		if zb := zlibCompress(c.payload); len(zb) < len(best.payload) {
			best = encoded{encoding: c.encoding | 0x80, payload: zb}
		}
	}
	return best
}

// SaveVoplGridToBytesWithBPP encodes a grid using the specified bits-per-pixel (1..8)
// and returns a complete .vopl file.
func SaveVoplGridToBytesWithBPP(grid *VoxelGrid, bpp uint8) []byte {
	bpp = min(max(bpp, 1), 8)
	enc := bestEncoding(grid, bpp)
	hdr := VOPLHeader{Ver: version, BPP: bpp, W: Width, H: Height, D: Depth, Pal: 64}
	return BuildVOPLFromHeaderAndPayload(hdr, uint8(enc.encoding), enc.payload)
}

// SaveVoplGridToBytes encodes with a fixed BPP of 6 so chunks stay packable together.
func SaveVoplGridToBytes(grid *VoxelGrid) []byte {
	return SaveVoplGridToBytesWithBPP(grid, 6)
}

// BuildVOPLFromHeaderAndPayload reconstructs a full .vopl file from the common
// header fields and the per-file encoding and payload.
func BuildVOPLFromHeaderAndPayload(h VOPLHeader, enc uint8, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(headerSize + len(payload))
	buf.WriteString(magic)
	_ = binary.Write(&buf, binary.LittleEndian, []uint8{version, enc, h.BPP, h.W, h.H, h.D})
	_ = binary.Write(&buf, binary.LittleEndian, h.Pal)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(payload)))
	buf.Write(payload)
	return buf.Bytes()
}
