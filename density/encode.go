package density

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// A .density file is three little-endian int32 sizes (x, y, z) followed by
// x*y*z little-endian IEEE-754 float64 cells in row-major order, x fastest.
// There is no magic, version, padding or checksum.
const (
	headerSize = 12
	cellSize   = 8

	chunkCells = 4096
)

// EncodedSize is the length in bytes of the encoding of an array of dims.
func EncodedSize(dims Dimensions) int64 {
	return headerSize + cellSize*int64(dims.Cells())
}

// WriteTo encodes a to w.
func (a *DenseArray) WriteTo(w io.Writer) (int64, error) {
	var hdr [headerSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(int32(a.Dims.X)))
	binary.LittleEndian.PutUint32(hdr[4:], uint32(int32(a.Dims.Y)))
	binary.LittleEndian.PutUint32(hdr[8:], uint32(int32(a.Dims.Z)))
	n, err := w.Write(hdr[:])
	written := int64(n)
	if err != nil {
		return written, err
	}

	buf := make([]byte, cellSize*min(chunkCells, len(a.Cells)))
	for cells := a.Cells; len(cells) > 0; {
		k := min(chunkCells, len(cells))
		for i, v := range cells[:k] {
			binary.LittleEndian.PutUint64(buf[i*cellSize:], math.Float64bits(v))
		}
		n, err := w.Write(buf[:k*cellSize])
		written += int64(n)
		if err != nil {
			return written, err
		}
		cells = cells[k:]
	}
	return written, nil
}

// Decode reads one encoded array from r and expects r to end right after it.
func Decode(r io.Reader) (*DenseArray, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("density header: %w", err)
	}
	var size [3]int32
	for i := range size {
		size[i] = int32(binary.LittleEndian.Uint32(hdr[i*4:]))
		if size[i] < 0 {
			return nil, fmt.Errorf("density header: negative size %d", size[i])
		}
	}
	dims := Dimensions{X: int(size[0]), Y: int(size[1]), Z: int(size[2])}
	if err := dims.validate(0); err != nil {
		return nil, err
	}

	// Cells grow with the payload read, never ahead of it.
	n := dims.Cells()
	a := &DenseArray{Dims: dims, Cells: make([]float64, 0, min(n, chunkCells))}
	buf := make([]byte, cellSize*min(n, chunkCells))
	for len(a.Cells) < n {
		k := min(chunkCells, n-len(a.Cells))
		if _, err := io.ReadFull(r, buf[:k*cellSize]); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("density cells: %w", err)
		}
		for i := range k {
			a.Cells = append(a.Cells, math.Float64frombits(binary.LittleEndian.Uint64(buf[i*cellSize:])))
		}
	}
	var extra [1]byte
	if n, _ := r.Read(extra[:]); n > 0 {
		return nil, fmt.Errorf("density: trailing bytes after %d cells", len(a.Cells))
	}
	return a, nil
}
