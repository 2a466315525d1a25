package vopl

import (
	"errors"
	"io"
)

// VPI18 encodes voxels as 18-bit entries: a 12-bit linear index (x + y*16 + z*256)
// followed by a 6-bit color. The bitstream is continuous, without padding.
// Color 0 clears the voxel at the given index.

// VPI18EncodeGrid encodes every filled voxel of grid as a VPI18 stream.
func VPI18EncodeGrid(grid *VoxelGrid) []byte {
	bw := &bitPacker{}
	for v := range grid.Filled() {
		idx := uint64(v.X + v.Y*Width + v.Z*Width*Height)
		bw.put(idx<<6|uint64(v.Color&0x3F), 18)
	}
	return bw.finish()
}

// VPI18DecodeToGrid decodes a VPI18 stream into a new, initially empty grid.
// Trailing bits shorter than one entry end the stream.
func VPI18DecodeToGrid(data []byte) (*VoxelGrid, error) {
	grid := new(VoxelGrid)
	br := &bitUnpacker{in: data}
	for {
		bits, err := br.next(18)
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return grid, nil
		}
		if err != nil {
			return nil, err
		}
		idx := int(bits >> 6)
		x := idx % Width
		y := (idx / Width) % Height
		z := idx / (Width * Height)
		grid[y][x][z] = uint8(bits & 0x3F)
	}
}
