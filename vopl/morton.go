package vopl

import (
	"cmp"
	"slices"
)

const cells = Width * Height * Depth

func expand3(v uint32) uint32 {
	v = (v | (v << 16)) & 0x030000FF
	v = (v | (v << 8)) & 0x0300F00F
	v = (v | (v << 4)) & 0x030C30C3
	v = (v | (v << 2)) & 0x09249249
	return v
}

func morton3D(x, y, z uint32) uint32 {
	return expand3(x) | (expand3(y) << 1) | (expand3(z) << 2)
}

// mortonOrder[rank] is the scan position (y outer, z, x inner) stored at that Morton rank.
var mortonOrder = buildMortonOrder()

func buildMortonOrder() []int {
	type kv struct {
		key uint32
		pos int
	}
	idx := make([]kv, 0, cells)
	for y := range Height {
		for z := range Depth {
			for x := range Width {
				idx = append(idx, kv{morton3D(uint32(x), uint32(y), uint32(z)), len(idx)})
			}
		}
	}
	slices.SortStableFunc(idx, func(a, b kv) int { return cmp.Compare(a.key, b.key) })
	order := make([]int, cells)
	for rank, e := range idx {
		order[rank] = e.pos
	}
	return order
}

// flatten returns the grid values in Morton order.
func flatten(grid *VoxelGrid) []uint8 {
	scan := make([]uint8, 0, cells)
	for y := range Height {
		for z := range Depth {
			for x := range Width {
				scan = append(scan, grid[y][x][z])
			}
		}
	}
	stream := make([]uint8, cells)
	for rank, pos := range mortonOrder {
		stream[rank] = scan[pos]
	}
	return stream
}

// applyOrder is the inverse of flatten.
func applyOrder(grid *VoxelGrid, stream []uint8) {
	scan := make([]uint8, cells)
	for rank, pos := range mortonOrder {
		scan[pos] = stream[rank]
	}
	p := 0
	for y := range Height {
		for z := range Depth {
			for x := range Width {
				grid[y][x][z] = scan[p]
				p++
			}
		}
	}
}
