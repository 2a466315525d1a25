package vopl

import "iter"

const (
	Height = 16
	Width  = 16
	Depth  = 16
)

// VoxelGrid[y][x][z] holds palette indices; 0 is empty.
type VoxelGrid [Height][Width][Depth]uint8

// Voxel is one filled cell of a VoxelGrid.
type Voxel struct {
	X, Y, Z int
	Color   uint8
}

// Filled yields every non-empty voxel in linear order (x + y*Width + z*Width*Height).
func (g *VoxelGrid) Filled() iter.Seq[Voxel] {
	return func(yield func(Voxel) bool) {
		for z := range Depth {
			for y := range Height {
				for x := range Width {
					c := g[y][x][z]
					if c == 0 {
						continue
					}
					if !yield(Voxel{X: x, Y: y, Z: z, Color: c}) {
						return
					}
				}
			}
		}
	}
}
