package density

import (
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/voxelsplace/vdb2density/grid"
)

// DenseArray is a fully populated grid of densities in row-major order,
// x fastest. Cells not covered by a voxel are 0.
type DenseArray struct {
	Dims  Dimensions
	Cells []float64
}

// NewDenseArray allocates a zeroed array. dims must have been validated.
func NewDenseArray(dims Dimensions) *DenseArray {
	return &DenseArray{Dims: dims, Cells: make([]float64, dims.Cells())}
}

// At returns the density at (x, y, z), which must be in range.
func (a *DenseArray) At(x, y, z int) float64 {
	return a.Cells[a.Dims.Index(x, y, z)]
}

// Set stores v at c, overwriting the previous value.
func (a *DenseArray) Set(c grid.Coord, v float64) error {
	if !a.Dims.Contains(c) {
		return fmt.Errorf("%w: %v not in %v", ErrIndexOutOfRange, c, a.Dims)
	}
	a.Cells[a.Dims.Index(int(c.X), int(c.Y), int(c.Z))] = v
	return nil
}

// Scan summarises the first pass over a grid.
type Scan struct {
	Box     AABB
	Voxels  int // voxel-level samples
	Skipped int // samples of any other level
}

// ScanGrid bounds every voxel-level sample of g. Other levels do not map to a
// single cell; each one is logged and left out.
func ScanGrid(logger log.Logger, g grid.Grid) Scan {
	s := Scan{Box: NewAABB()}
	for sample := range g.All() {
		if sample.Level != grid.LevelVoxel {
			level.Warn(logger).Log("msg", "ignoring sample above voxel level", "sample_level", sample.Level, "coord", sample.Coord)
			s.Skipped++
			continue
		}
		s.Box.Extend(r3.Vec{X: float64(sample.Coord.X), Y: float64(sample.Coord.Y), Z: float64(sample.Coord.Z)})
		s.Voxels++
	}
	return s
}

// RasterOptions controls the array size limit and how samples that fall
// outside the array are handled.
type RasterOptions struct {
	// SkipOutOfRange drops such samples with a warning instead of failing.
	SkipOutOfRange bool
	// MaxCells lowers the allocation ceiling below the package MaxCells.
	MaxCells int
}

// RasterStats describes a finished rasterization.
type RasterStats struct {
	Written    int
	OutOfRange int
	// MaxValue is the largest cell value, so never below 0 while any cell exists.
	MaxValue float64
}

// Rasterize scatters every voxel-level sample of g into a new array of dims.
// A sample outside dims is never written: it aborts with ErrIndexOutOfRange
// unless opts.SkipOutOfRange is set.
func Rasterize(logger log.Logger, g grid.Grid, dims Dimensions, opts RasterOptions) (*DenseArray, RasterStats, error) {
	if err := dims.validate(opts.MaxCells); err != nil {
		return nil, RasterStats{}, err
	}
	a := NewDenseArray(dims)
	var st RasterStats
	for sample := range g.All() {
		if sample.Level != grid.LevelVoxel {
			continue
		}
		if err := a.Set(sample.Coord, sample.Value); err != nil {
			if !opts.SkipOutOfRange {
				return nil, st, err
			}
			level.Warn(logger).Log("msg", "dropping voxel outside dense array", "coord", sample.Coord, "dims", dims)
			st.OutOfRange++
			continue
		}
		st.MaxValue = max(st.MaxValue, sample.Value)
		st.Written++
	}
	return a, st, nil
}
