package density

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/voxelsplace/vdb2density/grid"
)

// Dimensions is the shape of a dense array.
type Dimensions struct {
	X, Y, Z int
}

func (d Dimensions) String() string { return fmt.Sprintf("%dx%dx%d", d.X, d.Y, d.Z) }

// Cells is X*Y*Z.
func (d Dimensions) Cells() int { return d.X * d.Y * d.Z }

// Contains reports whether c addresses a cell.
func (d Dimensions) Contains(c grid.Coord) bool {
	return c.X >= 0 && int(c.X) < d.X &&
		c.Y >= 0 && int(c.Y) < d.Y &&
		c.Z >= 0 && int(c.Z) < d.Z
}

// Index is the row-major offset of (x, y, z), x varying fastest.
func (d Dimensions) Index(x, y, z int) int {
	return x + y*d.X + z*d.X*d.Y
}

// MaxCells is the largest dense array this package allocates: 8 GiB of cells.
const MaxCells = 1 << 30

// validate checks that every axis fits the int32 header and that the cell
// count stays within limit, or MaxCells when limit is 0.
func (d Dimensions) validate(limit int) error {
	for _, n := range []int{d.X, d.Y, d.Z} {
		if n < 0 || n > math.MaxInt32 {
			return fmt.Errorf("%w: %v", ErrDimensionsTooLarge, d)
		}
	}
	if limit <= 0 || limit > MaxCells {
		limit = MaxCells
	}
	hi, cells := bits.Mul64(uint64(d.X)*uint64(d.Y), uint64(d.Z))
	if hi != 0 || cells > uint64(limit) {
		return fmt.Errorf("%w: %v exceeds %d cells", ErrDimensionsTooLarge, d, limit)
	}
	return nil
}

// DimensionsFromBox sizes the dense array so that every point of box lands in
// it: floor(max)+1 per axis, or 0 for an axis whose max is negative. An empty
// box yields 0x0x0.
func DimensionsFromBox(box AABB) (Dimensions, error) {
	if box.Empty() {
		return Dimensions{}, nil
	}
	axis := func(hi float64) (int, error) {
		n := math.Floor(hi) + 1
		switch {
		case n <= 0:
			return 0, nil
		case n > math.MaxInt32:
			return 0, fmt.Errorf("%w: box %v", ErrDimensionsTooLarge, box)
		}
		return int(n), nil
	}
	var d Dimensions
	var err error
	if d.X, err = axis(box.Max.X); err != nil {
		return Dimensions{}, err
	}
	if d.Y, err = axis(box.Max.Y); err != nil {
		return Dimensions{}, err
	}
	if d.Z, err = axis(box.Max.Z); err != nil {
		return Dimensions{}, err
	}
	return d, d.validate(0)
}

// DimensionsFromMetadata reads the dense shape from a vec3i metadata entry.
func DimensionsFromMetadata(md grid.Metadata, key string) (Dimensions, error) {
	v, ok := md.Lookup(key)
	if !ok {
		return Dimensions{}, fmt.Errorf("%w: %q", ErrMetadataKeyNotFound, key)
	}
	switch v := v.(type) {
	case grid.Vec3i:
		if v[0] < 0 || v[1] < 0 || v[2] < 0 {
			return Dimensions{}, fmt.Errorf("%w: %q is %v", ErrMetadataWrongType, key, v)
		}
		d := Dimensions{X: int(v[0]), Y: int(v[1]), Z: int(v[2])}
		return d, d.validate(0)
	default:
		return Dimensions{}, fmt.Errorf("%w: %q is %s", ErrMetadataWrongType, key, grid.TypeName(v))
	}
}

// ResolveDimensions picks the metadata shape when key is set and the bounding
// box shape otherwise.
func ResolveDimensions(logger log.Logger, md grid.Metadata, key string, box AABB) (Dimensions, error) {
	if key != "" {
		return DimensionsFromMetadata(md, key)
	}
	if box.Empty() {
		level.Warn(logger).Log("msg", "grid has no voxel-level samples, dense array is empty")
	}
	return DimensionsFromBox(box)
}
