package density

import (
	"bytes"
	"math"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/voxelsplace/vdb2density/grid"
)

func boxOf(points ...r3.Vec) AABB {
	b := NewAABB()
	for _, p := range points {
		b.Extend(p)
	}
	return b
}

func TestDimensionsFromBox(t *testing.T) {
	for name, tc := range map[string]struct {
		box  AABB
		want Dimensions
	}{
		"empty":          {NewAABB(), Dimensions{}},
		"single voxel":   {boxOf(r3.Vec{X: 1, Y: 2, Z: 3}), Dimensions{2, 3, 4}},
		"origin":         {boxOf(r3.Vec{}), Dimensions{1, 1, 1}},
		"negative min":   {boxOf(r3.Vec{X: -5, Y: -5, Z: -5}, r3.Vec{X: 3, Y: 0, Z: 1}), Dimensions{4, 1, 2}},
		"negative max x": {boxOf(r3.Vec{X: -3, Y: 2, Z: 2}), Dimensions{0, 3, 3}},
	} {
		t.Run(name, func(t *testing.T) {
			got, err := DimensionsFromBox(tc.box)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := DimensionsFromBox(boxOf(r3.Vec{X: math.MaxInt32}))
	require.ErrorIs(t, err, ErrDimensionsTooLarge)
}

func TestDimensionsFromMetadata(t *testing.T) {
	md := grid.Metadata{
		"size":     grid.Vec3i{4, 5, 6},
		"negative": grid.Vec3i{4, -1, 6},
		"huge":     grid.Vec3i{math.MaxInt32, math.MaxInt32, math.MaxInt32},
		"oversize": grid.Vec3i{100000, 100000, 100000},
		"at limit": grid.Vec3i{1 << 10, 1 << 10, 1 << 10},
		"name":     grid.String("fog"),
		"float3":   grid.Vec3d{1, 2, 3},
		"matrix":   grid.Unsupported{Type: "mat4d"},
	}

	got, err := DimensionsFromMetadata(md, "size")
	require.NoError(t, err)
	assert.Equal(t, Dimensions{4, 5, 6}, got)

	_, err = DimensionsFromMetadata(md, "absent")
	require.ErrorIs(t, err, ErrMetadataKeyNotFound)
	_, err = DimensionsFromMetadata(nil, "size")
	require.ErrorIs(t, err, ErrMetadataKeyNotFound)

	for _, key := range []string{"negative", "name", "float3", "matrix"} {
		_, err = DimensionsFromMetadata(md, key)
		require.ErrorIs(t, err, ErrMetadataWrongType, key)
	}

	// oversize fits int64 and is rejected by the allocation ceiling alone
	for _, key := range []string{"huge", "oversize"} {
		_, err = DimensionsFromMetadata(md, key)
		require.ErrorIs(t, err, ErrDimensionsTooLarge, key)
	}
	got, err = DimensionsFromMetadata(md, "at limit")
	require.NoError(t, err)
	assert.Equal(t, MaxCells, got.Cells())
}

func TestDimensionsFromBoxCeiling(t *testing.T) {
	_, err := DimensionsFromBox(boxOf(r3.Vec{X: 99999, Y: 99999, Z: 99999}))
	require.ErrorIs(t, err, ErrDimensionsTooLarge)
}

func TestValidateLimit(t *testing.T) {
	d := Dimensions{10, 10, 10}
	require.NoError(t, d.validate(0))
	require.NoError(t, d.validate(1000))
	require.ErrorIs(t, d.validate(999), ErrDimensionsTooLarge)
	require.ErrorIs(t, Dimensions{MaxCells, 2, 1}.validate(math.MaxInt), ErrDimensionsTooLarge)
}

func TestResolveDimensions(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewLogfmtLogger(&buf)
	md := grid.Metadata{"size": grid.Vec3i{8, 8, 8}}

	got, err := ResolveDimensions(logger, md, "size", boxOf(r3.Vec{X: 1, Y: 1, Z: 1}))
	require.NoError(t, err)
	assert.Equal(t, Dimensions{8, 8, 8}, got)

	got, err = ResolveDimensions(logger, md, "", boxOf(r3.Vec{X: 1, Y: 1, Z: 1}))
	require.NoError(t, err)
	assert.Equal(t, Dimensions{2, 2, 2}, got)
	assert.Empty(t, buf.String())

	got, err = ResolveDimensions(logger, md, "", NewAABB())
	require.NoError(t, err)
	assert.Equal(t, Dimensions{}, got)
	assert.Contains(t, buf.String(), "level=warn")
}

func TestIndex(t *testing.T) {
	d := Dimensions{3, 4, 5}
	assert.Equal(t, 0, d.Index(0, 0, 0))
	assert.Equal(t, d.Cells()-1, d.Index(d.X-1, d.Y-1, d.Z-1))

	seen := make(map[int]bool, d.Cells())
	for z := range d.Z {
		for y := range d.Y {
			for x := range d.X {
				i := d.Index(x, y, z)
				require.False(t, seen[i], "index %d reused", i)
				require.GreaterOrEqual(t, i, 0)
				require.Less(t, i, d.Cells())
				seen[i] = true
			}
		}
	}
	assert.Len(t, seen, d.Cells())
}

func TestContains(t *testing.T) {
	d := Dimensions{4, 4, 4}
	assert.True(t, d.Contains(grid.Coord{X: 3, Y: 3, Z: 3}))
	assert.False(t, d.Contains(grid.Coord{X: 4, Y: 0, Z: 0}))
	assert.False(t, d.Contains(grid.Coord{X: 10, Y: 0, Z: 0}))
	assert.False(t, d.Contains(grid.Coord{X: -1, Y: 0, Z: 0}))
	assert.False(t, Dimensions{}.Contains(grid.Coord{}))
}
