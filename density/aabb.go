package density

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// AABB is an axis-aligned box that only ever grows. The zero-point state is
// Min=+Inf, Max=-Inf, which Extend treats as the identity.
type AABB struct {
	Min, Max r3.Vec
}

// NewAABB returns a box that contains nothing.
func NewAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: r3.Vec{X: inf, Y: inf, Z: inf},
		Max: r3.Vec{X: -inf, Y: -inf, Z: -inf},
	}
}

// Extend widens the box to contain p.
func (b *AABB) Extend(p r3.Vec) {
	b.Min = r3.Vec{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y), Z: math.Min(b.Min.Z, p.Z)}
	b.Max = r3.Vec{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y), Z: math.Max(b.Max.Z, p.Z)}
}

// Empty reports whether no point was ever added.
func (b AABB) Empty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

func (b AABB) String() string {
	if b.Empty() {
		return "empty"
	}
	return fmt.Sprintf("[%g %g %g]-[%g %g %g]", b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
}
