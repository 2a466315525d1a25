// Package grid defines the boundary between sparse volume containers and the
// densification pipeline: named grids that enumerate (coordinate, value, level)
// samples and carry typed per-grid metadata.
package grid

import (
	"fmt"
	"iter"
	"slices"
)

// Coord is a voxel position in the index space of a sparse grid. It may be negative.
type Coord struct {
	X, Y, Z int32
}

func (c Coord) String() string { return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z) }

// Level is the tree tier a sample comes from.
type Level uint8

const (
	// LevelVoxel samples carry one value per cell.
	LevelVoxel Level = iota
	// LevelInternal samples are tiles of an internal node and span many cells.
	LevelInternal
	// LevelRoot samples are tiles stored directly in the root table.
	LevelRoot
)

var levelNames = [...]string{LevelVoxel: "voxel", LevelInternal: "internal", LevelRoot: "root"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("level(%d)", uint8(l))
}

// ParseLevel is the inverse of Level.String.
func ParseLevel(s string) (Level, error) {
	for i, n := range levelNames {
		if n == s {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("unknown level %q", s)
}

// Sample is one stored value of a grid.
type Sample struct {
	Coord Coord
	Value float64
	Level Level
}

// Grid is one loaded named grid.
type Grid interface {
	Name() string
	// All enumerates every stored sample. The sequence is finite, deterministic
	// and can be ranged over more than once.
	All() iter.Seq[Sample]
	Metadata() Metadata
}

// Source is an opened container holding one or more named grids.
type Source interface {
	// GridNames returns the available grid names, sorted.
	GridNames() []string
	// Metadata returns the descriptor metadata of a grid without decoding its tree.
	Metadata(name string) (Metadata, error)
	// Load decodes a grid. It fails with ErrNotFound or ErrDecode.
	Load(name string) (Grid, error)
}

// HasGrid reports whether src lists name.
func HasGrid(src Source, name string) bool {
	_, found := slices.BinarySearch(src.GridNames(), name)
	return found
}
