package density

import (
	"errors"

	"github.com/voxelsplace/vdb2density/grid"
)

// Error kinds of a conversion. Callers classify failures with errors.Is.
var (
	ErrInputOpen           = grid.ErrOpen
	ErrGridDecode          = grid.ErrDecode
	ErrGridNotFound        = grid.ErrNotFound
	ErrMetadataKeyNotFound = errors.New("metadata key not found")
	ErrMetadataWrongType   = errors.New("metadata value is not a non-negative vec3i")
	ErrIndexOutOfRange     = errors.New("voxel outside dense dimensions")
	ErrDimensionsTooLarge  = errors.New("dense dimensions too large")
	ErrOutputWrite         = errors.New("cannot write output")
)
