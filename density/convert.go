// Package density turns one named grid of a sparse volume into a dense,
// row-major float64 array and encodes it as a .density file.
//
// A conversion walks the grid twice: once to bound the voxel-level samples,
// once to scatter them into the array. Dimensions come either from that bound
// or from a vec3i metadata entry.
package density

import (
	"fmt"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/voxelsplace/vdb2density/grid"
)

// DefaultGrid is the grid converted when none is named.
const DefaultGrid = "density_noise"

// Options configures Convert.
type Options struct {
	Grid string
	// MetadataKey, when set, names the vec3i metadata entry holding the dense
	// shape. Otherwise the shape is derived from the voxel bounding box.
	MetadataKey string
	RasterOptions
}

// Result is a finished conversion.
type Result struct {
	Grid  string
	Array *DenseArray
	Scan  Scan
	Stats RasterStats
}

// FillRatio is the share of cells that received a voxel-level sample during
// the scan. It is 0 for an empty array.
func (r *Result) FillRatio() float64 {
	if n := r.Array.Dims.Cells(); n > 0 {
		return float64(r.Scan.Voxels) / float64(n)
	}
	return 0
}

// LogGrids logs every grid of src together with its metadata.
func LogGrids(logger log.Logger, src grid.Source) {
	names := src.GridNames()
	level.Info(logger).Log("msg", "available grids", "grids", strings.Join(names, ","))
	for _, name := range names {
		md, err := src.Metadata(name)
		if err != nil {
			level.Warn(logger).Log("msg", "cannot read grid metadata", "grid", name, "err", err)
			continue
		}
		level.Info(logger).Log("msg", "grid", "grid", name, "metadata_keys", len(md))
		for _, key := range md.Keys() {
			level.Info(logger).Log("msg", "grid metadata", "grid", name, "key", key, "value", md[key])
		}
	}
}

// Convert loads opts.Grid from src and rasterizes it.
func Convert(logger log.Logger, src grid.Source, opts Options) (*Result, error) {
	name := opts.Grid
	if name == "" {
		name = DefaultGrid
	}
	if !grid.HasGrid(src, name) {
		return nil, fmt.Errorf("%w: %q, available: %s", ErrGridNotFound, name, strings.Join(src.GridNames(), ", "))
	}
	g, err := src.Load(name)
	if err != nil {
		return nil, err
	}
	logger = log.With(logger, "grid", name)

	scan := ScanGrid(logger, g)
	if scan.Skipped > 0 {
		level.Warn(logger).Log("msg", "samples above voxel level were ignored", "count", scan.Skipped)
	}
	dims, err := ResolveDimensions(logger, g.Metadata(), opts.MetadataKey, scan.Box)
	if err != nil {
		return nil, err
	}
	level.Info(logger).Log("msg", "bounding box", "aabb", scan.Box)
	level.Info(logger).Log("msg", "dense size", "size", dims, "from_metadata", opts.MetadataKey != "")
	level.Info(logger).Log("msg", "filled density", "voxels", scan.Voxels, "cells", dims.Cells())

	arr, stats, err := Rasterize(logger, g, dims, opts.RasterOptions)
	if err != nil {
		return nil, err
	}
	if stats.OutOfRange > 0 {
		level.Warn(logger).Log("msg", "voxels outside the dense array were dropped", "count", stats.OutOfRange)
	}
	level.Info(logger).Log("msg", "max density", "value", stats.MaxValue)
	return &Result{Grid: name, Array: arr, Scan: scan, Stats: stats}, nil
}
