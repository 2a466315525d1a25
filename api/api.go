// Package api exposes byte-to-byte conversions for embedders such as the
// wasm build. Nothing here touches the filesystem or logs.
package api

import (
	"bytes"
	"fmt"

	"github.com/go-kit/log"

	"github.com/voxelsplace/vdb2density/density"
	"github.com/voxelsplace/vdb2density/grid"
	"github.com/voxelsplace/vdb2density/preview"
)

// ChunkGrid is the grid name given to a lone .vopl chunk.
const ChunkGrid = "chunk"

// Options mirrors the sizing flags of the command line tool.
type Options struct {
	MetadataKey    string
	SkipOutOfRange bool
}

func convert(src grid.Source, name string, opts Options) ([]byte, error) {
	res, err := density.Convert(log.NewNopLogger(), src, density.Options{
		Grid:          name,
		MetadataKey:   opts.MetadataKey,
		RasterOptions: density.RasterOptions{SkipOutOfRange: opts.SkipOutOfRange},
	})
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(int(density.EncodedSize(res.Array.Dims)))
	if _, err := res.Array.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DensityFromVOPL converts a single .vopl chunk into .density bytes.
func DensityFromVOPL(voplBytes []byte, opts Options) ([]byte, error) {
	src, err := grid.NewVOPLSource(ChunkGrid, voplBytes)
	if err != nil {
		return nil, err
	}
	return convert(src, ChunkGrid, opts)
}

// DensityFromVOPLPack converts the entry gridName of a .voplpack.
func DensityFromVOPLPack(packBytes []byte, gridName string, opts Options) ([]byte, error) {
	src, err := grid.NewVOPLPackSource(packBytes)
	if err != nil {
		return nil, err
	}
	return convert(src, gridName, opts)
}

// DensityFromManifest converts gridName of a JSON (or zstd JSON) grid manifest.
func DensityFromManifest(data []byte, gridName string, opts Options) ([]byte, error) {
	src, err := grid.NewManifestSource(data)
	if err != nil {
		return nil, err
	}
	if gridName == "" {
		gridName = density.DefaultGrid
	}
	return convert(src, gridName, opts)
}

// DensityToGLB renders .density bytes as a GLB point cloud.
func DensityToGLB(densityBytes []byte, threshold float64) ([]byte, error) {
	a, err := density.Decode(bytes.NewReader(densityBytes))
	if err != nil {
		return nil, fmt.Errorf("decode density: %w", err)
	}
	var peak float64
	for _, v := range a.Cells {
		if v > peak {
			peak = v
		}
	}
	var buf bytes.Buffer
	if _, err := preview.WriteGLB(&buf, a, peak, preview.Options{Threshold: threshold}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
