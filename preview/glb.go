// Package preview renders a dense density array as a glTF point cloud.
package preview

import (
	"io"
	"math"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/voxelsplace/vdb2density/density"
)

// Options controls which cells become points.
type Options struct {
	// Threshold is the minimum density of a point. Zero and NaN cells are
	// never emitted.
	Threshold float64
}

// Document builds a glTF document with one POINTS primitive holding a vertex
// per cell whose density is non-zero and at least opts.Threshold. Points sit
// at cell centres and are shaded grey by density relative to peak.
// It returns the document and the number of points.
func Document(a *density.DenseArray, peak float64, opts Options) (*gltf.Document, int) {
	var positions [][3]float32
	var colors [][4]uint8
	d := a.Dims
	for z := range d.Z {
		for y := range d.Y {
			for x := range d.X {
				v := a.At(x, y, z)
				if v == 0 || math.IsNaN(v) || v < opts.Threshold {
					continue
				}
				positions = append(positions, [3]float32{float32(x) + 0.5, float32(y) + 0.5, float32(z) + 0.5})
				colors = append(colors, shade(v, peak))
			}
		}
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "vdb2density preview"
	if len(positions) == 0 {
		return doc, 0
	}

	prim := &gltf.Primitive{
		Mode: gltf.PrimitivePoints,
		Attributes: map[string]int{
			gltf.POSITION: modeler.WritePosition(doc, positions),
			gltf.COLOR_0:  modeler.WriteColor(doc, colors),
		},
	}
	doc.Meshes = []*gltf.Mesh{{Name: "density", Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Name: "density", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	return doc, len(positions)
}

// shade maps v onto an opaque grey ramp; values at or above peak are white.
func shade(v, peak float64) [4]uint8 {
	t := 1.0
	if peak > 0 {
		t = min(max(v/peak, 0), 1)
	}
	g := uint8(32 + t*223)
	return [4]uint8{g, g, g, 255}
}

// WriteGLB encodes the preview of a as a binary glTF to w and returns the
// number of points written.
func WriteGLB(w io.Writer, a *density.DenseArray, peak float64, opts Options) (int, error) {
	doc, n := Document(a, peak, opts)
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return 0, err
	}
	return n, nil
}
