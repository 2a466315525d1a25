package preview

import (
	"bytes"
	"math"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxelsplace/vdb2density/density"
)

func sampleArray() *density.DenseArray {
	a := density.NewDenseArray(density.Dimensions{X: 3, Y: 2, Z: 2})
	a.Cells[a.Dims.Index(0, 0, 0)] = 1
	a.Cells[a.Dims.Index(2, 1, 1)] = 4
	a.Cells[a.Dims.Index(1, 0, 1)] = 0.5
	a.Cells[a.Dims.Index(1, 1, 0)] = -2
	return a
}

func TestDocumentPoints(t *testing.T) {
	a := sampleArray()

	doc, n := Document(a, 4, Options{})
	assert.Equal(t, 3, n)
	require.Len(t, doc.Meshes, 1)
	prim := doc.Meshes[0].Primitives[0]
	assert.Equal(t, gltf.PrimitivePoints, prim.Mode)
	assert.Contains(t, prim.Attributes, gltf.POSITION)
	assert.Contains(t, prim.Attributes, gltf.COLOR_0)
	assert.Equal(t, 3, doc.Accessors[prim.Attributes[gltf.POSITION]].Count)

	_, n = Document(a, 4, Options{Threshold: 1})
	assert.Equal(t, 2, n)
}

func TestDocumentSkipsNaN(t *testing.T) {
	a := sampleArray()
	a.Cells[a.Dims.Index(2, 0, 0)] = math.NaN()
	_, n := Document(a, 4, Options{})
	assert.Equal(t, 3, n)
}

func TestDocumentEmpty(t *testing.T) {
	doc, n := Document(density.NewDenseArray(density.Dimensions{X: 2, Y: 2, Z: 2}), 0, Options{})
	assert.Zero(t, n)
	assert.Empty(t, doc.Meshes)
}

func TestShade(t *testing.T) {
	assert.Equal(t, [4]uint8{255, 255, 255, 255}, shade(4, 4))
	assert.Equal(t, [4]uint8{32, 32, 32, 255}, shade(-1, 4))
	assert.Equal(t, [4]uint8{255, 255, 255, 255}, shade(3, 0))
}

func TestWriteGLB(t *testing.T) {
	var buf bytes.Buffer
	n, err := WriteGLB(&buf, sampleArray(), 4, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte("glTF"), buf.Bytes()[:4])

	var doc gltf.Document
	require.NoError(t, gltf.NewDecoder(&buf).Decode(&doc))
	require.Len(t, doc.Meshes, 1)
	assert.Equal(t, "density", doc.Meshes[0].Name)
}
