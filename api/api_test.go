package api

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxelsplace/vdb2density/density"
	"github.com/voxelsplace/vdb2density/vopl"
)

func chunk(fill func(g *vopl.VoxelGrid)) []byte {
	var g vopl.VoxelGrid
	fill(&g)
	return vopl.SaveVoplGridToBytes(&g)
}

func decode(t *testing.T, b []byte) *density.DenseArray {
	t.Helper()
	a, err := density.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	return a
}

func TestDensityFromVOPL(t *testing.T) {
	data := chunk(func(g *vopl.VoxelGrid) {
		g[0][2][1] = 3 // y=0 x=2 z=1
	})

	out, err := DensityFromVOPL(data, Options{})
	require.NoError(t, err)
	a := decode(t, out)
	assert.Equal(t, density.Dimensions{X: 3, Y: 1, Z: 2}, a.Dims)
	assert.Equal(t, 3.0, a.At(2, 0, 1))

	out, err = DensityFromVOPL(data, Options{MetadataKey: "dims"})
	require.NoError(t, err)
	assert.Equal(t, density.Dimensions{X: 16, Y: 16, Z: 16}, decode(t, out).Dims)

	_, err = DensityFromVOPL(data, Options{MetadataKey: "bpp"})
	require.ErrorIs(t, err, density.ErrMetadataWrongType)
}

func entry(t *testing.T, name string, fill func(g *vopl.VoxelGrid)) (vopl.VOPLHeader, vopl.PackEntry) {
	t.Helper()
	hdr, enc, payload, err := vopl.ParseVOPLHeaderFromBytes(chunk(fill))
	require.NoError(t, err)
	return hdr, vopl.PackEntry{Name: name, Enc: enc, Payload: payload}
}

func TestDensityFromVOPLPack(t *testing.T) {
	hdr, a := entry(t, "a.vopl", func(g *vopl.VoxelGrid) { g[1][1][1] = 1 })
	_, b := entry(t, "b.vopl", func(g *vopl.VoxelGrid) { g[0][0][0] = 2 })
	p := &vopl.Pack{Header: hdr, Entries: []vopl.PackEntry{a, b}}
	packed, err := p.Marshal(vopl.PackCompZstd)
	require.NoError(t, err)

	out, err := DensityFromVOPLPack(packed, "b", Options{})
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, decode(t, out).Cells)

	_, err = DensityFromVOPLPack(packed, "c", Options{})
	require.ErrorIs(t, err, density.ErrGridNotFound)
}

func TestDensityFromManifest(t *testing.T) {
	m := []byte(`{"grids":[{"name":"density_noise","samples":[{"x":1,"y":0,"z":0,"value":0.5}]}]}`)
	out, err := DensityFromManifest(m, "", Options{})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5}, decode(t, out).Cells)

	_, err = DensityFromManifest([]byte(`{"grids":[{}]}`), "", Options{})
	require.ErrorIs(t, err, density.ErrGridDecode)
}

func TestDensityToGLB(t *testing.T) {
	m := []byte(`{"grids":[{"name":"density_noise","samples":[{"x":1,"y":1,"z":1,"value":2}]}]}`)
	out, err := DensityFromManifest(m, "", Options{})
	require.NoError(t, err)

	glb, err := DensityToGLB(out, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("glTF"), glb[:4])

	_, err = DensityToGLB(out[:7], 0)
	require.Error(t, err)
}
