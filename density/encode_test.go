package density

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteToLayout(t *testing.T) {
	a := NewDenseArray(Dimensions{2, 1, 1})
	a.Cells[0] = 1.5
	a.Cells[1] = -0.25

	var buf bytes.Buffer
	n, err := a.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(28), n)
	assert.Equal(t, EncodedSize(a.Dims), n)

	b := buf.Bytes()
	assert.Equal(t, []byte{2, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0}, b[:12])
	assert.Equal(t, 1.5, math.Float64frombits(binary.LittleEndian.Uint64(b[12:])))
	assert.Equal(t, -0.25, math.Float64frombits(binary.LittleEndian.Uint64(b[20:])))
}

func TestEmptyArrayEncoding(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewDenseArray(Dimensions{}).WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 12), buf.Bytes())

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, Dimensions{}, got.Dims)
	assert.Empty(t, got.Cells)
}

func TestRoundtripBitExact(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	// spans several write chunks
	a := NewDenseArray(Dimensions{17, 31, 19})
	for i := range a.Cells {
		a.Cells[i] = r.NormFloat64() * 1e6
	}
	a.Cells[3] = math.Copysign(0, -1)
	a.Cells[4] = math.Inf(1)
	a.Cells[5] = math.Float64frombits(0x7ff8000000000123) // NaN with payload
	a.Cells[6] = math.SmallestNonzeroFloat64

	var buf bytes.Buffer
	_, err := a.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, EncodedSize(a.Dims), int64(buf.Len()))

	got, err := Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, a.Dims, got.Dims)
	require.Len(t, got.Cells, len(a.Cells))
	for i := range a.Cells {
		require.Equal(t, math.Float64bits(a.Cells[i]), math.Float64bits(got.Cells[i]), "cell %d", i)
	}
}

func TestDecodeRejects(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewDenseArray(Dimensions{2, 2, 2}).WriteTo(&buf)
	require.NoError(t, err)
	full := buf.Bytes()

	_, err = Decode(bytes.NewReader(full[:5]))
	require.Error(t, err)

	_, err = Decode(bytes.NewReader(full[:len(full)-3]))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = Decode(bytes.NewReader(append(append([]byte{}, full...), 0)))
	require.Error(t, err)

	// headers claiming far more cells than the input carries
	huge := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(huge[0:], 1000000)
	binary.LittleEndian.PutUint32(huge[4:], 1000000)
	binary.LittleEndian.PutUint32(huge[8:], 1000)
	_, err = Decode(bytes.NewReader(huge))
	require.ErrorIs(t, err, ErrDimensionsTooLarge)

	large := make([]byte, headerSize, headerSize+16)
	binary.LittleEndian.PutUint32(large[0:], 1000)
	binary.LittleEndian.PutUint32(large[4:], 1000)
	binary.LittleEndian.PutUint32(large[8:], 100)
	_, err = Decode(bytes.NewReader(append(large, make([]byte, 16)...)))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	neg := append([]byte{}, full...)
	binary.LittleEndian.PutUint32(neg[4:], uint32(0xFFFFFFFF))
	_, err = Decode(bytes.NewReader(neg))
	require.Error(t, err)
}

type failWriter struct{ after int }

func (w *failWriter) Write(p []byte) (int, error) {
	if w.after <= 0 {
		return 0, errors.New("disk full")
	}
	w.after--
	return len(p), nil
}

func TestWriteToPropagatesErrors(t *testing.T) {
	a := NewDenseArray(Dimensions{100, 100, 1})
	_, err := a.WriteTo(&failWriter{after: 0})
	require.EqualError(t, err, "disk full")
	n, err := a.WriteTo(&failWriter{after: 2})
	require.Error(t, err)
	assert.Equal(t, int64(headerSize+chunkCells*cellSize), n)
}
