package kv6

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headerBytes(x, y, z int32, pivot Pivot, n uint32) []byte {
	w := newWriter(headerSize)
	w.raw([]byte(Magic))
	w.i32(x)
	w.i32(y)
	w.i32(z)
	w.f32(pivot.X)
	w.f32(pivot.Y)
	w.f32(pivot.Z)
	w.u32(n)
	return w.bytes()
}

func TestHeader_RoundTrip(t *testing.T) {
	h := Header{Extents: Extents{X: 6, Y: 6, Z: 9}, Pivot: Pivot{X: 2.5, Y: 2.5, Z: 3.5}, NumVoxels: 74}
	w := newWriter(0)
	h.write(w)
	require.Len(t, w.bytes(), headerSize)

	got, err := ParseHeader(w.bytes())
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestHeader_MagicIsKvxl(t *testing.T) {
	w := newWriter(0)
	Header{Extents: Extents{1, 1, 1}}.write(w)
	// 0x4b76786c read big-endian
	assert.Equal(t, []byte{0x4b, 0x76, 0x78, 0x6c}, w.bytes()[:4])
}

func TestHeader_PivotPassesThroughNonFinite(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	got, err := ParseHeader(headerBytes(1, 1, 1, Pivot{X: nan, Y: inf, Z: -1e30}, 0))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(float64(got.Pivot.X)))
	assert.True(t, math.IsInf(float64(got.Pivot.Y), 1))
	assert.Equal(t, float32(-1e30), got.Pivot.Z)
}

func TestHeader_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		want   *Error
		offset int
	}{
		{
			name:   "bad magic",
			data:   append([]byte("Kvx!"), headerBytes(1, 1, 1, Pivot{}, 0)[4:]...),
			want:   ErrBadMagic,
			offset: 0,
		},
		{
			name:   "zero x extent",
			data:   headerBytes(0, 4, 4, Pivot{}, 0),
			want:   ErrInvalidExtents,
			offset: 4,
		},
		{
			name:   "negative z extent",
			data:   headerBytes(4, 4, -1, Pivot{}, 0),
			want:   ErrInvalidExtents,
			offset: 4,
		},
		{
			name:   "truncated",
			data:   headerBytes(1, 1, 1, Pivot{}, 0)[:headerSize-1],
			want:   ErrUnexpectedEOF,
			offset: headerSize - 4,
		},
		{
			name:   "empty",
			data:   nil,
			want:   ErrUnexpectedEOF,
			offset: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHeader(tt.data)
			require.ErrorIs(t, err, tt.want)
			var kerr *Error
			require.ErrorAs(t, err, &kerr)
			assert.Equal(t, tt.offset, kerr.Offset)
		})
	}
}

func TestHeader_LargeZExtent(t *testing.T) {
	h, err := ParseHeader(headerBytes(2, 2, 70000, Pivot{}, 0))
	require.NoError(t, err)
	assert.Equal(t, 70000, h.Extents.Z)
}

func TestExtents_Validate(t *testing.T) {
	assert.NoError(t, Extents{1, 1, 1}.Validate())
	assert.NoError(t, Extents{1, 1, 70000}.Validate())
	assert.ErrorIs(t, Extents{0, 4, 4}.Validate(), ErrInvalidExtents)
	assert.ErrorIs(t, Extents{4, 0, 4}.Validate(), ErrInvalidExtents)
	assert.ErrorIs(t, Extents{4, 4, 0}.Validate(), ErrInvalidExtents)
}
