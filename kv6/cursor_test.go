package kv6

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_RoundTripPrimitives(t *testing.T) {
	w := newWriter(0)
	w.u8(0xAB)
	w.i8(-5)
	w.u16(0xBEEF)
	w.i16(-1234)
	w.u32(0xDEADBEEF)
	w.i32(-7)
	w.u64(0x0102030405060708)
	w.f32(2.5)
	w.f32(float32(math.Inf(-1)))
	w.raw([]byte("ok"))
	require.Equal(t, 1+1+2+2+4+4+8+4+4+2, w.offset())

	r := newReader(w.bytes())
	u8, err := r.u8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0xAB), u8)
	i8, err := r.i8()
	require.NoError(t, err)
	assert.Equal(t, int8(-5), i8)
	u16, err := r.u16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), u16)
	i16, err := r.i16()
	require.NoError(t, err)
	assert.Equal(t, int16(-1234), i16)
	u32, err := r.u32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), u32)
	i32, err := r.i32()
	require.NoError(t, err)
	assert.Equal(t, int32(-7), i32)
	u64, err := r.u64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), u64)
	f, err := r.f32()
	require.NoError(t, err)
	assert.Equal(t, float32(2.5), f)
	f, err = r.f32()
	require.NoError(t, err)
	assert.True(t, math.IsInf(float64(f), -1))
	b, err := r.take(2)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(b))
	assert.Equal(t, 0, r.remaining())
}

func TestCursor_LittleEndianLayout(t *testing.T) {
	w := newWriter(4)
	w.u32(0x04030201)
	assert.Equal(t, []byte{1, 2, 3, 4}, w.bytes())
}

func TestCursor_ReadPastEnd(t *testing.T) {
	r := newReader([]byte{1, 2, 3})
	_, err := r.u16()
	require.NoError(t, err)

	_, err = r.u32()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedEOF))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))

	var kerr *Error
	require.True(t, errors.As(err, &kerr))
	assert.Equal(t, 2, kerr.Offset)
	// a failed read does not advance
	assert.Equal(t, 2, r.offset())
}

func TestCursor_Need(t *testing.T) {
	r := newReader(make([]byte, 10))
	assert.NoError(t, r.need(10))
	assert.ErrorIs(t, r.need(11), ErrUnexpectedEOF)
	assert.ErrorIs(t, r.need(math.MaxUint64), ErrUnexpectedEOF)
}
