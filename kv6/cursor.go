package kv6

import (
	"encoding/binary"
	"math"
)

// reader walks a byte buffer front to back. Every read is bounds checked
// and fails with an unexpected_eof error carrying the current offset.
type reader struct {
	data []byte
	pos  int
}

func newReader(b []byte) *reader { return &reader{data: b} }

func (r *reader) offset() int { return r.pos }

func (r *reader) remaining() int { return len(r.data) - r.pos }

// need fails unless at least n more bytes are available. It lets callers
// reject a short buffer before allocating tables sized from the header.
func (r *reader) need(n uint64) error {
	if n > uint64(r.remaining()) {
		want := math.MaxInt
		if n < uint64(math.MaxInt) {
			want = int(n)
		}
		return eofError(r.pos, want, r.remaining())
	}
	return nil
}

func (r *reader) take(n int) ([]byte, error) {
	if n > r.remaining() {
		return nil, eofError(r.pos, n, r.remaining())
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) u8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) i8() (int8, error) {
	v, err := r.u8()
	return int8(v), err
}

func (r *reader) u16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) i16() (int16, error) {
	v, err := r.u16()
	return int16(v), err
}

func (r *reader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) i32() (int32, error) {
	v, err := r.u32()
	return int32(v), err
}

func (r *reader) u64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) f32() (float32, error) {
	v, err := r.u32()
	return math.Float32frombits(v), err
}

// writer appends little-endian values to a growing buffer. It never fails.
type writer struct {
	buf []byte
}

func newWriter(sizeHint int) *writer { return &writer{buf: make([]byte, 0, sizeHint)} }

func (w *writer) offset() int { return len(w.buf) }

func (w *writer) u8(v uint8) { w.buf = append(w.buf, v) }

func (w *writer) i8(v int8) { w.u8(uint8(v)) }

func (w *writer) u16(v uint16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }

func (w *writer) i16(v int16) { w.u16(uint16(v)) }

func (w *writer) u32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }

func (w *writer) i32(v int32) { w.u32(uint32(v)) }

func (w *writer) u64(v uint64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }

func (w *writer) f32(v float32) { w.u32(math.Float32bits(v)) }

func (w *writer) raw(b []byte) { w.buf = append(w.buf, b...) }

func (w *writer) bytes() []byte { return w.buf }
