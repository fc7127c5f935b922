package kv6

import (
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// Decode parses a complete KV6 buffer. Decoding is all-or-nothing: on any
// structural error no grid is returned.
//
// Bytes following the xy-table are ignored; some producers append a palette
// there.
func Decode(data []byte) (*Grid, error) {
	r := newReader(data)
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	ext := h.Extents

	// Everything after the header has a size known from the header alone.
	body := uint64(h.NumVoxels)*voxelRecordSize + uint64(ext.X)*4 + uint64(ext.X)*uint64(ext.Y)*2
	if err := r.need(body); err != nil {
		return nil, err
	}

	streamOffset := r.offset()
	stream := make([]Voxel, h.NumVoxels)
	for i := range stream {
		if stream[i], err = readVoxel(r); err != nil {
			return nil, err
		}
	}
	xlen := make([]uint32, ext.X)
	for i := range xlen {
		if xlen[i], err = r.u32(); err != nil {
			return nil, err
		}
	}
	tablesOffset := r.offset()
	ylen := make([]uint16, ext.X*ext.Y)
	for i := range ylen {
		if ylen[i], err = r.u16(); err != nil {
			return nil, err
		}
	}

	ci, err := reconcileIndex(ext, xlen, ylen, h.NumVoxels)
	if err != nil {
		err.(*Error).Offset = tablesOffset
		return nil, err
	}

	g := &Grid{
		ext:   ext,
		Pivot: h.Pivot,
		cols:  make([][]Voxel, ext.X*ext.Y),
		count: len(stream),
	}
	for x := 0; x < ext.X; x++ {
		for y := 0; y < ext.Y; y++ {
			start, n := ci.Span(x, y)
			if n == 0 {
				continue
			}
			// Capped so appends on one column never spill into the next.
			col := stream[start : start+n : start+n]
			if err := checkColumn(col, ext); err != nil {
				err.Offset = streamOffset + start*voxelRecordSize
				err.Detail = fmt.Sprintf("column (%d,%d): %s", x, y, err.Detail)
				return nil, err
			}
			g.cols[x*ext.Y+y] = col
		}
	}

	if extra := r.remaining(); extra > 0 {
		Logger().Debug("kv6 trailing bytes ignored", zap.Int("bytes", extra))
	}
	Logger().Debug("kv6 decoded",
		zap.Int("x", ext.X), zap.Int("y", ext.Y), zap.Int("z", ext.Z),
		zap.Uint32("voxels", h.NumVoxels))
	return g, nil
}

// checkColumn enforces z < Z and strictly increasing z. A column stored out
// of order is sorted in place; two voxels at the same z are rejected.
func checkColumn(col []Voxel, ext Extents) *Error {
	sorted := true
	for i, v := range col {
		if int(v.Z) >= ext.Z {
			return newError(KindOutOfBounds, -1, "z=%d outside z extent %d", v.Z, ext.Z)
		}
		if i > 0 && col[i-1].Z >= v.Z {
			sorted = false
		}
	}
	if !sorted {
		slices.SortStableFunc(col, func(a, b Voxel) int { return int(a.Z) - int(b.Z) })
	}
	for i := 1; i < len(col); i++ {
		if col[i-1].Z == col[i].Z {
			return newError(KindDuplicateColumnPosition, -1, "z=%d appears twice", col[i].Z)
		}
	}
	return nil
}

// Encode serializes the grid with a zero padding byte in every record.
func Encode(g *Grid) []byte {
	return EncodeWithPadding(g, 0)
}

// EncodeWithPadding serializes the grid writing padding into the reserved
// byte of every voxel record (LegacyPadding matches the legacy tools).
func EncodeWithPadding(g *Grid, padding uint8) []byte {
	ci, stream := indexGrid(g)
	ext := g.ext
	w := newWriter(headerSize + len(stream)*voxelRecordSize + ext.X*4 + ext.X*ext.Y*2)
	Header{Extents: ext, Pivot: g.Pivot, NumVoxels: ci.Total()}.write(w)
	for _, v := range stream {
		writeVoxel(w, v, padding)
	}
	for _, n := range ci.XLen {
		w.u32(n)
	}
	for _, n := range ci.YLen {
		w.u16(n)
	}
	Logger().Debug("kv6 encoded",
		zap.Int("voxels", len(stream)), zap.Int("bytes", w.offset()))
	return w.bytes()
}

// BuildIndex returns the offset tables Encode would write for g.
func BuildIndex(g *Grid) *ColumnIndex {
	ci, _ := indexGrid(g)
	return ci
}
