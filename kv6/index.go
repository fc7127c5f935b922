package kv6

// ColumnIndex locates every column inside the flat, column-major voxel
// stream. XLen and YLen are the two on-disk offset tables; start holds the
// prefix sum of YLen so column (x, y) occupies stream[start : start+count].
type ColumnIndex struct {
	Extents Extents
	XLen    []uint32 // voxels per x-slab
	YLen    []uint16 // voxels per column, x-major then y
	start   []uint32
	total   uint32
}

// Total is the number of voxels the index describes.
func (ci *ColumnIndex) Total() uint32 { return ci.total }

// Span returns where column (x, y) begins in the voxel stream and how many
// voxels it holds.
func (ci *ColumnIndex) Span(x, y int) (start, count int) {
	i := x*ci.Extents.Y + y
	return int(ci.start[i]), int(ci.YLen[i])
}

// reconcileIndex derives the column spans from the xy-table and checks them
// against the x-table and the header total. The three sources must agree;
// none of them is trusted over the others.
func reconcileIndex(ext Extents, xlen []uint32, ylen []uint16, total uint32) (*ColumnIndex, error) {
	if len(xlen) != ext.X || len(ylen) != ext.X*ext.Y {
		return nil, newError(KindInconsistentOffsets, -1, "table sizes %d/%d do not match extents %dx%d", len(xlen), len(ylen), ext.X, ext.Y)
	}
	ci := &ColumnIndex{
		Extents: ext,
		XLen:    xlen,
		YLen:    ylen,
		start:   make([]uint32, len(ylen)),
	}
	var running, slabStart uint64
	for x := 0; x < ext.X; x++ {
		for y := 0; y < ext.Y; y++ {
			i := x*ext.Y + y
			ci.start[i] = uint32(running)
			running += uint64(ylen[i])
		}
		if got := running - slabStart; got != uint64(xlen[x]) {
			return nil, newError(KindInconsistentOffsets, -1, "x=%d: columns sum to %d, x-table says %d", x, got, xlen[x])
		}
		slabStart = running
		if running > uint64(total) {
			return nil, newError(KindInconsistentOffsets, -1, "x=%d: running count %d exceeds header total %d", x, running, total)
		}
	}
	if running != uint64(total) {
		return nil, newError(KindInconsistentOffsets, -1, "tables sum to %d, header says %d", running, total)
	}
	ci.total = total
	return ci, nil
}

// indexGrid builds both offset tables from a grid and emits its voxels in
// the same column-major order. Grid columns are kept sorted by z on
// insertion, so no sorting happens here.
func indexGrid(g *Grid) (*ColumnIndex, []Voxel) {
	ext := g.ext
	ci := &ColumnIndex{
		Extents: ext,
		XLen:    make([]uint32, ext.X),
		YLen:    make([]uint16, ext.X*ext.Y),
		start:   make([]uint32, ext.X*ext.Y),
	}
	stream := make([]Voxel, 0, g.count)
	for x := 0; x < ext.X; x++ {
		for y := 0; y < ext.Y; y++ {
			i := x*ext.Y + y
			col := g.cols[i]
			ci.start[i] = uint32(len(stream))
			ci.YLen[i] = uint16(len(col))
			ci.XLen[x] += uint32(len(col))
			stream = append(stream, col...)
		}
	}
	ci.total = uint32(len(stream))
	return ci, stream
}
