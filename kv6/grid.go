package kv6

import "sort"

// Grid is a bounded sparse voxel grid. Voxels live in per-(x, y) columns
// sorted by strictly increasing z, so memory follows the voxel count rather
// than the volume.
//
// A Grid may be read from several goroutines once it is no longer mutated.
// Mutation must be serialized by the caller.
type Grid struct {
	ext   Extents
	Pivot Pivot
	cols  [][]Voxel // x*ext.Y + y
	count int
}

// NewGrid returns an empty grid.
func NewGrid(ext Extents, pivot Pivot) (*Grid, error) {
	if err := ext.validate(); err != nil {
		return nil, err
	}
	return &Grid{
		ext:   ext,
		Pivot: pivot,
		cols:  make([][]Voxel, ext.X*ext.Y),
	}, nil
}

// Extents returns the grid bounds.
func (g *Grid) Extents() Extents { return g.ext }

// Len returns the number of occupied positions.
func (g *Grid) Len() int { return g.count }

// search returns the index of z in col, or the insertion point and false.
func search(col []Voxel, z int) (int, bool) {
	i := sort.Search(len(col), func(i int) bool { return int(col[i].Z) >= z })
	return i, i < len(col) && int(col[i].Z) == z
}

// Set inserts the voxel at (x, y, z), replacing any voxel already there.
// v.Z is overwritten with z and bits of v.Vis above the six faces are
// dropped. Out-of-range coordinates, z above MaxZ and inserts into a column
// already holding MaxColumnLen voxels fail with out_of_bounds and leave the
// grid untouched.
func (g *Grid) Set(x, y, z int, v Voxel) error {
	if !g.ext.Contains(x, y, z) {
		return outOfBounds(x, y, z, g.ext)
	}
	if z > MaxZ {
		return newError(KindOutOfBounds, -1, "z=%d does not fit a voxel record (max %d)", z, MaxZ)
	}
	v.Z = uint16(z)
	v.Vis &= AllFaces
	ci := x*g.ext.Y + y
	col := g.cols[ci]
	i, found := search(col, z)
	if found {
		col[i] = v
		return nil
	}
	if len(col) >= MaxColumnLen {
		return newError(KindOutOfBounds, -1, "column (%d,%d) already holds %d voxels", x, y, MaxColumnLen)
	}
	col = append(col, Voxel{})
	copy(col[i+1:], col[i:])
	col[i] = v
	g.cols[ci] = col
	g.count++
	return nil
}

// Get returns the voxel at (x, y, z) and whether one is present.
func (g *Grid) Get(x, y, z int) (Voxel, bool, error) {
	if !g.ext.Contains(x, y, z) {
		return Voxel{}, false, outOfBounds(x, y, z, g.ext)
	}
	col := g.cols[x*g.ext.Y+y]
	i, found := search(col, z)
	if !found {
		return Voxel{}, false, nil
	}
	return col[i], true, nil
}

// Remove deletes the voxel at (x, y, z), reporting whether one was there.
func (g *Grid) Remove(x, y, z int) (bool, error) {
	if !g.ext.Contains(x, y, z) {
		return false, outOfBounds(x, y, z, g.ext)
	}
	ci := x*g.ext.Y + y
	col := g.cols[ci]
	i, found := search(col, z)
	if !found {
		return false, nil
	}
	g.cols[ci] = append(col[:i], col[i+1:]...)
	g.count--
	return true, nil
}

// Column returns the voxels of column (x, y) in z order. The slice is the
// grid's own storage and must not be modified; it is nil for an empty or
// out-of-range column.
func (g *Grid) Column(x, y int) []Voxel {
	if x < 0 || x >= g.ext.X || y < 0 || y >= g.ext.Y {
		return nil
	}
	return g.cols[x*g.ext.Y+y]
}

// Each calls fn for every voxel in column-major order (x, then y, then z)
// until fn returns false.
func (g *Grid) Each(fn func(x, y int, v Voxel) bool) {
	for x := 0; x < g.ext.X; x++ {
		for y := 0; y < g.ext.Y; y++ {
			for _, v := range g.cols[x*g.ext.Y+y] {
				if !fn(x, y, v) {
					return
				}
			}
		}
	}
}

// occupied is the unchecked neighbor test used by RecomputeVisibility;
// anything outside the grid counts as empty.
func (g *Grid) occupied(x, y, z int) bool {
	if !g.ext.Contains(x, y, z) {
		return false
	}
	_, found := search(g.cols[x*g.ext.Y+y], z)
	return found
}
