package kv6

// faceSpec pairs a visibility bit with the offset of the neighbor behind it.
type faceSpec struct {
	bit        Visibility
	dx, dy, dz int
}

var faces = [6]faceSpec{
	{FaceNegX, -1, 0, 0},
	{FacePosX, 1, 0, 0},
	{FaceNegY, 0, -1, 0},
	{FacePosY, 0, 1, 0},
	{FaceNegZ, 0, 0, -1},
	{FacePosZ, 0, 0, 1},
}

// RecomputeVisibility overwrites every voxel's mask: a face bit is set iff
// the axis-adjacent position in that direction is empty or outside the grid.
func (g *Grid) RecomputeVisibility() {
	for x := 0; x < g.ext.X; x++ {
		for y := 0; y < g.ext.Y; y++ {
			col := g.cols[x*g.ext.Y+y]
			for k := range col {
				col[k].Vis = g.faceMask(x, y, col, k)
			}
		}
	}
}

func (g *Grid) faceMask(x, y int, col []Voxel, k int) Visibility {
	z := int(col[k].Z)
	var vis Visibility
	for _, f := range faces[:4] {
		if !g.occupied(x+f.dx, y+f.dy, z+f.dz) {
			vis |= f.bit
		}
	}
	// z neighbors sit next to each other in the sorted column.
	if k == 0 || int(col[k-1].Z) != z-1 {
		vis |= FaceNegZ
	}
	if k == len(col)-1 || int(col[k+1].Z) != z+1 {
		vis |= FacePosZ
	}
	return vis
}
