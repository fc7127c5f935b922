package kv6

// voxelRecordSize is the on-disk size of one voxel record.
const voxelRecordSize = 8

// LegacyPadding is the reserved-byte value written by the legacy Build
// engine tools. Encode writes 0; use EncodeWithPadding to reproduce it.
const LegacyPadding = 128

// Visibility is a 6-bit mask; a set bit marks a face that borders empty
// space or the grid boundary.
type Visibility uint8

const (
	FaceNegX Visibility = 1 << iota
	FacePosX
	FaceNegY
	FacePosY
	FaceNegZ
	FacePosZ

	AllFaces Visibility = FaceNegX | FacePosX | FaceNegY | FacePosY | FaceNegZ | FacePosZ
)

// Has reports whether every face in f is set.
func (v Visibility) Has(f Visibility) bool { return v&f == f }

// Color is an 8-bit RGB triple, stored in file order.
type Color struct {
	R, G, B uint8
}

// Voxel is one solid position. X and Y are implied by the column holding it.
type Voxel struct {
	Color  Color
	Vis    Visibility
	Z      uint16
	Normal uint8 // opaque index into an external normal table
}

// readVoxel decodes one record. Only the cursor can fail it; z is not
// checked against the extents here.
func readVoxel(r *reader) (Voxel, error) {
	b, err := r.take(voxelRecordSize)
	if err != nil {
		return Voxel{}, err
	}
	return Voxel{
		Color:  Color{R: b[0], G: b[1], B: b[2]},
		Z:      uint16(b[4]) | uint16(b[5])<<8,
		Vis:    Visibility(b[6]) & AllFaces,
		Normal: b[7],
	}, nil
}

func writeVoxel(w *writer, v Voxel, padding uint8) {
	w.u8(v.Color.R)
	w.u8(v.Color.G)
	w.u8(v.Color.B)
	w.u8(padding)
	w.u16(v.Z)
	w.u8(uint8(v.Vis & AllFaces))
	w.u8(v.Normal)
}
