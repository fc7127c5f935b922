package kv6

// Magic is the 4-byte tag every KV6 file starts with.
const Magic = "Kvxl"

// MaxZ is the largest z a voxel record can hold. The z extent itself may be
// larger; Grid.Set rejects positions above MaxZ.
const MaxZ = 0xFFFF

// MaxColumnLen is the most voxels one column can hold in the 16-bit xy-table.
const MaxColumnLen = 0xFFFF

// headerSize is magic + 3 extents + 3 pivot floats + voxel count.
const headerSize = 4 + 3*4 + 3*4 + 4

// Extents bounds every coordinate of a grid: 0 <= x < X, 0 <= y < Y, 0 <= z < Z.
type Extents struct {
	X, Y, Z int
}

// Validate reports invalid_extents for a non-positive dimension.
func (e Extents) Validate() error {
	if err := e.validate(); err != nil {
		return err
	}
	return nil
}

func (e Extents) validate() *Error {
	if e.X < 1 || e.Y < 1 || e.Z < 1 {
		return newError(KindInvalidExtents, -1, "extents %dx%dx%d must all be >= 1", e.X, e.Y, e.Z)
	}
	return nil
}

// Contains reports whether (x, y, z) lies inside the extents.
func (e Extents) Contains(x, y, z int) bool {
	return x >= 0 && x < e.X && y >= 0 && y < e.Y && z >= 0 && z < e.Z
}

// Pivot is the sprite's logical origin relative to cell (0,0,0).
// It is never validated.
type Pivot struct {
	X, Y, Z float32
}

// Header is the fixed preamble of a KV6 file.
type Header struct {
	Extents   Extents
	Pivot     Pivot
	NumVoxels uint32
}

// ParseHeader decodes only the preamble of a KV6 file.
func ParseHeader(data []byte) (Header, error) {
	return readHeader(newReader(data))
}

func readHeader(r *reader) (Header, error) {
	var h Header
	tag, err := r.take(len(Magic))
	if err != nil {
		return h, err
	}
	if string(tag) != Magic {
		return h, newError(KindBadMagic, 0, "got %q, want %q", tag, Magic)
	}
	start := r.offset()
	var ext [3]int32
	for i := range ext {
		if ext[i], err = r.i32(); err != nil {
			return h, err
		}
	}
	h.Extents = Extents{X: int(ext[0]), Y: int(ext[1]), Z: int(ext[2])}
	if verr := h.Extents.validate(); verr != nil {
		verr.Offset = start
		return h, verr
	}
	if h.Pivot.X, err = r.f32(); err != nil {
		return h, err
	}
	if h.Pivot.Y, err = r.f32(); err != nil {
		return h, err
	}
	if h.Pivot.Z, err = r.f32(); err != nil {
		return h, err
	}
	if h.NumVoxels, err = r.u32(); err != nil {
		return h, err
	}
	return h, nil
}

func (h Header) write(w *writer) {
	w.raw([]byte(Magic))
	w.i32(int32(h.Extents.X))
	w.i32(int32(h.Extents.Y))
	w.i32(int32(h.Extents.Z))
	w.f32(h.Pivot.X)
	w.f32(h.Pivot.Y)
	w.f32(h.Pivot.Z)
	w.u32(h.NumVoxels)
}
