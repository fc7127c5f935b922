package api

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/voxelsplace/kv6/kv6"
)

// VoxelEdit sets one voxel. Vis is only kept when the edit batch does not
// recompute visibility.
type VoxelEdit struct {
	X      int      `json:"x"`
	Y      int      `json:"y"`
	Z      int      `json:"z"`
	Color  [3]uint8 `json:"color"`
	Normal uint8    `json:"normal"`
	Vis    uint8    `json:"vis"`
}

// Position addresses one grid cell.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Edits is a batch of modifications applied to a sprite:
//
//	{"set": [{"x":0,"y":0,"z":0,"color":[255,0,0],"normal":3}],
//	 "remove": [{"x":1,"y":0,"z":0}],
//	 "recompute_visibility": true}
type Edits struct {
	Set                 []VoxelEdit `json:"set"`
	Remove              []Position  `json:"remove"`
	RecomputeVisibility bool        `json:"recompute_visibility"`
}

// ParseEdits decodes an Edits JSON document.
func ParseEdits(blob []byte) (Edits, error) {
	var e Edits
	if err := json.Unmarshal(blob, &e); err != nil {
		return e, fmt.Errorf("invalid edits JSON: %w", err)
	}
	return e, nil
}

// Validate checks every coordinate against ext before anything is applied.
func (e Edits) Validate(ext kv6.Extents) error {
	for i, s := range e.Set {
		if !ext.Contains(s.X, s.Y, s.Z) {
			return &kv6.Error{Kind: kv6.KindOutOfBounds, Offset: -1,
				Detail: fmt.Sprintf("set[%d] (%d,%d,%d) outside extents %dx%dx%d", i, s.X, s.Y, s.Z, ext.X, ext.Y, ext.Z)}
		}
	}
	for i, p := range e.Remove {
		if !ext.Contains(p.X, p.Y, p.Z) {
			return &kv6.Error{Kind: kv6.KindOutOfBounds, Offset: -1,
				Detail: fmt.Sprintf("remove[%d] (%d,%d,%d) outside extents %dx%dx%d", i, p.X, p.Y, p.Z, ext.X, ext.Y, ext.Z)}
		}
	}
	return nil
}

// ApplyEdits validates the batch, then applies removals before sets.
// An invalid batch leaves the grid untouched.
func ApplyEdits(grid *kv6.Grid, e Edits) error {
	if err := e.Validate(grid.Extents()); err != nil {
		return err
	}
	for _, p := range e.Remove {
		if _, err := grid.Remove(p.X, p.Y, p.Z); err != nil {
			return err
		}
	}
	for _, s := range e.Set {
		v := kv6.Voxel{
			Color:  kv6.Color{R: s.Color[0], G: s.Color[1], B: s.Color[2]},
			Vis:    kv6.Visibility(s.Vis),
			Normal: s.Normal,
		}
		if err := grid.Set(s.X, s.Y, s.Z, v); err != nil {
			return err
		}
	}
	if e.RecomputeVisibility {
		grid.RecomputeVisibility()
	}
	return nil
}

// ApplyEditsToKV6 decodes kv6Bytes, applies the JSON edits and re-encodes.
func ApplyEditsToKV6(kv6Bytes, editsJSON []byte, padding uint8) ([]byte, error) {
	edits, err := ParseEdits(editsJSON)
	if err != nil {
		return nil, err
	}
	grid, err := kv6.Decode(kv6Bytes)
	if err != nil {
		return nil, err
	}
	if err := ApplyEdits(grid, edits); err != nil {
		return nil, err
	}
	return kv6.EncodeWithPadding(grid, padding), nil
}
