package api

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/voxelsplace/kv6/kv6"
)

// KV6ToGLB takes .kv6 file bytes and returns a .glb holding one point per
// voxel center, colored per vertex. The node is translated by -pivot so the
// sprite's logical origin sits at the scene origin.
func KV6ToGLB(kv6Bytes []byte) ([]byte, error) {
	grid, err := kv6.Decode(kv6Bytes)
	if err != nil {
		return nil, err
	}
	doc, err := GridToDocument(grid, "KV6 -> GLB")
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	enc := gltf.NewEncoder(&out)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// GridToDocument builds a glTF document with a single POINTS primitive.
func GridToDocument(grid *kv6.Grid, generator string) (*gltf.Document, error) {
	if grid.Len() == 0 {
		return nil, fmt.Errorf("empty sprite: nothing to export")
	}
	positions := make([][3]float32, 0, grid.Len())
	colors := make([][4]float32, 0, grid.Len())
	grid.Each(func(x, y int, v kv6.Voxel) bool {
		positions = append(positions, [3]float32{float32(x) + 0.5, float32(y) + 0.5, float32(v.Z) + 0.5})
		colors = append(colors, [4]float32{
			float32(v.Color.R) / 255,
			float32(v.Color.G) / 255,
			float32(v.Color.B) / 255,
			1,
		})
		return true
	})

	doc := gltf.NewDocument()
	doc.Asset.Generator = generator
	posAccessor := modeler.WritePosition(doc, positions)
	colorAccessor := modeler.WriteColor(doc, colors)
	prim := &gltf.Primitive{
		Attributes: map[string]uint32{
			gltf.POSITION: uint32(posAccessor),
			gltf.COLOR_0:  uint32(colorAccessor),
		},
		Mode: gltf.PrimitivePoints,
	}
	pbr := &gltf.PBRMetallicRoughness{BaseColorFactor: &[4]float32{1, 1, 1, 1}, MetallicFactor: gltf.Float(0), RoughnessFactor: gltf.Float(1)}
	doc.Materials = []*gltf.Material{{PBRMetallicRoughness: pbr, AlphaMode: gltf.AlphaOpaque}}
	prim.Material = gltf.Index(0)
	doc.Meshes = []*gltf.Mesh{{Name: "Sprite", Primitives: []*gltf.Primitive{prim}}}
	node := &gltf.Node{Mesh: gltf.Index(0)}
	node.Translation = [3]float32{-grid.Pivot.X, -grid.Pivot.Y, -grid.Pivot.Z}
	doc.Nodes = []*gltf.Node{node}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(0))
	return doc, nil
}

// PackKV6s builds a pack from file blobs keyed by name. Entries are stored
// in name order so equal inputs give equal packs.
func PackKV6s(files map[string][]byte, layout kv6.PackLayout, comp kv6.PackCompression) ([]byte, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files")
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	pack := &kv6.Pack{Entries: make([]kv6.PackEntry, len(names))}
	for i, name := range names {
		pack.Entries[i] = kv6.PackEntry{Name: name, Data: files[name]}
	}
	return pack.MarshalEx(layout, comp)
}

// UnpackKV6PackToMemory returns a map of entry name -> .kv6 bytes.
func UnpackKV6PackToMemory(packBytes []byte) (map[string][]byte, error) {
	pack, _, err := kv6.UnmarshalPack(packBytes)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(pack.Entries))
	for _, e := range pack.Entries {
		out[e.Name] = e.Data
	}
	return out, nil
}

// RecomputeVisibilityKV6 decodes, recomputes every face mask and re-encodes.
func RecomputeVisibilityKV6(kv6Bytes []byte, padding uint8) ([]byte, error) {
	grid, err := kv6.Decode(kv6Bytes)
	if err != nil {
		return nil, err
	}
	grid.RecomputeVisibility()
	return kv6.EncodeWithPadding(grid, padding), nil
}
