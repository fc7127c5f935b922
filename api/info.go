package api

import (
	"math"

	json "github.com/goccy/go-json"
	"github.com/voxelsplace/kv6/kv6"
)

// Info summarizes a decoded sprite.
type Info struct {
	Extents         [3]int     `json:"extents"`
	Pivot           [3]float64 `json:"pivot"`
	Voxels          int        `json:"voxels"`
	Columns         int        `json:"columns"`
	OccupiedColumns int        `json:"occupied_columns"`
	MaxColumn       int        `json:"max_column"`
	Bytes           int        `json:"bytes"`
}

// Describe gathers Info for a grid that was decoded from size bytes.
func Describe(grid *kv6.Grid, size int) Info {
	ext := grid.Extents()
	info := Info{
		Extents: [3]int{ext.X, ext.Y, ext.Z},
		Pivot:   [3]float64{jsonFloat(grid.Pivot.X), jsonFloat(grid.Pivot.Y), jsonFloat(grid.Pivot.Z)},
		Voxels:  grid.Len(),
		Columns: ext.X * ext.Y,
		Bytes:   size,
	}
	for x := 0; x < ext.X; x++ {
		for y := 0; y < ext.Y; y++ {
			n := len(grid.Column(x, y))
			if n > 0 {
				info.OccupiedColumns++
			}
			if n > info.MaxColumn {
				info.MaxColumn = n
			}
		}
	}
	return info
}

// JSON has no NaN or Inf; those pivots are reported as 0.
func jsonFloat(f float32) float64 {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// KV6Info decodes kv6Bytes and returns its Info as JSON.
func KV6Info(kv6Bytes []byte) ([]byte, error) {
	grid, err := kv6.Decode(kv6Bytes)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Describe(grid, len(kv6Bytes)))
}
