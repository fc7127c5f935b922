package kv6

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileIndex_Spans(t *testing.T) {
	ext := Extents{X: 2, Y: 3, Z: 8}
	ylen := []uint16{1, 0, 2, 0, 3, 1}
	ci, err := reconcileIndex(ext, []uint32{3, 4}, ylen, 7)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), ci.Total())

	spans := [][2]int{}
	for x := 0; x < ext.X; x++ {
		for y := 0; y < ext.Y; y++ {
			s, n := ci.Span(x, y)
			spans = append(spans, [2]int{s, n})
		}
	}
	assert.Equal(t, [][2]int{{0, 1}, {1, 0}, {1, 2}, {3, 0}, {3, 3}, {6, 1}}, spans)
}

func TestReconcileIndex_Mismatch(t *testing.T) {
	ext := Extents{X: 2, Y: 2, Z: 4}
	tests := []struct {
		name  string
		xlen  []uint32
		ylen  []uint16
		total uint32
	}{
		{"x-table disagrees", []uint32{2, 1}, []uint16{1, 1, 1, 1}, 4},
		{"header total too small", []uint32{2, 2}, []uint16{1, 1, 1, 1}, 3},
		{"header total too large", []uint32{2, 2}, []uint16{1, 1, 1, 1}, 5},
		{"short xy-table", []uint32{2, 2}, []uint16{1, 1, 1}, 4},
		{"short x-table", []uint32{4}, []uint16{1, 1, 1, 1}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reconcileIndex(ext, tt.xlen, tt.ylen, tt.total)
			assert.ErrorIs(t, err, ErrInconsistentOffsets)
		})
	}
}

func TestIndexGrid_MatchesColumns(t *testing.T) {
	g, err := NewGrid(Extents{X: 3, Y: 2, Z: 5}, Pivot{})
	require.NoError(t, err)
	require.NoError(t, g.Set(2, 1, 4, Voxel{}))
	require.NoError(t, g.Set(2, 1, 0, Voxel{}))
	require.NoError(t, g.Set(0, 1, 3, Voxel{}))

	ci := BuildIndex(g)
	assert.Equal(t, []uint32{1, 0, 2}, ci.XLen)
	assert.Equal(t, []uint16{0, 1, 0, 0, 0, 2}, ci.YLen)
	assert.Equal(t, uint32(3), ci.Total())

	// the builder output must be accepted by the reader side
	_, err = reconcileIndex(g.Extents(), ci.XLen, ci.YLen, ci.Total())
	assert.NoError(t, err)
}
