package utils

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/voxelsplace/kv6/kv6"
	"go.uber.org/zap"
)

// generateNoiseGrid fills a grid with the given percentage of random voxels
// and recomputes their visibility. Colors and normal indices are random.
func generateNoiseGrid(ext kv6.Extents, percentage float64, r *rand.Rand) (*kv6.Grid, error) {
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}
	pivot := kv6.Pivot{X: float32(ext.X) / 2, Y: float32(ext.Y) / 2, Z: float32(ext.Z) / 2}
	grid, err := kv6.NewGrid(ext, pivot)
	if err != nil {
		return nil, err
	}
	total := ext.X * ext.Y * ext.Z
	want := int(float64(total)*(percentage/100.0) + 0.5)
	if want > total {
		want = total
	}

	// Partial Fisher-Yates over linear indices: only the first 'want' are drawn.
	idx := make([]int, total)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < want; i++ {
		j := i + r.Intn(total-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	for _, i := range idx[:want] {
		x := i / (ext.Y * ext.Z)
		y := (i / ext.Z) % ext.Y
		z := i % ext.Z
		v := kv6.Voxel{
			Color:  kv6.Color{R: uint8(r.Intn(256)), G: uint8(r.Intn(256)), B: uint8(r.Intn(256))},
			Normal: uint8(r.Intn(256)),
		}
		if err := grid.Set(x, y, z, v); err != nil {
			return nil, err
		}
	}
	grid.RecomputeVisibility()
	return grid, nil
}

// RunGenerateNoiseKV6 writes 'amount' sprites named 0.kv6..(amount-1).kv6
// into outDir, each with the given fill percentage. Files are reproducible
// for a given seed.
func RunGenerateNoiseKV6(ext kv6.Extents, percentage float64, amount int, outDir string, seed int64, padding uint8) error {
	return RunGenerateNoiseKV6Range(ext, percentage, percentage, amount, outDir, seed, padding)
}

// RunGenerateNoiseKV6Range is RunGenerateNoiseKV6 with a fill percentage drawn
// per file from [percentageMin, percentageMax].
func RunGenerateNoiseKV6Range(ext kv6.Extents, percentageMin, percentageMax float64, amount int, outDir string, seed int64, padding uint8) error {
	if err := ext.Validate(); err != nil {
		return err
	}
	if amount < 0 {
		amount = 0
	}
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	if percentageMax < percentageMin {
		percentageMin, percentageMax = percentageMax, percentageMin
	}
	for i := 0; i < amount; i++ {
		const weyl = uint64(0x9e3779b97f4a7c15)
		s := uint64(seed) ^ (uint64(i)+1)*weyl
		r := rand.New(rand.NewSource(int64(s & 0x7fffffffffffffff)))

		perc := percentageMin
		if percentageMax > percentageMin {
			perc += r.Float64() * (percentageMax - percentageMin)
		}
		grid, err := generateNoiseGrid(ext, perc, r)
		if err != nil {
			return err
		}
		path := filepath.Join(outDir, fmt.Sprintf("%d.kv6", i))
		if err := kv6.SaveWithPadding(grid, path, padding); err != nil {
			return fmt.Errorf("failed to save %s: %w", path, err)
		}
		Logger().Debug("noise sprite written",
			zap.String("path", path),
			zap.Float64("percentage", perc),
			zap.Int("voxels", grid.Len()))
	}
	Logger().Info("noise sprites generated", zap.Int("amount", amount), zap.String("dir", outDir))
	return nil
}
