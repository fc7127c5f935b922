package utils

import (
	"fmt"
	"os"

	"github.com/voxelsplace/kv6/api"
	"github.com/voxelsplace/kv6/kv6"
	"go.uber.org/zap"
)

// RunUpdateKV6 applies a JSON edits blob to an existing .kv6 file and writes
// the regenerated sprite to outputPath. See api.Edits for the format.
func RunUpdateKV6(editsJSON []byte, inputPath, outputPath string, padding uint8) error {
	edits, err := api.ParseEdits(editsJSON)
	if err != nil {
		return err
	}
	grid, err := kv6.Load(inputPath)
	if err != nil {
		return fmt.Errorf("failed to load input KV6: %w", err)
	}
	if err := api.ApplyEdits(grid, edits); err != nil {
		return err
	}
	if err := kv6.SaveWithPadding(grid, outputPath, padding); err != nil {
		return fmt.Errorf("failed to save KV6: %w", err)
	}
	Logger().Info(".kv6 updated",
		zap.String("path", outputPath),
		zap.Int("set", len(edits.Set)),
		zap.Int("removed", len(edits.Remove)),
		zap.Int("voxels", grid.Len()))
	return nil
}

// RunUpdateKV6File reads the edits from a JSON file.
func RunUpdateKV6File(editsPath, inputPath, outputPath string, padding uint8) error {
	data, err := os.ReadFile(editsPath)
	if err != nil {
		return err
	}
	return RunUpdateKV6(data, inputPath, outputPath, padding)
}

// RunRevis recomputes every visibility mask of a .kv6 file.
func RunRevis(inputPath, outputPath string, padding uint8) error {
	grid, err := kv6.Load(inputPath)
	if err != nil {
		return fmt.Errorf("failed to load input KV6: %w", err)
	}
	grid.RecomputeVisibility()
	if err := kv6.SaveWithPadding(grid, outputPath, padding); err != nil {
		return fmt.Errorf("failed to save KV6: %w", err)
	}
	Logger().Info("visibility recomputed", zap.String("path", outputPath), zap.Int("voxels", grid.Len()))
	return nil
}
