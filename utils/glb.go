package utils

import (
	"fmt"
	"os"

	"github.com/qmuntal/gltf"
	"github.com/voxelsplace/kv6/api"
	"github.com/voxelsplace/kv6/kv6"
	"go.uber.org/zap"
)

// RunKV62GLB converts a .kv6 sprite into a point-cloud .glb.
func RunKV62GLB(inPath, outPath string) error {
	grid, err := kv6.Load(inPath)
	if err != nil {
		return fmt.Errorf("load %s: %w", inPath, err)
	}
	doc, err := api.GridToDocument(grid, "KV6 -> GLB")
	if err != nil {
		return err
	}
	if err := gltf.SaveBinary(doc, outPath); err != nil {
		return fmt.Errorf("save %s: %w", outPath, err)
	}
	if fi, err := os.Stat(outPath); err == nil {
		Logger().Info(".glb saved", zap.String("path", outPath), zap.Int64("bytes", fi.Size()), zap.Int("points", grid.Len()))
	}
	return nil
}
