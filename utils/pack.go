package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/voxelsplace/kv6/kv6"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CreatePack reads .kv6 files in parallel and writes a pack to outputFile.
// Entries are named by file base name, which must be unique.
func CreatePack(inputFiles []string, outputFile string, layout kv6.PackLayout, comp kv6.PackCompression) error {
	if len(inputFiles) == 0 {
		return fmt.Errorf("no .kv6 files provided")
	}
	entries := make([]kv6.PackEntry, len(inputFiles))
	var g errgroup.Group
	for i, path := range inputFiles {
		i, path := i, path
		g.Go(func() error {
			b, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if _, err := kv6.ParseHeader(b); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			entries[i] = kv6.PackEntry{Name: filepath.Base(path), Data: b}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	pack := &kv6.Pack{Entries: entries}
	start := time.Now()
	data, err := pack.MarshalEx(layout, comp)
	if err != nil {
		return err
	}
	Logger().Info("pack built",
		zap.Int("entries", len(entries)),
		zap.Stringer("layout", layout),
		zap.Stringer("compression", comp),
		zap.Int("bytes", len(data)),
		zap.Duration("took", time.Since(start)))
	return os.WriteFile(outputFile, data, 0o644)
}

// UnpackToDir writes the .kv6 entries of a pack into outputDir.
func UnpackToDir(packFile, outputDir string) error {
	pack, err := readPack(packFile)
	if err != nil {
		return err
	}
	// entry names come from the pack; never let them escape outputDir
	paths := make([]string, len(pack.Entries))
	owner := make(map[string]string, len(pack.Entries))
	for i, e := range pack.Entries {
		name := filepath.Base(filepath.Clean("/" + e.Name))
		if name == "/" || name == "." {
			return fmt.Errorf("invalid entry name %q", e.Name)
		}
		if prev, dup := owner[name]; dup {
			return fmt.Errorf("entries %q and %q both unpack to %s", prev, e.Name, name)
		}
		owner[name] = e.Name
		paths[i] = filepath.Join(outputDir, name)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	var g errgroup.Group
	for i, e := range pack.Entries {
		i, e := i, e
		g.Go(func() error {
			return os.WriteFile(paths[i], e.Data, 0o644)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	Logger().Info("pack unpacked", zap.String("dir", outputDir), zap.Int("entries", len(pack.Entries)))
	return nil
}

// UnpackToMemory returns names and raw .kv6 bytes without writing to disk.
func UnpackToMemory(packFile string) ([]string, [][]byte, error) {
	pack, err := readPack(packFile)
	if err != nil {
		return nil, nil, err
	}
	names := make([]string, len(pack.Entries))
	blobs := make([][]byte, len(pack.Entries))
	for i, e := range pack.Entries {
		names[i] = e.Name
		blobs[i] = e.Data
	}
	return names, blobs, nil
}

func readPack(packFile string) (*kv6.Pack, error) {
	data, err := os.ReadFile(packFile)
	if err != nil {
		return nil, err
	}
	pack, _, err := kv6.UnmarshalPack(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", packFile, err)
	}
	return pack, nil
}
