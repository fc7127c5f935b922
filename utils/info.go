package utils

import (
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/voxelsplace/kv6/api"
	"github.com/voxelsplace/kv6/kv6"
)

// RunInfo decodes a .kv6 file and writes its summary as indented JSON to w.
func RunInfo(inPath string, w io.Writer) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	grid, err := kv6.Decode(data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", inPath, err)
	}
	out, err := json.MarshalIndent(api.Describe(grid, len(data)), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
