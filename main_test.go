//go:build !(js && wasm)

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxelsplace/kv6/kv6"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseSize(t *testing.T) {
	ext, err := parseSize("8X4x32")
	require.NoError(t, err)
	assert.Equal(t, kv6.Extents{X: 8, Y: 4, Z: 32}, ext)

	_, err = parseSize("8x4")
	assert.Error(t, err)
	_, err = parseSize("8x0x4")
	assert.ErrorIs(t, err, kv6.ErrInvalidExtents)
}

func TestParsePercentage(t *testing.T) {
	lo, hi, err := parsePercentage("30")
	require.NoError(t, err)
	assert.Equal(t, 30.0, lo)
	assert.Equal(t, 30.0, hi)

	lo, hi, err = parsePercentage("10 - 40.5")
	require.NoError(t, err)
	assert.Equal(t, 10.0, lo)
	assert.Equal(t, 40.5, hi)

	_, _, err = parsePercentage("lots")
	assert.Error(t, err)
}

func TestCLI_GenNoisePackUnpackInfo(t *testing.T) {
	dir := t.TempDir()
	sprites := filepath.Join(dir, "sprites")
	_, err := run(t, "gennoise", "25", "2", sprites, "--size", "6x6x6", "--seed", "11", "--padding", "128")
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(sprites, "0.kv6"))
	require.NoError(t, err)
	assert.Equal(t, byte(kv6.LegacyPadding), raw[32+3], "padding flag reaches the encoder")

	packPath := filepath.Join(dir, "all.kv6pack")
	_, err = run(t, "pack", packPath,
		filepath.Join(sprites, "0.kv6"), filepath.Join(sprites, "1.kv6"),
		"--layout", "cdc", "--compression", "zlib")
	require.NoError(t, err)

	data, err := os.ReadFile(packPath)
	require.NoError(t, err)
	_, comp, err := kv6.UnmarshalPack(data)
	require.NoError(t, err)
	assert.Equal(t, kv6.PackCompZlib, comp)

	outDir := filepath.Join(dir, "out")
	_, err = run(t, "unpack", packPath, outDir)
	require.NoError(t, err)
	unpacked, err := os.ReadFile(filepath.Join(outDir, "0.kv6"))
	require.NoError(t, err)
	assert.Equal(t, raw, unpacked)

	out, err := run(t, "info", filepath.Join(outDir, "1.kv6"))
	require.NoError(t, err)
	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.EqualValues(t, 54, info["voxels"])
}

func TestCLI_Errors(t *testing.T) {
	_, err := run(t, "info", filepath.Join(t.TempDir(), "missing.kv6"))
	assert.Error(t, err)

	_, err = run(t, "glb", "only-one-arg")
	assert.Error(t, err)

	_, err = run(t, "info", "x.kv6", "--log-level", "shouty")
	assert.Error(t, err)
}
