package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxelsplace/kv6/kv6"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogDevelopment)
	assert.Equal(t, uint8(0), cfg.Padding)
	assert.Equal(t, kv6.PackCompZstd, cfg.PackCompression)
	assert.Equal(t, kv6.LayoutRaw, cfg.PackLayout)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv6tool.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\npadding: 128\npack:\n  compression: zlib\n  layout: cdc\n"), 0o644))

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, uint8(kv6.LegacyPadding), cfg.Padding)
	assert.Equal(t, kv6.PackCompZlib, cfg.PackCompression)
	assert.Equal(t, kv6.LayoutCDC, cfg.PackLayout)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("KV6TOOL_PACK_LAYOUT", "cdc")
	t.Setenv("KV6TOOL_PADDING", "128")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, kv6.LayoutCDC, cfg.PackLayout)
	assert.Equal(t, uint8(128), cfg.Padding)
}

func TestLoad_Invalid(t *testing.T) {
	v := New()
	v.Set("padding", 300)
	v.Set("pack.compression", "lz4")
	v.Set("log_level", "loud")

	_, err := FromViper(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "padding 300")
	assert.Contains(t, err.Error(), "lz4")
	assert.Contains(t, err.Error(), "invalid log level")

	_, err = Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger(&Config{LogLevel: "warn"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(-1))
	assert.True(t, log.Core().Enabled(1))

	_, err = NewLogger(&Config{LogLevel: "chatty"})
	assert.Error(t, err)
}
