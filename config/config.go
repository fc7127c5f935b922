// Package config loads kv6tool settings from an optional file, the
// environment (KV6TOOL_*) and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/voxelsplace/kv6/kv6"
)

// EnvPrefix prefixes every environment override, e.g. KV6TOOL_PACK_COMPRESSION.
const EnvPrefix = "KV6TOOL"

// Config is the validated tool configuration.
type Config struct {
	LogLevel       string
	LogDevelopment bool
	// Padding is written into the reserved byte of every voxel record.
	Padding         uint8
	PackCompression kv6.PackCompression
	PackLayout      kv6.PackLayout
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("log_level", "info")
	v.SetDefault("log_development", false)
	v.SetDefault("padding", 0)
	v.SetDefault("pack.compression", "zstd")
	v.SetDefault("pack.layout", "raw")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path (if not empty) into v and returns the validated Config.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return FromViper(v)
}

// FromViper validates the settings held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		LogLevel:       v.GetString("log_level"),
		LogDevelopment: v.GetBool("log_development"),
	}
	var errs []error
	pad := v.GetInt("padding")
	if pad < 0 || pad > 255 {
		errs = append(errs, fmt.Errorf("padding %d outside 0..255", pad))
	}
	cfg.Padding = uint8(pad)
	comp, err := kv6.ParsePackCompression(v.GetString("pack.compression"))
	if err != nil {
		errs = append(errs, err)
	}
	cfg.PackCompression = comp
	layout, err := kv6.ParsePackLayout(v.GetString("pack.layout"))
	if err != nil {
		errs = append(errs, err)
	}
	cfg.PackLayout = layout
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
