//go:build !(js && wasm)

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/voxelsplace/kv6/config"
	"github.com/voxelsplace/kv6/kv6"
	"github.com/voxelsplace/kv6/utils"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := config.New()
	var (
		cfgPath string
		cfg     *config.Config
		log     *zap.Logger
	)

	root := &cobra.Command{
		Use:           "kv6tool",
		Short:         "Inspect, edit, export and pack KV6 voxel sprites",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(v, cfgPath); err != nil {
				return err
			}
			if log, err = config.NewLogger(cfg); err != nil {
				return err
			}
			kv6.SetLogger(log)
			utils.SetLogger(log)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if log != nil {
				_ = log.Sync()
			}
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&cfgPath, "config", "", "config file (yaml, json or toml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.Bool("log-development", false, "human readable console logs")
	flags.Int("padding", 0, "reserved byte written into every voxel record (128 for legacy tools)")
	mustBind(v, "log_level", flags.Lookup("log-level"))
	mustBind(v, "log_development", flags.Lookup("log-development"))
	mustBind(v, "padding", flags.Lookup("padding"))

	root.AddCommand(
		&cobra.Command{
			Use:   "info <input.kv6>",
			Short: "Print a JSON summary of a sprite",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return utils.RunInfo(args[0], cmd.OutOrStdout())
			},
		},
		&cobra.Command{
			Use:   "glb <input.kv6> <output.glb>",
			Short: "Export voxel centers as a colored glTF point cloud",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return utils.RunKV62GLB(args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "update <input.kv6> <edits.json> <output.kv6>",
			Short: "Apply JSON voxel edits",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				return utils.RunUpdateKV6File(args[1], args[0], args[2], cfg.Padding)
			},
		},
		&cobra.Command{
			Use:   "revis <input.kv6> <output.kv6>",
			Short: "Recompute every visibility mask",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return utils.RunRevis(args[0], args[1], cfg.Padding)
			},
		},
		newPackCommand(v, &cfg),
		&cobra.Command{
			Use:   "unpack <input.kv6pack> <output_dir>",
			Short: "Extract every sprite of a pack",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return utils.UnpackToDir(args[0], args[1])
			},
		},
		newNoiseCommand(&cfg),
	)
	return root
}

func newPackCommand(v *viper.Viper, cfg **config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack <output.kv6pack> <input1.kv6> [input2.kv6 ...]",
		Short: "Bundle sprites into a single pack",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := *cfg
			return utils.CreatePack(args[1:], args[0], c.PackLayout, c.PackCompression)
		},
	}
	cmd.Flags().String("compression", "zstd", "content compression (none, zlib, zstd)")
	cmd.Flags().String("layout", "raw", "entry layout (raw, cdc)")
	mustBind(v, "pack.compression", cmd.Flags().Lookup("compression"))
	mustBind(v, "pack.layout", cmd.Flags().Lookup("layout"))
	return cmd
}

func newNoiseCommand(cfg **config.Config) *cobra.Command {
	var (
		size string
		seed int64
	)
	cmd := &cobra.Command{
		Use:   "gennoise <percentage|min-max> <amount> <output_dir>",
		Short: "Generate random sprites with a fixed or ranged fill percentage",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			lo, hi, err := parsePercentage(args[0])
			if err != nil {
				return err
			}
			amount, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("amount: %w", err)
			}
			ext, err := parseSize(size)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("seed") {
				seed = time.Now().UnixNano()
			}
			return utils.RunGenerateNoiseKV6Range(ext, lo, hi, amount, args[2], seed, (*cfg).Padding)
		},
	}
	cmd.Flags().StringVar(&size, "size", "16x16x16", "sprite extents XxYxZ")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default: current time)")
	return cmd
}

func parseSize(s string) (kv6.Extents, error) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 3 {
		return kv6.Extents{}, fmt.Errorf("size %q: want XxYxZ", s)
	}
	var dims [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return kv6.Extents{}, fmt.Errorf("size %q: %w", s, err)
		}
		dims[i] = n
	}
	ext := kv6.Extents{X: dims[0], Y: dims[1], Z: dims[2]}
	return ext, ext.Validate()
}

// parsePercentage accepts "30" or a range "10-40".
func parsePercentage(s string) (lo, hi float64, err error) {
	a, b, isRange := strings.Cut(s, "-")
	if lo, err = strconv.ParseFloat(strings.TrimSpace(a), 64); err != nil {
		return 0, 0, fmt.Errorf("percentage %q: %w", s, err)
	}
	if !isRange {
		return lo, lo, nil
	}
	if hi, err = strconv.ParseFloat(strings.TrimSpace(b), 64); err != nil {
		return 0, 0, fmt.Errorf("percentage %q: %w", s, err)
	}
	return lo, hi, nil
}

func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}
