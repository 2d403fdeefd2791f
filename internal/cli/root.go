// Package cli wires configuration, logging and reporting around a batch run.
package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"batchOptimize/internal/config"
	"batchOptimize/internal/display"
	"batchOptimize/internal/logging"
	"batchOptimize/internal/optimize"
)

// version is set at build time with -ldflags "-X batchOptimize/internal/cli.version=...".
var version = "dev"

// flagKeys maps command-line flags to their configuration keys.
var flagKeys = map[string]string{
	"quality":        "quality",
	"max-dimension":  "max_dimension",
	"workers":        "workers",
	"auto-orient":    "auto_orient",
	"preserve-exif":  "preserve_exif",
	"preserve-mtime": "preserve_mtime",
	"color":          "color",
	"log-level":      "log_level",
	"log-file":       "log_file",
}

// NewRootCmd builds the optimize command with its own configuration state.
func NewRootCmd() *cobra.Command {
	v := config.NewViper()
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "optimize <inputDir> <outputDir> [quality] [maxDimension] [maxWorkers]",
		Short: "Batch-optimize a folder of images into resized JPEGs",
		Long: `optimize converts every JPEG, PNG and WEBP image directly inside inputDir
into a downscaled JPEG in outputDir, keeping the original file name.

Images are processed in parallel. quality defaults to 85, maxDimension (the
longest side in pixels) to 1920, and maxWorkers to "auto", which sizes the
pool from the number of CPUs.

Settings can also come from a YAML config file, OPTIMIZE_* environment
variables or flags; positional arguments take precedence over all of them.`,
		Version: version,
		Args:    cobra.RangeArgs(2, 5),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run(cmd, v, args)
		},
	}

	f := cmd.Flags()
	f.StringP("config", "c", "", "config file (default is $HOME/.config/optimize/optimize.yaml)")
	f.IntP("quality", "q", defaults.Quality, "JPEG quality (0-100)")
	f.IntP("max-dimension", "m", defaults.MaxDimension, "maximum length of the longer side in pixels")
	f.StringP("workers", "w", "auto", `number of parallel workers, or "auto"`)
	f.Bool("auto-orient", defaults.AutoOrient, "rotate images upright according to EXIF orientation")
	f.Bool("preserve-exif", defaults.PreserveEXIF, "copy EXIF metadata into the output")
	f.Bool("preserve-mtime", defaults.PreserveModTime, "copy the source modification time onto the output")
	f.String("color", defaults.Color, "colorize output: auto, always or never")
	f.String("log-level", defaults.LogLevel, "diagnostic log level: DEBUG, INFO, WARN or ERROR")
	f.String("log-file", "", "append JSON diagnostics to this file instead of stderr")

	bindFlags(v, f)
	return cmd
}

// bindFlags lets explicitly set flags override file and environment values.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	for name, key := range flagKeys {
		if fl := fs.Lookup(name); fl != nil {
			_ = v.BindPFlag(key, fl)
		}
	}
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func run(cmd *cobra.Command, v *viper.Viper, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	if err := config.ReadFile(v, cfgFile); err != nil {
		return err
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	if err := cfg.ApplyArgs(args); err != nil {
		return err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return config.ValidationErrors(errs)
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	out := cmd.OutOrStdout()
	runner := &optimize.Runner{
		Observer: display.NewConsole(out, display.ColorEnabled(cfg.Color, out)),
		Logger:   logger,
	}
	_, err = runner.Run(cfg)
	return err
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (*logging.Logger, error) {
	if cfg.LogFile == "" {
		return logging.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel), nil
	}
	return logging.New(cfg.LogFile, cfg.LogLevel)
}
