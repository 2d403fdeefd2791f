// Package config resolves the settings of an optimize run.
//
// Values are layered with viper, lowest precedence first: built-in
// defaults, an optional YAML file, OPTIMIZE_* environment variables,
// command-line flags, and finally the positional arguments.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the resolved settings for one run.
type Config struct {
	InputDir  string `mapstructure:"input_dir"`
	OutputDir string `mapstructure:"output_dir"`

	Quality      int `mapstructure:"quality"`
	MaxDimension int `mapstructure:"max_dimension"`
	// Workers is the pool size; 0 selects the automatic size.
	Workers int `mapstructure:"-"`

	AutoOrient      bool `mapstructure:"auto_orient"`
	PreserveEXIF    bool `mapstructure:"preserve_exif"`
	PreserveModTime bool `mapstructure:"preserve_mtime"`

	// Color is one of auto, always, never.
	Color    string `mapstructure:"color"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Quality:      85,
		MaxDimension: 1920,
		Workers:      0,
		AutoOrient:   true,
		Color:        "auto",
		LogLevel:     "INFO",
	}
}

// SetDefaults registers the built-in settings on v.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("input_dir", "")
	v.SetDefault("output_dir", "")
	v.SetDefault("quality", defaults.Quality)
	v.SetDefault("max_dimension", defaults.MaxDimension)
	v.SetDefault("workers", "auto")
	v.SetDefault("auto_orient", defaults.AutoOrient)
	v.SetDefault("preserve_exif", defaults.PreserveEXIF)
	v.SetDefault("preserve_mtime", defaults.PreserveModTime)
	v.SetDefault("color", defaults.Color)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_file", "")
}

// NewViper returns a viper instance carrying the defaults and reading
// OPTIMIZE_* environment variables (OPTIMIZE_MAX_DIMENSION for max_dimension).
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("OPTIMIZE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile loads cfgFile into v. With an empty cfgFile, optimize.yaml is
// looked up in Dir() and the working directory; not finding one is fine.
// An explicitly named file must exist.
func ReadFile(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
		return nil
	}

	v.SetConfigName("optimize")
	v.SetConfigType("yaml")
	v.AddConfigPath(Dir())
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Load builds a Config from v. It does not validate; positional arguments
// are applied afterwards.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	workers, err := ParseWorkers(v.GetString("workers"))
	if err != nil {
		return nil, err
	}
	cfg.Workers = workers
	return &cfg, nil
}

// ParseWorkers parses a worker count. "auto" or an empty string yields 0,
// meaning the pool picks its own size.
func ParseWorkers(s string) (int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "auto" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, ValidationError{Field: "workers", Value: s, Message: `must be a positive integer or "auto"`}
	}
	return n, nil
}

// ApplyArgs overlays the positional arguments
// <inputDir> <outputDir> [quality] [maxDimension] [maxWorkers] onto c.
// All malformed values are reported together.
func (c *Config) ApplyArgs(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("expected at least 2 arguments, got %d", len(args))
	}
	c.InputDir = args[0]
	c.OutputDir = args[1]

	var errs ValidationErrors
	intArg := func(i int, field string, dst *int) {
		if len(args) <= i {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(args[i]))
		if err != nil {
			errs = append(errs, ValidationError{Field: field, Value: args[i], Message: "must be an integer"})
			return
		}
		*dst = n
	}
	intArg(2, "quality", &c.Quality)
	intArg(3, "max_dimension", &c.MaxDimension)

	if len(args) > 4 {
		n, err := ParseWorkers(args[4])
		if err != nil {
			var ve ValidationError
			if errors.As(err, &ve) {
				errs = append(errs, ve)
			}
		} else {
			c.Workers = n
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Dir returns the user's config directory for optimize.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "optimize")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".optimize"
	}
	return filepath.Join(home, ".config", "optimize")
}
