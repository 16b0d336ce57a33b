// Package config loads tool configuration from a YAML file, the environment
// and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"tinymerge/internal/tiny"
)

// EnvPrefix prefixes environment overrides, e.g. TINYMERGE_CACHE_SIZE.
const EnvPrefix = "TINYMERGE"

// Sentinel validation errors.
var (
	ErrInvalidCacheSize = errors.New("cache size must be positive")
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrInvalidLogFormat = errors.New("invalid log format")
	ErrInvalidFormat    = errors.New("invalid output format")
	ErrEmptyNamespace   = errors.New("namespace names must not be empty")
)

const defaultCacheSize = 16

// Config holds all configuration for tinymerge.
type Config struct {
	Namespaces NamespaceConfig `mapstructure:"namespaces"`
	Cache      CacheConfig     `mapstructure:"cache"`
	Logging    LoggingConfig   `mapstructure:"logging"`
	External   ExternalConfig  `mapstructure:"external"`
	Output     OutputConfig    `mapstructure:"output"`
}

// NamespaceConfig names the namespaces the pipeline works with.
type NamespaceConfig struct {
	Source       string `mapstructure:"source"`
	Intermediate string `mapstructure:"intermediate"`
	Named        string `mapstructure:"named"`
}

// CacheConfig holds parsed-table cache settings.
type CacheConfig struct {
	Size    int  `mapstructure:"size"`
	Refresh bool `mapstructure:"refresh"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ExternalConfig holds command templates for external tools. An empty
// template disables the tool.
type ExternalConfig struct {
	Proposer  string `mapstructure:"proposer"`
	Reorderer string `mapstructure:"reorderer"`
}

// OutputConfig holds output settings.
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// Load loads configuration from configPath (or tinymerge.yaml in . and
// ./config when empty), the environment and a .env file in the working
// directory. Environment variables win over the file.
func Load(configPath string) (*Config, error) {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("tinymerge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := v.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("namespaces.source", NsOfficial)
	v.SetDefault("namespaces.intermediate", NsHashed)
	v.SetDefault("namespaces.named", NsNamed)

	v.SetDefault("cache.size", defaultCacheSize)
	v.SetDefault("cache.refresh", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("external.proposer", "")
	v.SetDefault("external.reorderer", "")

	v.SetDefault("output.format", "v2")
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.Namespaces.Source == "" || c.Namespaces.Intermediate == "" || c.Namespaces.Named == "" {
		return ErrEmptyNamespace
	}

	if c.Cache.Size <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCacheSize, c.Cache.Size)
	}

	if _, err := c.Logging.SlogLevel(); err != nil {
		return err
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	if _, err := tiny.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}

	return nil
}

// OutputFormat returns the parsed output format.
func (c *Config) OutputFormat() tiny.Format {
	f, err := tiny.ParseFormat(c.Output.Format)
	if err != nil {
		return tiny.FormatV2
	}

	return f
}

// SlogLevel parses the configured level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
	}
}

// NewLogger builds a logger writing to w with the configured level and
// format.
func (l LoggingConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := l.SlogLevel()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}

	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}

	return slog.New(slog.NewTextHandler(w, opts)), nil
}
