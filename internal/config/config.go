// Package config loads application configuration the same way for the
// CLI and the server: YAML file first, environment variables on top,
// struct-tag defaults underneath.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"examstats/pkg/contracts/domain"
)

// envPrefix namespaces the environment overrides.
const envPrefix = "EXAMSTATS"

// Config is the complete application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
}

// ServerConfig contains the HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
}

// AnalysisConfig carries the per-run defaults a request may override.
type AnalysisConfig struct {
	// Percentile is the default upper/lower split for discrimination.
	Percentile float64 `yaml:"percentile" envconfig:"PERCENTILE" default:"0.25" validate:"gt=0,lte=0.5"`
	// Ratio is the exam's default weight in the term grade.
	Ratio float64 `yaml:"ratio" envconfig:"RATIO" default:"1.0" validate:"gt=0,lte=1"`
	// Bands is the default cut-score band set; empty selects the
	// five-level convention.
	Bands domain.BandSet `yaml:"bands" envconfig:"-"`
}

// Load builds the configuration from an optional YAML file path and
// the environment. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	var cfg Config

	// Defaults and env come from envconfig; the file is applied in
	// between so env always wins.
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("process defaults: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		if err := envconfig.Process(envPrefix, &cfg); err != nil {
			return nil, fmt.Errorf("apply env overrides: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration, including the band set when one
// is configured.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if len(c.Analysis.Bands) > 0 {
		if err := c.Analysis.Bands.Validate(0); err != nil {
			return fmt.Errorf("validate config bands: %w", err)
		}
	}
	return nil
}

// BandSet returns the configured band set, falling back to the
// five-level default.
func (c *Config) BandSet() domain.BandSet {
	if len(c.Analysis.Bands) > 0 {
		return c.Analysis.Bands
	}
	return domain.DefaultBandSet()
}

// NewLogger constructs the process logger from the logging settings.
func (c *Config) NewLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if c.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
