// Package config loads lsgconv settings from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/pspoerri/lsgconv/internal/grid"
)

const maxFileSize = 1 << 20

// Config is the full set of settings. Zero values in a file fall back to Default.
type Config struct {
	Grid   GridConfig   `yaml:"grid"`
	Server ServerConfig `yaml:"server"`
	Batch  BatchConfig  `yaml:"batch"`
	Log    LogConfig    `yaml:"log"`
}

// GridConfig locates the correction grid.
type GridConfig struct {
	Path  string `yaml:"path"`  // OSTN15 CSV or SQLite store
	Width int    `yaml:"width"` // nodes per row
	Watch bool   `yaml:"watch"` // reload when the file changes
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Listen       string        `yaml:"listen"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

// BatchConfig tunes batch conversion.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// LogConfig sets the zap log level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Grid: GridConfig{
			Path:  "ostn15.csv",
			Width: grid.OSTN15Width,
		},
		Server: ServerConfig{
			Listen:       ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			MaxBodyBytes: 64 << 10,
		},
		Batch: BatchConfig{Concurrency: runtime.NumCPU()},
		Log:   LogConfig{Level: "info"},
	}
}

// Load reads a YAML config file over Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	clean := filepath.Clean(path)
	switch ext := strings.ToLower(filepath.Ext(clean)); ext {
	case ".yaml", ".yml":
	default:
		return cfg, fmt.Errorf("config file must have .yaml or .yml extension, got %q", ext)
	}

	fi, err := os.Stat(clean)
	if err != nil {
		return cfg, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fi.Size() > maxFileSize {
		return cfg, fmt.Errorf("config file too large: %d bytes (max %d)", fi.Size(), maxFileSize)
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", clean, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration in %s: %w", clean, err)
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs *multierror.Error
	if c.Grid.Path == "" {
		errs = multierror.Append(errs, fmt.Errorf("grid.path is required"))
	}
	if c.Grid.Width < 2 {
		errs = multierror.Append(errs, fmt.Errorf("grid.width must be at least 2, got %d", c.Grid.Width))
	}
	if c.Server.Listen == "" {
		errs = multierror.Append(errs, fmt.Errorf("server.listen is required"))
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		errs = multierror.Append(errs, fmt.Errorf("server timeouts must not be negative"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes))
	}
	if c.Batch.Concurrency < 1 {
		errs = multierror.Append(errs, fmt.Errorf("batch.concurrency must be at least 1, got %d", c.Batch.Concurrency))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errs.ErrorOrNil()
}

// LogLevel parses Log.Level.
func (c Config) LogLevel() (zapcore.Level, error) {
	return zapcore.ParseLevel(c.Log.Level)
}
