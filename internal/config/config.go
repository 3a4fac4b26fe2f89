// Package config loads catalog settings from a YAML file and the
// environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/roach88/catalog/internal/catalog"
)

// Config holds the settings shared by every command. Precedence, lowest
// first: defaults, config file, CATALOG_* environment variables, flags.
type Config struct {
	DBPath        string `yaml:"db_path" env:"CATALOG_DB_PATH" validate:"required"`
	LogLevel      string `yaml:"log_level" env:"CATALOG_LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat     string `yaml:"log_format" env:"CATALOG_LOG_FORMAT" validate:"oneof=text json"`
	BusyTimeoutMS int    `yaml:"busy_timeout_ms" env:"CATALOG_BUSY_TIMEOUT_MS" validate:"gte=0"`
}

// Dir returns the per-user catalog directory.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(base, "catalog"), nil
}

// Default returns the built-in settings. The database lives in Dir when it
// can be located and in the working directory otherwise.
func Default() Config {
	dbPath := "catalog.db"
	if dir, err := Dir(); err == nil {
		dbPath = filepath.Join(dir, "catalog.db")
	}
	return Config{
		DBPath:        dbPath,
		LogLevel:      "warn",
		LogFormat:     "text",
		BusyTimeoutMS: 5000,
	}
}

// DefaultPath is the config file read when no path is given.
func DefaultPath() string {
	dir, err := Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load builds a Config from defaults, the file at path and the environment.
// An empty path reads DefaultPath if that file exists; an explicit path must
// exist.
func Load(path string) (*Config, error) {
	const op = "load config"
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decode(data, &cfg); err != nil {
				return nil, catalog.NewError(catalog.KindValidation, op, path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return nil, catalog.NewError(catalog.KindIO, op, path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, catalog.NewError(catalog.KindValidation, op, "parse env", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if err := catalog.Validate(op, cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decode(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// BusyTimeout is the SQLite lock wait as a duration.
func (c *Config) BusyTimeout() time.Duration {
	return time.Duration(c.BusyTimeoutMS) * time.Millisecond
}

// Level maps LogLevel to a slog level.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	}
	return slog.LevelWarn
}

// NewLogger builds the logger described by cfg writing to w.
func NewLogger(cfg *Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
