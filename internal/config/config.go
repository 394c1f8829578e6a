// Package config loads service configuration from an optional TOML
// file with environment-variable overrides on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v10"

	"github.com/copyleftdev/RAVINE/internal/logging"
)

type Config struct {
	Environment string `toml:"environment" env:"ENV"`

	HTTP struct {
		Port            int           `toml:"port" env:"HTTP_PORT"`
		ReadTimeout     time.Duration `toml:"read_timeout" env:"HTTP_READ_TIMEOUT"`
		WriteTimeout    time.Duration `toml:"write_timeout" env:"HTTP_WRITE_TIMEOUT"`
		IdleTimeout     time.Duration `toml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT"`
		ShutdownTimeout time.Duration `toml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT"`
	} `toml:"http"`

	Logging logging.Config `toml:"logging"`

	Database struct {
		// Path of the SQLite file holding completed results. Empty
		// disables persistence.
		Path string `toml:"path" env:"DB_PATH"`
	} `toml:"database"`

	Optimization struct {
		// WorkerCount caps the number of concurrently running jobs.
		WorkerCount int `toml:"worker_count" env:"OPT_WORKER_COUNT"`
		// MaxIterations is the default outer-iteration cap per job.
		MaxIterations int `toml:"max_iterations" env:"OPT_MAX_ITERATIONS"`
		// Tolerance is the default convergence tolerance per job.
		Tolerance float64 `toml:"tolerance" env:"OPT_TOLERANCE"`
	} `toml:"optimization"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{Environment: "development"}

	cfg.HTTP.Port = 8080
	cfg.HTTP.ReadTimeout = 30 * time.Second
	cfg.HTTP.WriteTimeout = 30 * time.Second
	cfg.HTTP.IdleTimeout = 120 * time.Second
	cfg.HTTP.ShutdownTimeout = 30 * time.Second

	cfg.Logging = *logging.DefaultConfig()

	cfg.Database.Path = filepath.Join("data", "ravine.db")

	cfg.Optimization.WorkerCount = 4
	cfg.Optimization.MaxIterations = 200
	cfg.Optimization.Tolerance = 1.e-8

	return cfg
}

// Load builds the configuration: built-in defaults, then the TOML file
// at path (if non-empty), then environment variables on top.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown key %q in config file %s", undecoded[0].String(), path)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	// Development deserves chatty logs unless told otherwise
	if cfg.Environment == "development" && os.Getenv("LOG_LEVEL") == "" && cfg.Logging.Level == "info" {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Make sure the data directory exists before the store opens it
	if cfg.Database.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP port %d", c.HTTP.Port)
	}
	if c.Optimization.WorkerCount < 1 {
		return fmt.Errorf("worker count must be at least 1, got %d", c.Optimization.WorkerCount)
	}
	if c.Optimization.MaxIterations < 1 {
		return fmt.Errorf("max iterations must be at least 1, got %d", c.Optimization.MaxIterations)
	}
	if c.Optimization.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %g", c.Optimization.Tolerance)
	}
	return nil
}
