// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Log output formats
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config holds every setting the server reads at startup
type Config struct {
	Host            string        `env:"PLAYERSVC_HOST"`
	Port            int           `env:"PLAYERSVC_PORT"             envDefault:"8080"`
	ReadTimeout     time.Duration `env:"PLAYERSVC_READ_TIMEOUT"     envDefault:"15s"`
	WriteTimeout    time.Duration `env:"PLAYERSVC_WRITE_TIMEOUT"    envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"PLAYERSVC_SHUTDOWN_TIMEOUT" envDefault:"30s"`

	LogLevel  string `env:"PLAYERSVC_LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"PLAYERSVC_LOG_FORMAT" envDefault:"json"`

	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL"`
	SQLitePath  string `env:"SQLITE_PATH"  envDefault:"players.db"`
	PostgresDSN string `env:"POSTGRES_DSN"`
}

// Load parses the process environment
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadDotEnv copies KEY=VALUE pairs from the given files into the process
// environment. Variables that are already set win, and missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// LoadFrom parses the given variables instead of the process environment
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.StorageType = strings.ToLower(strings.TrimSpace(cfg.StorageType))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("PLAYERSVC_PORT %d out of range", c.Port)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.LogFormat {
	case LogFormatJSON, LogFormatText:
	default:
		return fmt.Errorf("PLAYERSVC_LOG_FORMAT must be %q or %q, got %q", LogFormatJSON, LogFormatText, c.LogFormat)
	}
	switch c.StorageType {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL required when STORAGE_TYPE=%s", StorageRedis)
		}
	case StorageSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH required when STORAGE_TYPE=%s", StorageSQLite)
		}
	case StoragePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN required when STORAGE_TYPE=%s", StoragePostgres)
		}
	default:
		return fmt.Errorf("STORAGE_TYPE must be one of %s, %s, %s, %s; got %q",
			StorageMemory, StorageRedis, StorageSQLite, StoragePostgres, c.StorageType)
	}
	return nil
}

// SlogLevel parses LogLevel (debug, info, warn, error)
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("PLAYERSVC_LOG_LEVEL: %w", err)
	}
	return level, nil
}

// NewLogger builds the application logger writing to w
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := c.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == LogFormatText {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
