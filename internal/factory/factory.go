package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/playersvc/internal/codec"
	"github.com/mcoot/playersvc/internal/dependencies/clock"
	"github.com/mcoot/playersvc/internal/dependencies/ids"
	"github.com/mcoot/playersvc/internal/jsonpatch"
	"github.com/mcoot/playersvc/internal/services/player"
	"github.com/mcoot/playersvc/internal/storage"
	"github.com/mcoot/playersvc/internal/storage/memory"
	pgstorage "github.com/mcoot/playersvc/internal/storage/postgres"
	redisstorage "github.com/mcoot/playersvc/internal/storage/redis"
	sqlitestorage "github.com/mcoot/playersvc/internal/storage/sqlite"
	"github.com/mcoot/playersvc/internal/validation"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypeSQLite   = "sqlite"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock
	IDs   ids.Generator

	// Collaborators of the player service
	Validator  *validation.Validator
	Serializer *codec.JSON
	Patcher    *jsonpatch.Patcher

	// Services
	PlayerService *player.Service

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis", "sqlite" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// PostgresDSN is the connection string (required if StorageType is "postgres")
	PostgresDSN string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create external dependencies
	clk := clock.New()
	gen := ids.New()

	// Create storage based on type
	var (
		store   storage.Storage
		closers []io.Closer
	)
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New(gen, clk)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig, gen, clk)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		store = redisStore
		closers = append(closers, redisStore)
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlitestorage.Open(cfg.SQLitePath, gen, clk)
		if err != nil {
			return nil, err
		}
		store = sqliteStore
		closers = append(closers, sqliteStore)
	case StorageTypePostgres:
		if cfg.PostgresDSN == "" {
			return nil, errors.New("PostgresDSN required when StorageType is postgres")
		}
		pgStore, err := pgstorage.Open(context.Background(), cfg.PostgresDSN, gen, clk)
		if err != nil {
			return nil, err
		}
		store = pgStore
		closers = append(closers, pgStore)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis', 'sqlite' or 'postgres'")
	}

	logger.Info("storage ready", slog.String("type", storageType))

	app := newWithDependencies(store, clk, gen, logger)
	app.closers = closers
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, gen ids.Generator, logger *slog.Logger) *App {
	validator := validation.New()
	serializer := codec.New()
	patcher := jsonpatch.NewPatcher()
	playerService := player.New(store, patcher, validator, serializer, logger)

	return &App{
		Storage:       store,
		Clock:         clk,
		IDs:           gen,
		Validator:     validator,
		Serializer:    serializer,
		Patcher:       patcher,
		PlayerService: playerService,
	}
}

// Close releases storage connections
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
