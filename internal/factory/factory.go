package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/crosswirehq/crosswire/internal/completion"
	"github.com/crosswirehq/crosswire/internal/dependencies/clock"
	"github.com/crosswirehq/crosswire/internal/dependencies/random"
	"github.com/crosswirehq/crosswire/internal/gateway"
	"github.com/crosswirehq/crosswire/internal/identity"
	"github.com/crosswirehq/crosswire/internal/puzzle"
	"github.com/crosswirehq/crosswire/internal/registry"
	"github.com/crosswirehq/crosswire/internal/storage"
	"github.com/crosswirehq/crosswire/internal/storage/memory"
	redisstorage "github.com/crosswirehq/crosswire/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	IdentityService *identity.Service
	PuzzleService   *puzzle.Service
	CompletionSink  *completion.StorageSink
	Registry        *registry.Registry
	Gateway         *gateway.Gateway
}

// Config holds configuration for the application factory
type Config struct {
	// IdentityConfig holds token issuance settings (optional)
	// If zero value, defaults to identity.DefaultConfig()
	IdentityConfig identity.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()
	rnd := random.New()

	identityCfg := cfg.IdentityConfig
	if identityCfg.TokenDuration == 0 {
		identityCfg = identity.DefaultConfig()
	}

	return newWithDependencies(store, clk, rnd, identityCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, identityCfg identity.Config, logger *slog.Logger) *App {
	identityService := identity.New(store, clk, rnd, identityCfg, logger)
	puzzleService := puzzle.New(store, logger)
	completionSink := completion.New(store, logger)
	reg := registry.New(puzzleService, clk, rnd, completionSink, logger)
	gw := gateway.New(reg, identityService, logger)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		IdentityService: identityService,
		PuzzleService:   puzzleService,
		CompletionSink:  completionSink,
		Registry:        reg,
		Gateway:         gw,
	}
}
