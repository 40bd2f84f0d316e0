package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mikkelsonm/bitboxing/internal/catalog"
	"github.com/mikkelsonm/bitboxing/internal/dependencies/clock"
	"github.com/mikkelsonm/bitboxing/internal/dispatch"
	"github.com/mikkelsonm/bitboxing/internal/model"
	"github.com/mikkelsonm/bitboxing/internal/services/auth"
	"github.com/mikkelsonm/bitboxing/internal/services/game"
	"github.com/mikkelsonm/bitboxing/internal/services/ranking"
	"github.com/mikkelsonm/bitboxing/internal/storage"
	"github.com/mikkelsonm/bitboxing/internal/storage/memory"
	redisstorage "github.com/mikkelsonm/bitboxing/internal/storage/redis"
	"github.com/mikkelsonm/bitboxing/internal/storage/snapshot"
	"github.com/mikkelsonm/bitboxing/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeSnapshot = "snapshot"
	StorageTypeSQLite   = "sqlite"
	StorageTypeRedis    = "redis"
)

// App contains all wired application components
type App struct {
	Storage storage.Store
	Clock   clock.Clock

	AuthService    *auth.Service
	GameService    *game.Service
	RankingService *ranking.Service
	Dispatcher     *dispatch.Dispatcher
}

// Config holds configuration for the application factory
type Config struct {
	// StorageType selects the storage backend ("memory", "snapshot",
	// "sqlite" or "redis"). If empty, defaults to "snapshot".
	StorageType string
	// SnapshotPath is the snapshot file (required for "snapshot")
	SnapshotPath string
	// SQLitePath is the database file (required for "sqlite")
	SQLitePath string
	// RedisConfig holds Redis connection settings (required for "redis")
	RedisConfig *redisstorage.Config
	// CatalogPath is a JSON puzzle catalog to seed (optional)
	// If empty, the built-in catalog is used
	CatalogPath string
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
}

// New creates a new application with all dependencies wired and the
// puzzle catalog seeded.
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeSnapshot
	}

	var store storage.Store
	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeSnapshot:
		if cfg.SnapshotPath == "" {
			return nil, errors.New("SnapshotPath required when StorageType is snapshot")
		}
		snapStore, err := snapshot.Open(cfg.SnapshotPath, logger)
		if err != nil {
			return nil, err
		}
		store = snapStore
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		sqlStore, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = sqlStore
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
		return nil, fmt.Errorf("invalid StorageType %q", storageType)
	}

	app := newWithDependencies(store, clock.New(), logger)

	puzzles := catalog.Default()
	if cfg.CatalogPath != "" {
		loaded, err := catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		puzzles = loaded
	}
	if err := app.GameService.SeedCatalog(ctx, puzzles); err != nil {
		return nil, fmt.Errorf("failed to seed catalog: %w", err)
	}

	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Store, clk clock.Clock, logger *slog.Logger) *App {
	authService := auth.New(store, clk, logger)
	gameService := game.New(store, clk, logger)
	rankingService := ranking.New(store)
	dispatcher := dispatch.New(authService, gameService, rankingService, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		AuthService:    authService,
		GameService:    gameService,
		RankingService: rankingService,
		Dispatcher:     dispatcher,
	}
}

// SeedPuzzles adds extra puzzles to the running app, skipping codes
// that already exist.
func (a *App) SeedPuzzles(ctx context.Context, puzzles map[model.CacheCode]model.Puzzle) error {
	return a.GameService.SeedCatalog(ctx, puzzles)
}
