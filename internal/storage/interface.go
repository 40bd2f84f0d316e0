package storage

import (
	"context"
	"time"

	"github.com/mikkelsonm/bitboxing/internal/model"
)

// Store is the game-state store and its persistence contract in one
// interface. Each mutating call durably records exactly the effect of a
// single REGISTER (SaveUser), FIND (CreateFind), or SOLVE
// (RecordAttempt) before it returns, so the dispatcher never responds
// ahead of the backing store.
//
// Implementations are not required to be safe for concurrent mutation
// of the same record; the server serializes mutating requests.
type Store interface {
	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, username string) (*model.User, error)

	// Puzzle catalog operations. Puzzles are immutable once seeded.
	SavePuzzle(ctx context.Context, code model.CacheCode, puzzle *model.Puzzle) error
	GetPuzzle(ctx context.Context, code model.CacheCode) (*model.Puzzle, error)
	PuzzleCodes(ctx context.Context) ([]model.CacheCode, error)

	// Find record operations. A record exists only once a cache has
	// been found; absence means not-found, not a zero record.
	CreateFind(ctx context.Context, rec *model.FindRecord) error
	GetFind(ctx context.Context, player string, cache model.CacheCode) (*model.FindRecord, error)

	// RecordAttempt increments the record's attempt count by one and,
	// when solvedAt is non-nil, sets the solved timestamp. Both effects
	// are applied atomically and the updated record is returned.
	RecordAttempt(ctx context.Context, player string, cache model.CacheCode, solvedAt *time.Time) (*model.FindRecord, error)

	// FindsForPlayer returns the player's records keyed by cache code.
	FindsForPlayer(ctx context.Context, player string) (map[model.CacheCode]*model.FindRecord, error)
	// FindsForCache returns the cache's records keyed by player name.
	FindsForCache(ctx context.Context, cache model.CacheCode) (map[string]*model.FindRecord, error)
	// Players returns every player with at least one find record.
	Players(ctx context.Context) ([]string, error)

	Close() error
}
