package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mikkelsonm/bitboxing/internal/model"
	"github.com/mikkelsonm/bitboxing/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Entities are stored as JSON values under namespaced keys, with set
// indexes for the per-player, per-cache, and catalog lookups.
//
// RecordAttempt is get-modify-set: correct under the server's
// single-writer-per-record model, not under concurrent mutation of the
// same record from multiple processes.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{client: client, cfg: cfg}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{client: client, cfg: cfg}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, userKey(user.Username), data, 0).Err()
}

func (s *Storage) GetUser(ctx context.Context, username string) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Puzzle operations

func (s *Storage) SavePuzzle(ctx context.Context, code model.CacheCode, puzzle *model.Puzzle) error {
	data, err := json.Marshal(puzzle)
	if err != nil {
		return err
	}

	// Pipeline the value write and index update together
	pipe := s.client.Pipeline()
	pipe.Set(ctx, puzzleKey(code), data, 0)
	pipe.SAdd(ctx, puzzleIndexKey(), string(code))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPuzzle(ctx context.Context, code model.CacheCode) (*model.Puzzle, error) {
	data, err := s.client.Get(ctx, puzzleKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrCacheNotFound
		}
		return nil, err
	}

	var puzzle model.Puzzle
	if err := json.Unmarshal(data, &puzzle); err != nil {
		return nil, err
	}
	return &puzzle, nil
}

func (s *Storage) PuzzleCodes(ctx context.Context) ([]model.CacheCode, error) {
	members, err := s.client.SMembers(ctx, puzzleIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(members)
	codes := make([]model.CacheCode, 0, len(members))
	for _, m := range members {
		codes = append(codes, model.CacheCode(m))
	}
	return codes, nil
}

// Find record operations

func (s *Storage) CreateFind(ctx context.Context, rec *model.FindRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	created, err := s.client.SetNX(ctx, findKey(rec.Player, rec.Cache), data, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return model.ErrFindExists
	}

	pipe := s.client.Pipeline()
	pipe.SAdd(ctx, playerFindsIndexKey(rec.Player), string(rec.Cache))
	pipe.SAdd(ctx, cacheFindsIndexKey(rec.Cache), rec.Player)
	pipe.SAdd(ctx, playersIndexKey(), rec.Player)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetFind(ctx context.Context, player string, cache model.CacheCode) (*model.FindRecord, error) {
	data, err := s.client.Get(ctx, findKey(player, cache)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrFindNotFound
		}
		return nil, err
	}

	var rec model.FindRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Storage) RecordAttempt(ctx context.Context, player string, cache model.CacheCode, solvedAt *time.Time) (*model.FindRecord, error) {
	rec, err := s.GetFind(ctx, player, cache)
	if err != nil {
		return nil, err
	}

	rec.Attempts++
	if solvedAt != nil {
		t := *solvedAt
		rec.TimeSolved = &t
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	if err := s.client.Set(ctx, findKey(player, cache), data, 0).Err(); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Storage) FindsForPlayer(ctx context.Context, player string) (map[model.CacheCode]*model.FindRecord, error) {
	caches, err := s.client.SMembers(ctx, playerFindsIndexKey(player)).Result()
	if err != nil {
		return nil, err
	}

	out := make(map[model.CacheCode]*model.FindRecord, len(caches))
	for _, cache := range caches {
		rec, err := s.GetFind(ctx, player, model.CacheCode(cache))
		if err != nil {
			return nil, err
		}
		out[model.CacheCode(cache)] = rec
	}
	return out, nil
}

func (s *Storage) FindsForCache(ctx context.Context, cache model.CacheCode) (map[string]*model.FindRecord, error) {
	players, err := s.client.SMembers(ctx, cacheFindsIndexKey(cache)).Result()
	if err != nil {
		return nil, err
	}

	out := make(map[string]*model.FindRecord, len(players))
	for _, player := range players {
		rec, err := s.GetFind(ctx, player, cache)
		if err != nil {
			return nil, err
		}
		out[player] = rec
	}
	return out, nil
}

func (s *Storage) Players(ctx context.Context) ([]string, error) {
	players, err := s.client.SMembers(ctx, playersIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(players)
	return players, nil
}
