// Package snapshot implements the storage interface as a full-document
// JSON store: the whole game state is serialized and rewritten after
// every mutation.
//
// Durability is deliberately best-effort. A failed flush is logged and
// the in-memory mutation stands, so a crash before the next successful
// flush loses recent mutations while in-process reads still see them.
// This mirrors the file-per-hunt deployment the system was built for;
// use the sqlite backend when that trade-off is unacceptable.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/mikkelsonm/bitboxing/internal/model"
	"github.com/mikkelsonm/bitboxing/internal/storage"
)

// Storage is a file-backed implementation of the storage interface
type Storage struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	users   map[string]*model.User
	puzzles map[model.CacheCode]*model.Puzzle
	finds   map[findKey]*model.FindRecord
}

type findKey struct {
	player string
	cache  model.CacheCode
}

// document is the persisted layout: cache code to puzzle plus per-player
// stats, with a sibling user table. Timestamps are Unix nanoseconds.
type document struct {
	Users  map[string]documentUser           `json:"users"`
	Caches map[model.CacheCode]documentCache `json:"caches"`
}

type documentUser struct {
	Password  string `json:"password"`
	CreatedAt int64  `json:"created_at"`
}

type documentCache struct {
	Puzzle model.Puzzle               `json:"puzzle"`
	Stats  map[string]model.FindStats `json:"stats"`
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Open loads the snapshot at path, or starts empty if the file does not
// exist yet.
func Open(path string, logger *slog.Logger) (*Storage, error) {
	s := &Storage{
		path:    path,
		logger:  logger,
		users:   make(map[string]*model.User),
		puzzles: make(map[model.CacheCode]*model.Puzzle),
		finds:   make(map[findKey]*model.FindRecord),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}

	for username, u := range doc.Users {
		s.users[username] = &model.User{
			Username:  username,
			Password:  u.Password,
			CreatedAt: time.Unix(0, u.CreatedAt).UTC(),
		}
	}
	for code, c := range doc.Caches {
		puzzle := c.Puzzle
		s.puzzles[code] = &puzzle
		for player, stats := range c.Stats {
			s.finds[findKey{player: player, cache: code}] = model.RecordFromStats(player, code, stats)
		}
	}

	return s, nil
}

// flush rewrites the whole document. Callers hold the write lock.
// Errors are logged, not returned: the in-memory mutation stands.
func (s *Storage) flush() {
	doc := document{
		Users:  make(map[string]documentUser, len(s.users)),
		Caches: make(map[model.CacheCode]documentCache, len(s.puzzles)),
	}

	for username, u := range s.users {
		doc.Users[username] = documentUser{
			Password:  u.Password,
			CreatedAt: u.CreatedAt.UnixNano(),
		}
	}
	for code, puzzle := range s.puzzles {
		doc.Caches[code] = documentCache{
			Puzzle: *puzzle,
			Stats:  make(map[string]model.FindStats),
		}
	}
	for key, rec := range s.finds {
		cache, ok := doc.Caches[key.cache]
		if !ok {
			continue
		}
		cache.Stats[key.player] = model.StatsFromRecord(rec)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		s.logger.Error("failed to serialize snapshot", slog.String("error", err.Error()))
		return
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.logger.Error("failed to write snapshot",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
	}
}

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *user
	s.users[user.Username] = &u
	s.flush()
	return nil
}

func (s *Storage) GetUser(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

// Puzzle operations

func (s *Storage) SavePuzzle(ctx context.Context, code model.CacheCode, puzzle *model.Puzzle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *puzzle
	s.puzzles[code] = &p
	s.flush()
	return nil
}

func (s *Storage) GetPuzzle(ctx context.Context, code model.CacheCode) (*model.Puzzle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	puzzle, ok := s.puzzles[code]
	if !ok {
		return nil, model.ErrCacheNotFound
	}
	p := *puzzle
	return &p, nil
}

func (s *Storage) PuzzleCodes(ctx context.Context) ([]model.CacheCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	codes := make([]model.CacheCode, 0, len(s.puzzles))
	for code := range s.puzzles {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes, nil
}

// Find record operations

func (s *Storage) CreateFind(ctx context.Context, rec *model.FindRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := findKey{player: rec.Player, cache: rec.Cache}
	if _, ok := s.finds[key]; ok {
		return model.ErrFindExists
	}
	s.finds[key] = rec.Clone()
	s.flush()
	return nil
}

func (s *Storage) GetFind(ctx context.Context, player string, cache model.CacheCode) (*model.FindRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.finds[findKey{player: player, cache: cache}]
	if !ok {
		return nil, model.ErrFindNotFound
	}
	return rec.Clone(), nil
}

func (s *Storage) RecordAttempt(ctx context.Context, player string, cache model.CacheCode, solvedAt *time.Time) (*model.FindRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.finds[findKey{player: player, cache: cache}]
	if !ok {
		return nil, model.ErrFindNotFound
	}
	rec.Attempts++
	if solvedAt != nil {
		t := *solvedAt
		rec.TimeSolved = &t
	}
	s.flush()
	return rec.Clone(), nil
}

func (s *Storage) FindsForPlayer(ctx context.Context, player string) (map[model.CacheCode]*model.FindRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[model.CacheCode]*model.FindRecord)
	for key, rec := range s.finds {
		if key.player == player {
			out[key.cache] = rec.Clone()
		}
	}
	return out, nil
}

func (s *Storage) FindsForCache(ctx context.Context, cache model.CacheCode) (map[string]*model.FindRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*model.FindRecord)
	for key, rec := range s.finds {
		if key.cache == cache {
			out[key.player] = rec.Clone()
		}
	}
	return out, nil
}

func (s *Storage) Players(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	for key := range s.finds {
		seen[key.player] = true
	}
	players := make([]string, 0, len(seen))
	for player := range seen {
		players = append(players, player)
	}
	sort.Strings(players)
	return players, nil
}

func (s *Storage) Close() error {
	return nil
}
