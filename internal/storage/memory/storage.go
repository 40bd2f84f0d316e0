package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mikkelsonm/bitboxing/internal/model"
	"github.com/mikkelsonm/bitboxing/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// State lives only as long as the process; it backs tests and
// ephemeral hunts.
type Storage struct {
	mu sync.RWMutex

	users   map[string]*model.User
	puzzles map[model.CacheCode]*model.Puzzle
	finds   map[findKey]*model.FindRecord
}

type findKey struct {
	player string
	cache  model.CacheCode
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:   make(map[string]*model.User),
		puzzles: make(map[model.CacheCode]*model.Puzzle),
		finds:   make(map[findKey]*model.FindRecord),
	}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *user
	s.users[user.Username] = &u
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
