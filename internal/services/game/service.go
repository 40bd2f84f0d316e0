// Package game implements the per-(player, cache) find/solve state
// machine: NotFound -> Found -> Solved.
package game

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mikkelsonm/bitboxing/internal/dependencies/clock"
	"github.com/mikkelsonm/bitboxing/internal/model"
	"github.com/mikkelsonm/bitboxing/internal/storage"
)

// Service manages find and solve progress against the puzzle catalog
type Service struct {
	storage storage.Store
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new game Service
func New(storage storage.Store, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// Find registers that a player has located a cache and returns the
// puzzle question. Finding an already-found cache is an idempotent
// re-read: the question comes back with alreadyFound set and nothing
// mutates.
func (s *Service) Find(ctx context.Context, player string, cache model.CacheCode) (question string, alreadyFound bool, err error) {
	puzzle, err := s.storage.GetPuzzle(ctx, cache)
	if err != nil {
		return "", false, err
	}

	_, err = s.storage.GetFind(ctx, player, cache)
	if err == nil {
		return puzzle.Question, true, nil
	}
	if !errors.Is(err, model.ErrFindNotFound) {
		return "", false, err
	}

	rec := &model.FindRecord{
		Player:    player,
		Cache:     cache,
		TimeFound: s.clock.Now(),
	}
	if err := s.storage.CreateFind(ctx, rec); err != nil {
		return "", false, err
	}

	s.logger.Info("cache found",
		slog.String("player", player),
		slog.String("cache", string(cache)),
	)
	return puzzle.Question, false, nil
}

// Hint returns the puzzle hint for a cache the player has found but not
// yet solved. Asking before finding, or after solving, is out of order.
func (s *Service) Hint(ctx context.Context, player string, cache model.CacheCode) (string, error) {
	puzzle, err := s.storage.GetPuzzle(ctx, cache)
	if err != nil {
		return "", err
	}

	rec, err := s.storage.GetFind(ctx, player, cache)
	if errors.Is(err, model.ErrFindNotFound) {
		return "", model.ErrOutOfOrder
	}
	if err != nil {
		return "", err
	}
	if rec.Solved() {
		return "", model.ErrOutOfOrder
	}

	return puzzle.Hint, nil
}

// Solve submits a guess for a cache the player has found but not yet
// solved. Every guess counts as an attempt, the winning one included.
// Answers are compared case-insensitively but otherwise exactly.
func (s *Service) Solve(ctx context.Context, player string, cache model.CacheCode, guess string) (correct bool, err error) {
	puzzle, err := s.storage.GetPuzzle(ctx, cache)
	if err != nil {
		return false, err
	}

	rec, err := s.storage.GetFind(ctx, player, cache)
	if errors.Is(err, model.ErrFindNotFound) {
		return false, model.ErrOutOfOrder
	}
	if err != nil {
		return false, err
	}
	if rec.Solved() {
		return false, model.ErrOutOfOrder
	}

	correct = strings.EqualFold(guess, puzzle.Answer)

	var solvedAt *time.Time
	if correct {
		t := s.clock.Now()
		solvedAt = &t
	}

	rec, err = s.storage.RecordAttempt(ctx, player, cache, solvedAt)
	if err != nil {
		return false, err
	}

	if correct {
		s.logger.Info("puzzle solved",
			slog.String("player", player),
			slog.String("cache", string(cache)),
			slog.Int("attempts", rec.Attempts),
		)
	}
	return correct, nil
}

// SeedCatalog stores puzzles for any cache codes the store does not
// have yet. Existing puzzles are left untouched: the catalog is
// immutable once initialized.
func (s *Service) SeedCatalog(ctx context.Context, puzzles map[model.CacheCode]model.Puzzle) error {
	existing, err := s.storage.PuzzleCodes(ctx)
	if err != nil {
		return err
	}
	have := make(map[model.CacheCode]bool, len(existing))
	for _, code := range existing {
		have[code] = true
	}

	seeded := 0
	for code, puzzle := range puzzles {
		if have[code] {
			continue
		}
		p := puzzle
		if err := s.storage.SavePuzzle(ctx, code, &p); err != nil {
			return err
		}
		seeded++
	}

	if seeded > 0 {
		s.logger.Info("catalog seeded", slog.Int("puzzles", seeded))
	}
	return nil
}
