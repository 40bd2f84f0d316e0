// Package ranking computes player scores and leaderboards. It only ever
// reads from storage; scores are derived by scanning find records on
// demand, never cached.
package ranking

import (
	"context"
	"sort"
	"strings"

	"github.com/mikkelsonm/bitboxing/internal/model"
	"github.com/mikkelsonm/bitboxing/internal/storage"
)

// Service computes scores and leaderboards
type Service struct {
	storage storage.Store
}

// New creates a new ranking Service
func New(storage storage.Store) *Service {
	return &Service{storage: storage}
}

// Score returns a player's finds and solves. A player with no find
// records scores zero on both.
func (s *Service) Score(ctx context.Context, player string) (model.PlayerScore, error) {
	records, err := s.storage.FindsForPlayer(ctx, player)
	if err != nil {
		return model.PlayerScore{}, err
	}

	score := model.PlayerScore{Player: player}
	for _, rec := range records {
		score.Finds++
		if rec.Solved() {
			score.Solves++
		}
	}
	return score, nil
}

// Top returns up to count players ordered best first: solves
// descending, then finds descending, then username ascending. The
// username key is not part of the scoring order; it just pins ties so
// repeated queries return the same listing.
func (s *Service) Top(ctx context.Context, count int) ([]model.PlayerScore, error) {
	players, err := s.storage.Players(ctx)
	if err != nil {
		return nil, err
	}

	scores := make([]model.PlayerScore, 0, len(players))
	for _, player := range players {
		score, err := s.Score(ctx, player)
		if err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}

	sort.Slice(scores, func(i, j int) bool {
		if c := model.ComparePlayerScores(scores[i], scores[j]); c != 0 {
			return c < 0
		}
		return scores[i].Player < scores[j].Player
	})

	if count >= 0 && count < len(scores) {
		scores = scores[:count]
	}
	return scores, nil
}

// CacheTop returns up to count standings for one cache ordered best
// first by the find-record comparator, with remaining ties pinned by
// username ascending.
func (s *Service) CacheTop(ctx context.Context, cache model.CacheCode, count int) ([]model.CacheStanding, error) {
	if _, err := s.storage.GetPuzzle(ctx, cache); err != nil {
		return nil, err
	}

	records, err := s.storage.FindsForCache(ctx, cache)
	if err != nil {
		return nil, err
	}

	recs := make([]*model.FindRecord, 0, len(records))
	for _, rec := range records {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		if c := model.CompareFindRecords(recs[i], recs[j]); c != 0 {
			return c < 0
		}
		return strings.Compare(recs[i].Player, recs[j].Player) < 0
	})

	if count >= 0 && count < len(recs) {
		recs = recs[:count]
	}

	standings := make([]model.CacheStanding, 0, len(recs))
	for _, rec := range recs {
		standings = append(standings, model.CacheStanding{
			Player: rec.Player,
			Stats:  model.StatsFromRecord(rec),
		})
	}
	return standings, nil
}
