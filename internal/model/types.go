package model

import "time"

// CacheCode uniquely identifies a puzzle cache across the system
type CacheCode string

// User represents a registered player account.
// Immutable after registration; never deleted.
type User struct {
	Username  string    `json:"username"`
	Password  string    `json:"password"` // stored as supplied; see DESIGN.md
	CreatedAt time.Time `json:"created_at"`
}

// Puzzle holds the static question/answer/hint for one cache.
// The catalog is immutable after initialization.
type Puzzle struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Hint     string `json:"hint"`
}

// FindRecord tracks one player's progress on one cache.
// A record only exists once the cache has been found, so TimeFound is
// always set; TimeSolved is nil until the puzzle is solved.
type FindRecord struct {
	Player     string     `json:"player"`
	Cache      CacheCode  `json:"cache"`
	TimeFound  time.Time  `json:"time_found"`
	TimeSolved *time.Time `json:"time_solved,omitempty"`
	Attempts   int        `json:"attempts"`
}

// Solved reports whether the puzzle has been solved.
func (r *FindRecord) Solved() bool {
	return r.TimeSolved != nil
}

// Elapsed returns the time between finding and solving.
// The second return is false if the puzzle is unsolved.
func (r *FindRecord) Elapsed() (time.Duration, bool) {
	if r.TimeSolved == nil {
		return 0, false
	}
	return r.TimeSolved.Sub(r.TimeFound), true
}

// Clone returns a deep copy of the record.
func (r *FindRecord) Clone() *FindRecord {
	out := *r
	if r.TimeSolved != nil {
		t := *r.TimeSolved
		out.TimeSolved = &t
	}
	return &out
}

// PlayerScore is a player's derived score: how many caches they have
// found and how many puzzles they have solved. Recomputed on demand,
// never stored.
type PlayerScore struct {
	Player string `json:"player"`
	Finds  int    `json:"finds"`
	Solves int    `json:"solves"`
}

// FindStats is the wire/persisted form of one player's progress on a
// cache, with timestamps in Unix nanoseconds.
type FindStats struct {
	TimeFound  int64  `json:"time_found"`
	TimeSolved *int64 `json:"time_solved"`
	Attempts   int    `json:"attempts"`
}

// CacheStanding pairs a player name with their stats for one cache.
// Used for cache-scoped leaderboard responses.
type CacheStanding struct {
	Player string    `json:"player"`
	Stats  FindStats `json:"stats"`
}

// StatsFromRecord converts a FindRecord to its wire form.
func StatsFromRecord(r *FindRecord) FindStats {
	s := FindStats{
		TimeFound: r.TimeFound.UnixNano(),
		Attempts:  r.Attempts,
	}
	if r.TimeSolved != nil {
		ns := r.TimeSolved.UnixNano()
		s.TimeSolved = &ns
	}
	return s
}

// RecordFromStats converts wire-form stats back into a FindRecord.
func RecordFromStats(player string, cache CacheCode, s FindStats) *FindRecord {
	r := &FindRecord{
		Player:    player,
		Cache:     cache,
		TimeFound: time.Unix(0, s.TimeFound).UTC(),
		Attempts:  s.Attempts,
	}
	if s.TimeSolved != nil {
		t := time.Unix(0, *s.TimeSolved).UTC()
		r.TimeSolved = &t
	}
	return r
}
