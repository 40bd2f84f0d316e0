package model

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func found(foundAt time.Duration, attempts int) *FindRecord {
	return &FindRecord{
		Player:    "p",
		Cache:     "c",
		TimeFound: base.Add(foundAt),
		Attempts:  attempts,
	}
}

func solved(foundAt, elapsed time.Duration, attempts int) *FindRecord {
	r := found(foundAt, attempts)
	t := r.TimeFound.Add(elapsed)
	r.TimeSolved = &t
	return r
}

func TestSolvedBeatsUnsolved(t *testing.T) {
	a := solved(0, time.Hour, 99)
	b := found(0, 1)

	assert.Negative(t, CompareFindRecords(a, b))
	assert.Positive(t, CompareFindRecords(b, a))
}

func TestSolvedShorterElapsedWins(t *testing.T) {
	fast := solved(time.Minute, 5*time.Minute, 10)
	slow := solved(0, 10*time.Minute, 1)

	assert.Negative(t, CompareFindRecords(fast, slow))
	assert.Positive(t, CompareFindRecords(slow, fast))
}

func TestSolvedElapsedTieFewerAttemptsWins(t *testing.T) {
	few := solved(time.Hour, 5*time.Minute, 1)
	many := solved(0, 5*time.Minute, 3)

	assert.Negative(t, CompareFindRecords(few, many))
}

func TestSolvedFullTieEarlierFindWins(t *testing.T) {
	early := solved(0, 5*time.Minute, 2)
	late := solved(time.Hour, 5*time.Minute, 2)

	assert.Negative(t, CompareFindRecords(early, late))
}

func TestUnsolvedFewerAttemptsWins(t *testing.T) {
	few := found(time.Hour, 1)
	many := found(0, 4)

	assert.Negative(t, CompareFindRecords(few, many))
}

func TestUnsolvedAttemptsTieEarlierFindWins(t *testing.T) {
	early := found(0, 2)
	late := found(time.Minute, 2)

	assert.Negative(t, CompareFindRecords(early, late))
}

func TestIdenticalRecordsCompareEqual(t *testing.T) {
	a := solved(0, 5*time.Minute, 2)
	b := solved(0, 5*time.Minute, 2)

	assert.Zero(t, CompareFindRecords(a, b))
	assert.Zero(t, CompareFindRecords(a, a))
}

// TestFindComparatorIsStrictWeakOrdering checks asymmetry and
// transitivity over randomly generated records.
func TestFindComparatorIsStrictWeakOrdering(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	randomRecord := func() *FindRecord {
		r := found(time.Duration(rng.Intn(4))*time.Minute, rng.Intn(3))
		if rng.Intn(2) == 0 {
			t := r.TimeFound.Add(time.Duration(1+rng.Intn(3)) * time.Minute)
			r.TimeSolved = &t
		}
		return r
	}

	sign := func(v int) int {
		switch {
		case v < 0:
			return -1
		case v > 0:
			return 1
		default:
			return 0
		}
	}

	for i := 0; i < 2000; i++ {
		a, b, c := randomRecord(), randomRecord(), randomRecord()

		// Asymmetry: a<b and b<a never both hold.
		require.Equal(t, sign(CompareFindRecords(a, b)), -sign(CompareFindRecords(b, a)))

		// Irreflexivity.
		require.Zero(t, CompareFindRecords(a, a))

		// Transitivity of the strict order.
		if CompareFindRecords(a, b) < 0 && CompareFindRecords(b, c) < 0 {
			require.Negative(t, CompareFindRecords(a, c))
		}

		// Transitivity of equivalence.
		if CompareFindRecords(a, b) == 0 && CompareFindRecords(b, c) == 0 {
			require.Zero(t, CompareFindRecords(a, c))
		}
	}
}

func TestComparePlayerScores(t *testing.T) {
	assert.Negative(t, ComparePlayerScores(
		PlayerScore{Player: "a", Finds: 1, Solves: 3},
		PlayerScore{Player: "b", Finds: 9, Solves: 2},
	), "more solves outranks more finds")

	assert.Negative(t, ComparePlayerScores(
		PlayerScore{Player: "a", Finds: 4, Solves: 2},
		PlayerScore{Player: "b", Finds: 3, Solves: 2},
	), "solves tie broken by finds")

	assert.Zero(t, ComparePlayerScores(
		PlayerScore{Player: "a", Finds: 3, Solves: 2},
		PlayerScore{Player: "b", Finds: 3, Solves: 2},
	), "equal on both keys compares equal")
}

func TestStatsRoundTrip(t *testing.T) {
	r := solved(time.Minute, 5*time.Minute, 3)
	got := RecordFromStats(r.Player, r.Cache, StatsFromRecord(r))

	assert.True(t, r.TimeFound.Equal(got.TimeFound))
	require.NotNil(t, got.TimeSolved)
	assert.True(t, r.TimeSolved.Equal(*got.TimeSolved))
	assert.Equal(t, r.Attempts, got.Attempts)

	unsolved := found(0, 1)
	got = RecordFromStats(unsolved.Player, unsolved.Cache, StatsFromRecord(unsolved))
	assert.Nil(t, got.TimeSolved)
}
