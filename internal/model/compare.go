package model

// CompareFindRecords orders two find records for a cache leaderboard,
// better record first. It returns a negative value if a outranks b,
// positive if b outranks a, and zero if they are tied.
//
// Ordering rules:
//  1. Solved beats unsolved.
//  2. Among solved: shorter find-to-solve time wins, then fewer
//     attempts, then earlier find time.
//  3. Among unsolved: fewer attempts wins, then earlier find time.
//
// The result is a strict weak ordering: records tied on every key
// compare equal, so the comparator is safe as a sort key.
func CompareFindRecords(a, b *FindRecord) int {
	if a.Solved() != b.Solved() {
		if a.Solved() {
			return -1
		}
		return 1
	}

	if a.Solved() {
		ae, _ := a.Elapsed()
		be, _ := b.Elapsed()
		if ae != be {
			if ae < be {
				return -1
			}
			return 1
		}
	}

	if a.Attempts != b.Attempts {
		if a.Attempts < b.Attempts {
			return -1
		}
		return 1
	}

	return a.TimeFound.Compare(b.TimeFound)
}

// ComparePlayerScores orders two player scores for the game leaderboard,
// better score first: more solves wins, then more finds. Scores equal on
// both keys compare equal; callers wanting a deterministic order break
// the tie themselves.
func ComparePlayerScores(a, b PlayerScore) int {
	if a.Solves != b.Solves {
		if a.Solves > b.Solves {
			return -1
		}
		return 1
	}
	if a.Finds != b.Finds {
		if a.Finds > b.Finds {
			return -1
		}
		return 1
	}
	return 0
}
