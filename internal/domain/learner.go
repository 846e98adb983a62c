package domain

import "time"

// Learner is a learner's profile: ability estimate and current CEFR class.
// Identified by an opaque user key (the key itself is owned by the caller —
// this package does not assume uuid.UUID vs string; see UserKey).
type Learner struct {
	UserKey         string
	CEFR            CEFR
	Theta           float64
	LastPlacementAt *time.Time
}

// DefaultLearner returns the zero-value learner profile for a new user:
// CEFR B1, θ=0 (spec §3 invariant default).
func DefaultLearner(userKey string) Learner {
	return Learner{
		UserKey: userKey,
		CEFR:    B1,
		Theta:   0,
	}
}

// ReviewLogEntry records a single (learner, item) rating event. PrevState is
// a snapshot of the memory state immediately before this review was applied,
// carried so UndoReview can restore it without reconstructing FSRS math in
// reverse.
type ReviewLogEntry struct {
	UserKey        string
	ItemID         string
	Rating         ReviewGrade
	ResponseTimeMs int
	Timestamp      time.Time
	PrevState      MemoryStateSnapshot
}
