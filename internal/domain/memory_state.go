package domain

import "time"

// MemoryState is the FSRS memory state for a single (learner, item) pair.
// Created lazily on first review; mutated only by the Scheduler; never
// deleted (spec §3).
type MemoryState struct {
	UserKey       string
	ItemID        string
	State         CardState
	Step          int
	Stability     float64
	Difficulty    float64
	Reps          int
	Lapses        int
	ScheduledDays int
	ElapsedDays   int
	Due           time.Time
	LastReview    *time.Time
}

// NewMemoryState returns the lazily-created NEW state for a (learner, item)
// pair that has never been reviewed.
func NewMemoryState(userKey, itemID string) MemoryState {
	return MemoryState{
		UserKey: userKey,
		ItemID:  itemID,
		State:   CardStateNew,
	}
}

// MemoryStateSnapshot captures a MemoryState before a review, for undo.
type MemoryStateSnapshot struct {
	State         CardState
	Step          int
	Stability     float64
	Difficulty    float64
	Reps          int
	Lapses        int
	ScheduledDays int
	ElapsedDays   int
	Due           time.Time
	LastReview    *time.Time
}

// Snapshot captures the current state for later restoration via undo.
func (m MemoryState) Snapshot() MemoryStateSnapshot {
	return MemoryStateSnapshot{
		State:         m.State,
		Step:          m.Step,
		Stability:     m.Stability,
		Difficulty:    m.Difficulty,
		Reps:          m.Reps,
		Lapses:        m.Lapses,
		ScheduledDays: m.ScheduledDays,
		ElapsedDays:   m.ElapsedDays,
		Due:           m.Due,
		LastReview:    m.LastReview,
	}
}

// Restore overwrites the mutable FSRS fields from a snapshot, keeping the
// (learner, item) key intact.
func (m *MemoryState) Restore(s MemoryStateSnapshot) {
	m.State = s.State
	m.Step = s.Step
	m.Stability = s.Stability
	m.Difficulty = s.Difficulty
	m.Reps = s.Reps
	m.Lapses = s.Lapses
	m.ScheduledDays = s.ScheduledDays
	m.ElapsedDays = s.ElapsedDays
	m.Due = s.Due
	m.LastReview = s.LastReview
}

// IsDue returns true if the state needs review at the given time.
// NEW states are always due; others are due when Due <= now.
func (m MemoryState) IsDue(now time.Time) bool {
	if m.State == CardStateNew {
		return true
	}
	return !m.Due.After(now)
}
