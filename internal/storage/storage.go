// Package storage defines the persistence port the core engines are driven
// through. Most methods here correspond to an operation in spec §6 (the
// exceptions say so on their own doc comments); the core never depends on a
// concrete adapter, only on these interfaces.
package storage

import (
	"context"
	"time"

	"github.com/heartmarshall/myenglish-backend/internal/domain"
)

// LearnerStore reads and writes learner profiles.
type LearnerStore interface {
	// GetLearner returns the stored profile, or the zero-value default
	// profile (domain.DefaultLearner) if none exists yet.
	GetLearner(ctx context.Context, userKey string) (domain.Learner, error)
	// UpsertLearner writes a learner's CEFR/θ/last-placement-timestamp.
	UpsertLearner(ctx context.Context, learner domain.Learner) error
}

// MemoryStore reads and writes per-(learner, item) FSRS state.
type MemoryStore interface {
	// GetMemory returns the stored state, or (zero value, false) if the
	// pair has never been reviewed — the caller constructs a fresh NEW
	// state via domain.NewMemoryState in that case.
	GetMemory(ctx context.Context, userKey, itemID string) (domain.MemoryState, bool, error)
	// UpsertMemory writes a memory state atomically per (learner, item) key.
	UpsertMemory(ctx context.Context, state domain.MemoryState) error
}

// ReviewLogStore appends review history. Append-only, with one exception:
// UndoReview (within its configured window) deletes the single most recent
// entry for a (learner, item) pair rather than rewriting history further
// back, matching spec's review log being a forward-only audit trail that
// tolerates reverting the last action only.
type ReviewLogStore interface {
	AppendReviewLog(ctx context.Context, entry domain.ReviewLogEntry) error
	// GetLastReviewLog returns the most recent entry for (userKey, itemID),
	// or (zero value, false) if the pair has never been reviewed.
	GetLastReviewLog(ctx context.Context, userKey, itemID string) (domain.ReviewLogEntry, bool, error)
	// DeleteLastReviewLog removes the most recent entry for (userKey,
	// itemID). Used only by UndoReview, immediately after restoring the
	// pre-review memory-state snapshot carried on that entry.
	DeleteLastReviewLog(ctx context.Context, userKey, itemID string) error
}

// ItemQueryStore serves the Session Composer's candidate pools.
type ItemQueryStore interface {
	// GetItem returns a single item by id, or (zero value, false) if no
	// such item exists. Used by internal/review to resolve a review
	// batch's item_id before dispatching to the Scheduler.
	GetItem(ctx context.Context, id string) (domain.Item, bool, error)
	// FindItemsByWords resolves a set of credited words (spec §4.3) back
	// to the vocabulary items that carry them, for a given language. Not
	// named by spec §6 directly — the spec describes the Credit
	// Distributor invoking the Scheduler "once per credited word" without
	// specifying how a word maps back to a (learner, item) key; this
	// lookup is the adapter-level bridge. Words with no matching item are
	// simply absent from the returned map, mirroring the batch-review
	// "unknown item is skipped, not fatal" policy.
	FindItemsByWords(ctx context.Context, language string, words []string) (map[string]domain.Item, error)
	// QueryItemsDue returns items with memory state in one of states,
	// θ_item in [thetaLo, thetaHi], due now-or-earlier, up to limit,
	// joined with their memory state.
	QueryItemsDue(ctx context.Context, userKey string, thetaLo, thetaHi float64, states []domain.CardState, now time.Time, limit int) ([]ItemWithMemory, error)
	// QueryItemsNew returns items with θ_item in band and no memory state
	// yet for this learner.
	QueryItemsNew(ctx context.Context, userKey string, thetaLo, thetaHi float64, limit int) ([]domain.Item, error)
	// QueryItemsAny is the overflow tier: any item excluding the given IDs.
	// It takes no language and does not filter by language.
	QueryItemsAny(ctx context.Context, userKey string, excludeIDs []string, limit int) ([]domain.Item, error)
}

// ItemWithMemory pairs an item with its existing memory state for a learner.
type ItemWithMemory struct {
	Item  domain.Item
	State domain.MemoryState
}

// PlacementStore persists placement sessions and their response logs.
type PlacementStore interface {
	CreatePlacementSession(ctx context.Context, session domain.PlacementSession) error
	GetPlacementSession(ctx context.Context, id string) (domain.PlacementSession, error)
	UpdatePlacementSession(ctx context.Context, session domain.PlacementSession) error
	AppendPlacementResponse(ctx context.Context, sessionID string, response domain.PlacementResponse) error
	// QueryPlacementCandidates returns unused items for language with
	// θ_item present, for the placement engine's selection pool.
	QueryPlacementCandidates(ctx context.Context, language string, excludeIDs []string, limit int) ([]domain.Item, error)
}

// DashboardStore serves the counts behind internal/composer.Dashboard. Not
// named by spec §6 — a supplemented read path for a supplemented feature,
// kept as its own small interface so callers that only need a queue
// breakdown don't have to depend on the full item-query surface.
type DashboardStore interface {
	// CountMemoryByState returns, for one learner, how many memory states
	// currently sit in each CardState.
	CountMemoryByState(ctx context.Context, userKey string) (map[domain.CardState]int, error)
	// CountDue returns how many of the learner's memory states are due at
	// or before now, across any state.
	CountDue(ctx context.Context, userKey string, now time.Time) (int, error)
	// CountNew returns how many items carry no memory state yet for this
	// learner, mirroring QueryItemsNew's own lack of a language filter.
	CountNew(ctx context.Context, userKey string) (int, error)
	// CountReviewsSince returns how many review log entries a learner has
	// logged at or after since.
	CountReviewsSince(ctx context.Context, userKey string, since time.Time) (int, error)
	// ReviewDaysSince returns the distinct calendar dates (normalized to
	// midnight UTC) on which a learner logged at least one review, at or
	// after since.
	ReviewDaysSince(ctx context.Context, userKey string, since time.Time) ([]time.Time, error)
	// RatingCounts returns, for one learner, how many review log entries
	// carry each ReviewGrade, since the given time.
	RatingCounts(ctx context.Context, userKey string, since time.Time) (map[domain.ReviewGrade]int, error)
}

// Store is the full persistence port. Adapters implement all of it;
// consumers (internal/review, internal/app) depend on the narrower
// interfaces above at their point of use, per the teacher's own
// consumer-defined-interface convention.
type Store interface {
	LearnerStore
	MemoryStore
	ReviewLogStore
	ItemQueryStore
	PlacementStore
	DashboardStore
}
