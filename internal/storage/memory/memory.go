// Package memory is an in-process reference implementation of storage.Store,
// backed by plain maps guarded by a mutex. It exists for unit tests and local
// development; it is not meant to survive a process restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/heartmarshall/myenglish-backend/internal/domain"
	"github.com/heartmarshall/myenglish-backend/internal/storage"
)

type memoryKey struct {
	userKey string
	itemID  string
}

// Store is an in-memory storage.Store implementation.
type Store struct {
	mu sync.RWMutex

	learners  map[string]domain.Learner
	memories  map[memoryKey]domain.MemoryState
	reviewLog []domain.ReviewLogEntry
	items     map[string]domain.Item
	sessions  map[string]domain.PlacementSession
}

// New returns an empty Store. Items must be seeded via Seed before use by
// the composer or placement engine; learners and memory states are created
// lazily as the domain package does.
func New() *Store {
	return &Store{
		learners: make(map[string]domain.Learner),
		memories: make(map[memoryKey]domain.MemoryState),
		items:    make(map[string]domain.Item),
		sessions: make(map[string]domain.PlacementSession),
	}
}

// Seed registers content items, as would otherwise arrive via ingestion
// (out of scope for this repo; see SPEC_FULL.md).
func (s *Store) Seed(items ...domain.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		s.items[it.ID] = it
	}
}

var _ storage.Store = (*Store)(nil)

// TxManager is a passthrough transaction manager for Store. The in-memory
// adapter already serializes every operation through its own mutex, so it
// has no multi-statement atomicity to add on top; it exists only so
// internal/review can depend on one txManager interface regardless of
// adapter.
type TxManager struct{}

// RunInTx implements the txManager interface consumed by internal/review.
func (TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// GetLearner implements storage.LearnerStore.
func (s *Store) GetLearner(_ context.Context, userKey string) (domain.Learner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := s.learners[userKey]; ok {
		return l, nil
	}
	return domain.DefaultLearner(userKey), nil
}

// UpsertLearner implements storage.LearnerStore.
func (s *Store) UpsertLearner(_ context.Context, learner domain.Learner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.learners[learner.UserKey] = learner
	return nil
}

// GetMemory implements storage.MemoryStore.
func (s *Store) GetMemory(_ context.Context, userKey, itemID string) (domain.MemoryState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.memories[memoryKey{userKey, itemID}]
	return m, ok, nil
}

// UpsertMemory implements storage.MemoryStore.
func (s *Store) UpsertMemory(_ context.Context, state domain.MemoryState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memories[memoryKey{state.UserKey, state.ItemID}] = state
	return nil
}

// AppendReviewLog implements storage.ReviewLogStore.
func (s *Store) AppendReviewLog(_ context.Context, entry domain.ReviewLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviewLog = append(s.reviewLog, entry)
	return nil
}

// GetLastReviewLog implements storage.ReviewLogStore.
func (s *Store) GetLastReviewLog(_ context.Context, userKey, itemID string) (domain.ReviewLogEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.reviewLog) - 1; i >= 0; i-- {
		e := s.reviewLog[i]
		if e.UserKey == userKey && e.ItemID == itemID {
			return e, true, nil
		}
	}
	return domain.ReviewLogEntry{}, false, nil
}

// DeleteLastReviewLog implements storage.ReviewLogStore.
func (s *Store) DeleteLastReviewLog(_ context.Context, userKey, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.reviewLog) - 1; i >= 0; i-- {
		e := s.reviewLog[i]
		if e.UserKey == userKey && e.ItemID == itemID {
			s.reviewLog = append(s.reviewLog[:i], s.reviewLog[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// CountMemoryByState implements storage.DashboardStore.
func (s *Store) CountMemoryByState(_ context.Context, userKey string) (map[domain.CardState]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[domain.CardState]int)
	for key, mem := range s.memories {
		if key.userKey != userKey {
			continue
		}
		out[mem.State]++
	}
	return out, nil
}

// CountDue implements storage.DashboardStore.
func (s *Store) CountDue(_ context.Context, userKey string, now time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int
	for key, mem := range s.memories {
		if key.userKey == userKey && !mem.Due.After(now) {
			count++
		}
	}
	return count, nil
}

// CountNew implements storage.DashboardStore.
func (s *Store) CountNew(_ context.Context, userKey string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int
	for id := range s.items {
		if _, ok := s.memories[memoryKey{userKey, id}]; !ok {
			count++
		}
	}
	return count, nil
}

// CountReviewsSince implements storage.DashboardStore.
func (s *Store) CountReviewsSince(_ context.Context, userKey string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int
	for _, e := range s.reviewLog {
		if e.UserKey == userKey && !e.Timestamp.Before(since) {
			count++
		}
	}
	return count, nil
}

// ReviewDaysSince implements storage.DashboardStore.
func (s *Store) ReviewDaysSince(_ context.Context, userKey string, since time.Time) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[time.Time]bool)
	var out []time.Time
	for _, e := range s.reviewLog {
		if e.UserKey != userKey || e.Timestamp.Before(since) {
			continue
		}
		day := time.Date(e.Timestamp.Year(), e.Timestamp.Month(), e.Timestamp.Day(), 0, 0, 0, 0, time.UTC)
		if !seen[day] {
			seen[day] = true
			out = append(out, day)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].After(out[j]) })
	return out, nil
}

// RatingCounts implements storage.DashboardStore.
func (s *Store) RatingCounts(_ context.Context, userKey string, since time.Time) (map[domain.ReviewGrade]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[domain.ReviewGrade]int)
	for _, e := range s.reviewLog {
		if e.UserKey == userKey && !e.Timestamp.Before(since) {
			out[e.Rating]++
		}
	}
	return out, nil
}

// GetItem implements storage.ItemQueryStore.
func (s *Store) GetItem(_ context.Context, id string) (domain.Item, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	return item, ok, nil
}

// FindItemsByWords implements storage.ItemQueryStore.
func (s *Store) FindItemsByWords(_ context.Context, language string, words []string) (map[string]domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]bool, len(words))
	for _, w := range words {
		wanted[w] = true
	}

	out := make(map[string]domain.Item, len(words))
	for _, item := range s.items {
		if item.Language != language {
			continue
		}
		if wanted[item.Payload.TargetWord] {
			out[item.Payload.TargetWord] = item
		}
	}
	return out, nil
}

// QueryItemsDue implements storage.ItemQueryStore.
func (s *Store) QueryItemsDue(_ context.Context, userKey string, thetaLo, thetaHi float64, states []domain.CardState, now time.Time, limit int) ([]storage.ItemWithMemory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[domain.CardState]bool, len(states))
	for _, st := range states {
		wanted[st] = true
	}

	var out []storage.ItemWithMemory
	for key, mem := range s.memories {
		if key.userKey != userKey || !wanted[mem.State] {
			continue
		}
		if !mem.IsDue(now) {
			continue
		}
		item, ok := s.items[key.itemID]
		if !ok || !item.Payload.HasTheta {
			continue
		}
		if item.Payload.ThetaItem < thetaLo || item.Payload.ThetaItem > thetaHi {
			continue
		}
		out = append(out, storage.ItemWithMemory{Item: item, State: mem})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].State.Due.Before(out[j].State.Due) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// QueryItemsNew implements storage.ItemQueryStore.
func (s *Store) QueryItemsNew(_ context.Context, userKey string, thetaLo, thetaHi float64, limit int) ([]domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Item
	for id, item := range s.items {
		if !item.Payload.HasTheta {
			continue
		}
		if item.Payload.ThetaItem < thetaLo || item.Payload.ThetaItem > thetaHi {
			continue
		}
		if _, ok := s.memories[memoryKey{userKey, id}]; ok {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// QueryItemsAny implements storage.ItemQueryStore.
func (s *Store) QueryItemsAny(_ context.Context, userKey string, excludeIDs []string, limit int) ([]domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	excluded := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}

	var out []domain.Item
	for id, item := range s.items {
		if excluded[id] {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CreatePlacementSession implements storage.PlacementStore.
func (s *Store) CreatePlacementSession(_ context.Context, session domain.PlacementSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

// GetPlacementSession implements storage.PlacementStore.
func (s *Store) GetPlacementSession(_ context.Context, id string) (domain.PlacementSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return domain.PlacementSession{}, domain.ErrSessionUnavailable
	}
	return sess, nil
}

// UpdatePlacementSession implements storage.PlacementStore.
func (s *Store) UpdatePlacementSession(_ context.Context, session domain.PlacementSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

// AppendPlacementResponse implements storage.PlacementStore.
func (s *Store) AppendPlacementResponse(_ context.Context, sessionID string, response domain.PlacementResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return domain.ErrSessionUnavailable
	}
	sess.Responses = append(sess.Responses, response)
	s.sessions[sessionID] = sess
	return nil
}

// QueryPlacementCandidates implements storage.PlacementStore.
func (s *Store) QueryPlacementCandidates(_ context.Context, language string, excludeIDs []string, limit int) ([]domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	excluded := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}

	var out []domain.Item
	for id, item := range s.items {
		if item.Language != language || !item.Payload.HasTheta || excluded[id] {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
