package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/myenglish-backend/internal/domain"
	"github.com/heartmarshall/myenglish-backend/internal/storage"
)

// psql is the squirrel statement builder configured for PostgreSQL's $N
// placeholder style, used wherever a query's WHERE clause varies by caller
// (the θ-band item queries); fixed-shape CRUD statements stay raw SQL,
// matching the teacher's own "simple queries plain, complex queries built"
// split.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo is the PostgreSQL-backed storage.Store.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new Repo.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ storage.Store = (*Repo)(nil)

// ---------------------------------------------------------------------------
// Learner
// ---------------------------------------------------------------------------

const getLearnerSQL = `
SELECT user_key, cefr, theta, last_placement_at FROM learners WHERE user_key = $1`

// GetLearner implements storage.LearnerStore.
func (r *Repo) GetLearner(ctx context.Context, userKey string) (domain.Learner, error) {
	querier := QuerierFromCtx(ctx, r.pool)

	var l domain.Learner
	err := querier.QueryRow(ctx, getLearnerSQL, userKey).Scan(&l.UserKey, &l.CEFR, &l.Theta, &l.LastPlacementAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.DefaultLearner(userKey), nil
		}
		return domain.Learner{}, mapError(err, "learner", userKey)
	}
	return l, nil
}

const upsertLearnerSQL = `
INSERT INTO learners (user_key, cefr, theta, last_placement_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_key) DO UPDATE SET
  cefr = EXCLUDED.cefr, theta = EXCLUDED.theta, last_placement_at = EXCLUDED.last_placement_at`

// UpsertLearner implements storage.LearnerStore.
func (r *Repo) UpsertLearner(ctx context.Context, learner domain.Learner) error {
	querier := QuerierFromCtx(ctx, r.pool)
	_, err := querier.Exec(ctx, upsertLearnerSQL, learner.UserKey, learner.CEFR, learner.Theta, learner.LastPlacementAt)
	return mapError(err, "learner", learner.UserKey)
}

// ---------------------------------------------------------------------------
// Memory state
// ---------------------------------------------------------------------------

const memoryColumns = `user_key, item_id, state, step, stability, difficulty,
       reps, lapses, scheduled_days, elapsed_days, due, last_review`

const getMemorySQL = `SELECT ` + memoryColumns + ` FROM memory_states WHERE user_key = $1 AND item_id = $2`

// GetMemory implements storage.MemoryStore.
func (r *Repo) GetMemory(ctx context.Context, userKey, itemID string) (domain.MemoryState, bool, error) {
	querier := QuerierFromCtx(ctx, r.pool)

	var m domain.MemoryState
	err := querier.QueryRow(ctx, getMemorySQL, userKey, itemID).Scan(
		&m.UserKey, &m.ItemID, &m.State, &m.Step, &m.Stability, &m.Difficulty,
		&m.Reps, &m.Lapses, &m.ScheduledDays, &m.ElapsedDays, &m.Due, &m.LastReview,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.MemoryState{}, false, nil
		}
		return domain.MemoryState{}, false, mapError(err, "memory_state", userKey+"/"+itemID)
	}
	return m, true, nil
}

const upsertMemorySQL = `
INSERT INTO memory_states (user_key, item_id, state, step, stability, difficulty,
       reps, lapses, scheduled_days, elapsed_days, due, last_review)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (user_key, item_id) DO UPDATE SET
  state = EXCLUDED.state, step = EXCLUDED.step, stability = EXCLUDED.stability,
  difficulty = EXCLUDED.difficulty, reps = EXCLUDED.reps, lapses = EXCLUDED.lapses,
  scheduled_days = EXCLUDED.scheduled_days, elapsed_days = EXCLUDED.elapsed_days,
  due = EXCLUDED.due, last_review = EXCLUDED.last_review`

// UpsertMemory implements storage.MemoryStore.
func (r *Repo) UpsertMemory(ctx context.Context, m domain.MemoryState) error {
	querier := QuerierFromCtx(ctx, r.pool)
	_, err := querier.Exec(ctx, upsertMemorySQL,
		m.UserKey, m.ItemID, m.State, m.Step, m.Stability, m.Difficulty,
		m.Reps, m.Lapses, m.ScheduledDays, m.ElapsedDays, m.Due, m.LastReview,
	)
	return mapError(err, "memory_state", m.UserKey+"/"+m.ItemID)
}

// ---------------------------------------------------------------------------
// Review log
// ---------------------------------------------------------------------------

const reviewLogPrevStateColumns = `prev_state, prev_step, prev_stability, prev_difficulty,
       prev_reps, prev_lapses, prev_scheduled_days, prev_elapsed_days, prev_due, prev_last_review`

const appendReviewLogSQL = `
INSERT INTO review_log (id, user_key, item_id, rating, response_time_ms, reviewed_at, ` + reviewLogPrevStateColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

// AppendReviewLog implements storage.ReviewLogStore.
func (r *Repo) AppendReviewLog(ctx context.Context, entry domain.ReviewLogEntry) error {
	querier := QuerierFromCtx(ctx, r.pool)
	prev := entry.PrevState
	_, err := querier.Exec(ctx, appendReviewLogSQL,
		uuid.New(), entry.UserKey, entry.ItemID, entry.Rating, entry.ResponseTimeMs, entry.Timestamp,
		prev.State, prev.Step, prev.Stability, prev.Difficulty,
		prev.Reps, prev.Lapses, prev.ScheduledDays, prev.ElapsedDays, prev.Due, prev.LastReview,
	)
	return mapError(err, "review_log", entry.UserKey+"/"+entry.ItemID)
}

const getLastReviewLogSQL = `
SELECT id, user_key, item_id, rating, response_time_ms, reviewed_at, ` + reviewLogPrevStateColumns + `
FROM review_log WHERE user_key = $1 AND item_id = $2 ORDER BY reviewed_at DESC LIMIT 1`

// GetLastReviewLog implements storage.ReviewLogStore.
func (r *Repo) GetLastReviewLog(ctx context.Context, userKey, itemID string) (domain.ReviewLogEntry, bool, error) {
	querier := QuerierFromCtx(ctx, r.pool)

	var id uuid.UUID
	var entry domain.ReviewLogEntry
	prev := &entry.PrevState
	err := querier.QueryRow(ctx, getLastReviewLogSQL, userKey, itemID).Scan(
		&id, &entry.UserKey, &entry.ItemID, &entry.Rating, &entry.ResponseTimeMs, &entry.Timestamp,
		&prev.State, &prev.Step, &prev.Stability, &prev.Difficulty,
		&prev.Reps, &prev.Lapses, &prev.ScheduledDays, &prev.ElapsedDays, &prev.Due, &prev.LastReview,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.ReviewLogEntry{}, false, nil
		}
		return domain.ReviewLogEntry{}, false, mapError(err, "review_log", userKey+"/"+itemID)
	}
	return entry, true, nil
}

const deleteLastReviewLogSQL = `
DELETE FROM review_log WHERE id = (
  SELECT id FROM review_log WHERE user_key = $1 AND item_id = $2 ORDER BY reviewed_at DESC LIMIT 1
)`

// DeleteLastReviewLog implements storage.ReviewLogStore.
func (r *Repo) DeleteLastReviewLog(ctx context.Context, userKey, itemID string) error {
	querier := QuerierFromCtx(ctx, r.pool)
	tag, err := querier.Exec(ctx, deleteLastReviewLogSQL, userKey, itemID)
	if err != nil {
		return mapError(err, "review_log", userKey+"/"+itemID)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// Dashboard aggregation
// ---------------------------------------------------------------------------

const countMemoryByStateSQL = `
SELECT state, count(*) FROM memory_states WHERE user_key = $1 GROUP BY state`

// CountMemoryByState implements storage.DashboardStore.
func (r *Repo) CountMemoryByState(ctx context.Context, userKey string) (map[domain.CardState]int, error) {
	querier := QuerierFromCtx(ctx, r.pool)
	rows, err := querier.Query(ctx, countMemoryByStateSQL, userKey)
	if err != nil {
		return nil, mapError(err, "memory_state", userKey)
	}
	defer rows.Close()

	out := make(map[domain.CardState]int)
	for rows.Next() {
		var state domain.CardState
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, err
		}
		out[state] = count
	}
	return out, rows.Err()
}

const countDueSQL = `
SELECT count(*) FROM memory_states WHERE user_key = $1 AND due <= $2`

// CountDue implements storage.DashboardStore.
func (r *Repo) CountDue(ctx context.Context, userKey string, now time.Time) (int, error) {
	querier := QuerierFromCtx(ctx, r.pool)
	var count int
	err := querier.QueryRow(ctx, countDueSQL, userKey, now).Scan(&count)
	return count, mapError(err, "memory_state", userKey)
}

const countNewSQL = `
SELECT count(*) FROM items i
WHERE NOT EXISTS (SELECT 1 FROM memory_states m WHERE m.item_id = i.id AND m.user_key = $1)`

// CountNew implements storage.DashboardStore.
func (r *Repo) CountNew(ctx context.Context, userKey string) (int, error) {
	querier := QuerierFromCtx(ctx, r.pool)
	var count int
	err := querier.QueryRow(ctx, countNewSQL, userKey).Scan(&count)
	return count, mapError(err, "item", userKey)
}

const countReviewsSinceSQL = `
SELECT count(*) FROM review_log WHERE user_key = $1 AND reviewed_at >= $2`

// CountReviewsSince implements storage.DashboardStore.
func (r *Repo) CountReviewsSince(ctx context.Context, userKey string, since time.Time) (int, error) {
	querier := QuerierFromCtx(ctx, r.pool)
	var count int
	err := querier.QueryRow(ctx, countReviewsSinceSQL, userKey, since).Scan(&count)
	return count, mapError(err, "review_log", userKey)
}

const reviewDaysSinceSQL = `
SELECT DISTINCT date_trunc('day', reviewed_at) FROM review_log
WHERE user_key = $1 AND reviewed_at >= $2
ORDER BY 1 DESC`

// ReviewDaysSince implements storage.DashboardStore.
func (r *Repo) ReviewDaysSince(ctx context.Context, userKey string, since time.Time) ([]time.Time, error) {
	querier := QuerierFromCtx(ctx, r.pool)
	rows, err := querier.Query(ctx, reviewDaysSinceSQL, userKey, since)
	if err != nil {
		return nil, mapError(err, "review_log", userKey)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		out = append(out, day)
	}
	return out, rows.Err()
}

const ratingCountsSQL = `
SELECT rating, count(*) FROM review_log WHERE user_key = $1 AND reviewed_at >= $2 GROUP BY rating`

// RatingCounts implements storage.DashboardStore.
func (r *Repo) RatingCounts(ctx context.Context, userKey string, since time.Time) (map[domain.ReviewGrade]int, error) {
	querier := QuerierFromCtx(ctx, r.pool)
	rows, err := querier.Query(ctx, ratingCountsSQL, userKey, since)
	if err != nil {
		return nil, mapError(err, "review_log", userKey)
	}
	defer rows.Close()

	out := make(map[domain.ReviewGrade]int)
	for rows.Next() {
		var rating domain.ReviewGrade
		var count int
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, err
		}
		out[rating] = count
	}
	return out, rows.Err()
}

// ---------------------------------------------------------------------------
// Item queries (θ-band candidate pools for the Session Composer)
// ---------------------------------------------------------------------------

const itemColumns = `i.id, i.language, i.type, i.target_word, i.sentence, i.theta_item, i.frequency_rank`

const getItemSQL = `SELECT id, language, type, target_word, sentence, theta_item, frequency_rank FROM items WHERE id = $1`

// GetItem implements storage.ItemQueryStore.
func (r *Repo) GetItem(ctx context.Context, id string) (domain.Item, bool, error) {
	querier := QuerierFromCtx(ctx, r.pool)

	var it domain.Item
	var theta *float64
	var freqRank *int
	err := querier.QueryRow(ctx, getItemSQL, id).Scan(
		&it.ID, &it.Language, &it.Type, &it.Payload.TargetWord, &it.Payload.Sentence, &theta, &freqRank,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Item{}, false, nil
		}
		return domain.Item{}, false, mapError(err, "item", id)
	}
	if theta != nil {
		it.Payload.ThetaItem = *theta
		it.Payload.HasTheta = true
	}
	if freqRank != nil {
		it.Payload.FrequencyRank = *freqRank
		it.Payload.HasFrequencyRank = true
	}
	return it, true, nil
}

// FindItemsByWords implements storage.ItemQueryStore.
func (r *Repo) FindItemsByWords(ctx context.Context, language string, words []string) (map[string]domain.Item, error) {
	out := make(map[string]domain.Item, len(words))
	if len(words) == 0 {
		return out, nil
	}

	q := psql.Select(itemColumns).
		From("items i").
		Where(sq.Eq{"i.language": language}).
		Where(sq.Eq{"i.target_word": words})

	items, err := r.queryItems(ctx, q)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		out[it.Payload.TargetWord] = it
	}
	return out, nil
}

// QueryItemsDue implements storage.ItemQueryStore.
func (r *Repo) QueryItemsDue(ctx context.Context, userKey string, thetaLo, thetaHi float64, states []domain.CardState, now time.Time, limit int) ([]storage.ItemWithMemory, error) {
	stateStrs := make([]string, len(states))
	for i, s := range states {
		stateStrs[i] = string(s)
	}

	q := psql.Select(itemColumns+", m.state, m.step, m.stability, m.difficulty, m.reps, m.lapses, m.scheduled_days, m.elapsed_days, m.due, m.last_review").
		From("items i").
		Join("memory_states m ON m.item_id = i.id").
		Where(sq.Eq{"m.user_key": userKey}).
		Where(sq.Eq{"m.state": stateStrs}).
		Where(sq.LtOrEq{"m.due": now}).
		Where(sq.GtOrEq{"i.theta_item": thetaLo}).
		Where(sq.LtOrEq{"i.theta_item": thetaHi}).
		OrderBy("m.due ASC").
		Limit(uint64(limit))

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	querier := QuerierFromCtx(ctx, r.pool)
	rows, err := querier.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, mapError(err, "item", userKey)
	}
	defer rows.Close()

	var out []storage.ItemWithMemory
	for rows.Next() {
		var iwm storage.ItemWithMemory
		var freqRank *int
		if err := rows.Scan(
			&iwm.Item.ID, &iwm.Item.Language, &iwm.Item.Type, &iwm.Item.Payload.TargetWord,
			&iwm.Item.Payload.Sentence, &iwm.Item.Payload.ThetaItem, &freqRank,
			&iwm.State.State, &iwm.State.Step, &iwm.State.Stability, &iwm.State.Difficulty,
			&iwm.State.Reps, &iwm.State.Lapses, &iwm.State.ScheduledDays, &iwm.State.ElapsedDays,
			&iwm.State.Due, &iwm.State.LastReview,
		); err != nil {
			return nil, err
		}
		iwm.Item.Payload.HasTheta = true
		iwm.State.UserKey = userKey
		iwm.State.ItemID = iwm.Item.ID
		if freqRank != nil {
			iwm.Item.Payload.FrequencyRank = *freqRank
			iwm.Item.Payload.HasFrequencyRank = true
		}
		out = append(out, iwm)
	}
	return out, rows.Err()
}

// QueryItemsNew implements storage.ItemQueryStore.
func (r *Repo) QueryItemsNew(ctx context.Context, userKey string, thetaLo, thetaHi float64, limit int) ([]domain.Item, error) {
	q := psql.Select(itemColumns).
		From("items i").
		Where("NOT EXISTS (SELECT 1 FROM memory_states m WHERE m.item_id = i.id AND m.user_key = ?)", userKey).
		Where(sq.GtOrEq{"i.theta_item": thetaLo}).
		Where(sq.LtOrEq{"i.theta_item": thetaHi}).
		Limit(uint64(limit))

	return r.queryItems(ctx, q)
}

// QueryItemsAny implements storage.ItemQueryStore.
func (r *Repo) QueryItemsAny(ctx context.Context, userKey string, excludeIDs []string, limit int) ([]domain.Item, error) {
	q := psql.Select(itemColumns).From("items i").Limit(uint64(limit))
	if len(excludeIDs) > 0 {
		q = q.Where(sq.NotEq{"i.id": excludeIDs})
	}
	return r.queryItems(ctx, q)
}

func (r *Repo) queryItems(ctx context.Context, q sq.SelectBuilder) ([]domain.Item, error) {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	querier := QuerierFromCtx(ctx, r.pool)
	rows, err := querier.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, mapError(err, "item", "")
	}
	defer rows.Close()

	var out []domain.Item
	for rows.Next() {
		var it domain.Item
		var freqRank *int
		if err := rows.Scan(&it.ID, &it.Language, &it.Type, &it.Payload.TargetWord, &it.Payload.Sentence, &it.Payload.ThetaItem, &freqRank); err != nil {
			return nil, err
		}
		it.Payload.HasTheta = true
		if freqRank != nil {
			it.Payload.FrequencyRank = *freqRank
			it.Payload.HasFrequencyRank = true
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ---------------------------------------------------------------------------
// Placement sessions
// ---------------------------------------------------------------------------

const createPlacementSessionSQL = `
INSERT INTO placement_sessions (id, user_key, language, theta, se, items_completed, complete, final_cefr, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// CreatePlacementSession implements storage.PlacementStore.
func (r *Repo) CreatePlacementSession(ctx context.Context, s domain.PlacementSession) error {
	querier := QuerierFromCtx(ctx, r.pool)
	_, err := querier.Exec(ctx, createPlacementSessionSQL,
		s.ID, s.UserKey, s.Language, s.Theta, s.SE, s.ItemsCompleted, s.Complete, s.FinalCEFR, s.CreatedAt,
	)
	return mapError(err, "placement_session", s.ID)
}

const getPlacementSessionSQL = `
SELECT id, user_key, language, theta, se, items_completed, complete, final_cefr, created_at
FROM placement_sessions WHERE id = $1`

const getPlacementResponsesSQL = `
SELECT item_id, rating, theta_before, theta_after, se_before, se_after, correct, sequence
FROM placement_responses WHERE session_id = $1 ORDER BY sequence ASC`

// GetPlacementSession implements storage.PlacementStore.
func (r *Repo) GetPlacementSession(ctx context.Context, id string) (domain.PlacementSession, error) {
	querier := QuerierFromCtx(ctx, r.pool)

	var s domain.PlacementSession
	err := querier.QueryRow(ctx, getPlacementSessionSQL, id).Scan(
		&s.ID, &s.UserKey, &s.Language, &s.Theta, &s.SE, &s.ItemsCompleted, &s.Complete, &s.FinalCEFR, &s.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.PlacementSession{}, domain.ErrSessionUnavailable
		}
		return domain.PlacementSession{}, mapError(err, "placement_session", id)
	}

	rows, err := querier.Query(ctx, getPlacementResponsesSQL, id)
	if err != nil {
		return domain.PlacementSession{}, mapError(err, "placement_session", id)
	}
	defer rows.Close()

	for rows.Next() {
		var resp domain.PlacementResponse
		if err := rows.Scan(&resp.ItemID, &resp.Rating, &resp.ThetaBefore, &resp.ThetaAfter, &resp.SEBefore, &resp.SEAfter, &resp.Correct, &resp.Sequence); err != nil {
			return domain.PlacementSession{}, err
		}
		s.Responses = append(s.Responses, resp)
	}
	if err := rows.Err(); err != nil {
		return domain.PlacementSession{}, err
	}

	return s, nil
}

const updatePlacementSessionSQL = `
UPDATE placement_sessions SET theta = $2, se = $3, items_completed = $4, complete = $5, final_cefr = $6
WHERE id = $1`

// UpdatePlacementSession implements storage.PlacementStore.
func (r *Repo) UpdatePlacementSession(ctx context.Context, s domain.PlacementSession) error {
	querier := QuerierFromCtx(ctx, r.pool)
	tag, err := querier.Exec(ctx, updatePlacementSessionSQL, s.ID, s.Theta, s.SE, s.ItemsCompleted, s.Complete, s.FinalCEFR)
	if err != nil {
		return mapError(err, "placement_session", s.ID)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionUnavailable
	}
	return nil
}

const appendPlacementResponseSQL = `
INSERT INTO placement_responses (session_id, item_id, rating, theta_before, theta_after, se_before, se_after, correct, sequence)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// AppendPlacementResponse implements storage.PlacementStore.
func (r *Repo) AppendPlacementResponse(ctx context.Context, sessionID string, resp domain.PlacementResponse) error {
	querier := QuerierFromCtx(ctx, r.pool)
	_, err := querier.Exec(ctx, appendPlacementResponseSQL,
		sessionID, resp.ItemID, resp.Rating, resp.ThetaBefore, resp.ThetaAfter, resp.SEBefore, resp.SEAfter, resp.Correct, resp.Sequence,
	)
	return mapError(err, "placement_response", sessionID)
}

// QueryPlacementCandidates implements storage.PlacementStore.
func (r *Repo) QueryPlacementCandidates(ctx context.Context, language string, excludeIDs []string, limit int) ([]domain.Item, error) {
	q := psql.Select(itemColumns).
		From("items i").
		Where(sq.Eq{"i.language": language}).
		Where(sq.NotEq{"i.theta_item": nil}).
		Limit(uint64(limit))
	if len(excludeIDs) > 0 {
		q = q.Where(sq.NotEq{"i.id": excludeIDs})
	}
	return r.queryItems(ctx, q)
}
