package review

import (
	"context"
	"strconv"

	"github.com/heartmarshall/myenglish-backend/internal/domain"
	"github.com/heartmarshall/myenglish-backend/internal/metrics"
	"github.com/heartmarshall/myenglish-backend/internal/placement"
)

// placementPoolLimit bounds how many candidates are fetched per selection
// step; the placement engine only needs the argmax of Fisher information
// over whatever the storage adapter returns, not the whole language's item
// set (spec §4.2 is silent on pool size — this is an adapter-level cap).
const placementPoolLimit = 500

// ciZ is the z-score for a 95% confidence interval, used to turn (θ, SE)
// into the ci [lo, hi] pair the spec's progress/results envelopes report.
// The spec names the SE but does not fix a confidence level; 95% is the
// conventional default and is recorded as an Open Question decision.
const ciZ = 1.96

// StartPlacementInput is spec §6's `placement/start { user, language,
// claimed_level? }`.
type StartPlacementInput struct {
	UserKey      string
	Language     string
	ClaimedLevel *domain.CEFR
}

// StartPlacementResult is spec §6's `{ session_id, item, progress }`.
type StartPlacementResult struct {
	SessionID      string
	Item           domain.Item
	ItemsCompleted int
	EstimatedLevel domain.CEFR
	CILo, CIHi     float64
}

// StartPlacement begins a new adaptive placement session: selects the first
// item by Fisher information at the session's starting θ and persists the
// new session. Returns domain.ErrNoPlacementItems if language has no
// candidate items carrying θ_item (spec §4.2).
func (s *Service) StartPlacement(ctx context.Context, in StartPlacementInput) (StartPlacementResult, error) {
	pool, err := s.placement.QueryPlacementCandidates(ctx, in.Language, nil, placementPoolLimit)
	if err != nil {
		return StartPlacementResult{}, err
	}
	if len(pool) == 0 {
		return StartPlacementResult{}, domain.ErrNoPlacementItems
	}

	now := s.clock.Now()
	sess := placement.NewSession(s.ids.NewID(), in.UserKey, in.Language, in.ClaimedLevel, s.placementParams, now)

	idx := placement.SelectItem(pool, sess.Theta, s.placementParams.Discrimination)
	item := pool[idx]

	if err := s.placement.CreatePlacementSession(ctx, sess); err != nil {
		return StartPlacementResult{}, err
	}

	lo, hi := confidenceInterval(sess.Theta, sess.SE)
	s.logger.InfoContext(ctx, "placement session started",
		"user_key", in.UserKey, "language", in.Language, "session_id", sess.ID)

	return StartPlacementResult{
		SessionID:      sess.ID,
		Item:           item,
		ItemsCompleted: sess.ItemsCompleted,
		EstimatedLevel: domain.CEFRFromTheta(sess.Theta),
		CILo:           lo,
		CIHi:           hi,
	}, nil
}

// AnswerPlacementInput is spec §6's `placement/answer { session_id, item_id,
// user_answer, response_time_ms }`. user_answer is the string "1".."4": the
// same four-point self-assessed rating scale the review batch uses (spec
// has no multiple-choice option payload on Item, so this is the only
// consistent reading — recorded as an Open Question decision).
type AnswerPlacementInput struct {
	SessionID      string
	ItemID         string
	UserAnswer     string
	ResponseTimeMs int
}

// AnswerPlacementResult covers both of spec §6's two response shapes:
// `{ complete: false, item, feedback, progress }` when HasNextItem is true,
// or `{ complete: true, results }` when Complete is true.
type AnswerPlacementResult struct {
	Complete       bool
	WasCorrect     bool
	CorrectAnswer  string
	ItemsCompleted int
	EstimatedLevel domain.CEFR
	CILo, CIHi     float64

	HasNextItem bool
	NextItem    domain.Item

	FinalCEFR  domain.CEFR
	FinalTheta float64
	KnownWords int
}

// AnswerPlacement ingests one rating against the item currently offered by
// session_id, advances (θ, SE), and either returns the next item or, if the
// stop rule fires, the session's final results.
func (s *Service) AnswerPlacement(ctx context.Context, in AnswerPlacementInput) (AnswerPlacementResult, error) {
	sess, err := s.placement.GetPlacementSession(ctx, in.SessionID)
	if err != nil {
		return AnswerPlacementResult{}, err
	}
	// Storage adapters persist the response log, not the UsedItemIDs set
	// directly; rebuild it so item-exclusion stays correct across a
	// load/store round trip.
	sess.UsedItemIDs = usedItemIDSet(sess.Responses)

	ratingInt, convErr := strconv.Atoi(in.UserAnswer)
	if convErr != nil {
		return AnswerPlacementResult{}, domain.ErrInvalidRating
	}
	rating := domain.ReviewGrade(ratingInt)

	item, ok, err := s.items.GetItem(ctx, in.ItemID)
	if err != nil {
		return AnswerPlacementResult{}, err
	}
	if !ok {
		cancelled := placement.Cancel(sess)
		_ = s.placement.UpdatePlacementSession(ctx, cancelled)
		return AnswerPlacementResult{}, domain.ErrUnknownItem
	}

	now := s.clock.Now()

	excludeAfter := usedItemIDs(sess, item.ID)
	remaining, err := s.placement.QueryPlacementCandidates(ctx, sess.Language, excludeAfter, 1)
	if err != nil {
		return AnswerPlacementResult{}, err
	}

	updated, err := placement.ApplyAnswer(s.placementParams, sess, item, rating, now, len(remaining) == 0)
	if err != nil {
		return AnswerPlacementResult{}, err
	}
	lastResp := updated.Responses[len(updated.Responses)-1]

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.placement.AppendPlacementResponse(txCtx, sess.ID, lastResp); err != nil {
			return err
		}
		return s.placement.UpdatePlacementSession(txCtx, updated)
	})
	if err != nil {
		return AnswerPlacementResult{}, err
	}

	lo, hi := confidenceInterval(updated.Theta, updated.SE)
	result := AnswerPlacementResult{
		Complete:       updated.Complete,
		WasCorrect:     lastResp.Correct,
		CorrectAnswer:  item.Payload.TargetWord,
		ItemsCompleted: updated.ItemsCompleted,
		EstimatedLevel: domain.CEFRFromTheta(updated.Theta),
		CILo:           lo,
		CIHi:           hi,
	}

	if updated.Complete {
		result.FinalCEFR = updated.FinalCEFR
		result.FinalTheta = updated.Theta
		result.KnownWords = countCorrect(updated.Responses)

		metrics.PlacementSteps.Observe(float64(updated.ItemsCompleted))
		metrics.PlacementSessionsCompleted.WithLabelValues(string(updated.FinalCEFR)).Inc()

		if learner, lErr := s.learners.GetLearner(ctx, sess.UserKey); lErr == nil {
			learner.CEFR = updated.FinalCEFR
			learner.Theta = updated.Theta
			placedAt := now
			learner.LastPlacementAt = &placedAt
			_ = s.learners.UpsertLearner(ctx, learner)
		}

		s.logger.InfoContext(ctx, "placement session complete",
			"session_id", sess.ID, "final_cefr", updated.FinalCEFR, "items_completed", updated.ItemsCompleted)
		return result, nil
	}

	pool, err := s.placement.QueryPlacementCandidates(ctx, sess.Language, usedItemIDs(updated, ""), placementPoolLimit)
	if err != nil {
		return AnswerPlacementResult{}, err
	}
	next, err := placement.SelectNext(s.placementParams, updated, pool)
	if err != nil {
		return AnswerPlacementResult{}, err
	}
	result.HasNextItem = true
	result.NextItem = next
	return result, nil
}

// CancelPlacement marks an in-progress session complete with its
// last-known (θ, SE) frozen (spec §5).
func (s *Service) CancelPlacement(ctx context.Context, sessionID string) error {
	sess, err := s.placement.GetPlacementSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.Complete {
		return nil
	}
	return s.placement.UpdatePlacementSession(ctx, placement.Cancel(sess))
}

func confidenceInterval(theta, se float64) (lo, hi float64) {
	return theta - ciZ*se, theta + ciZ*se
}

func countCorrect(responses []domain.PlacementResponse) int {
	n := 0
	for _, r := range responses {
		if r.Correct {
			n++
		}
	}
	return n
}

func usedItemIDs(sess domain.PlacementSession, extra string) []string {
	out := make([]string, 0, len(sess.UsedItemIDs)+1)
	for id := range sess.UsedItemIDs {
		out = append(out, id)
	}
	if extra != "" {
		out = append(out, extra)
	}
	return out
}

func usedItemIDSet(responses []domain.PlacementResponse) map[string]bool {
	out := make(map[string]bool, len(responses))
	for _, r := range responses {
		out[r.ItemID] = true
	}
	return out
}
