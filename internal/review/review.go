package review

import (
	"context"
	"strconv"
	"time"

	"github.com/heartmarshall/myenglish-backend/internal/credit"
	"github.com/heartmarshall/myenglish-backend/internal/domain"
	"github.com/heartmarshall/myenglish-backend/internal/metrics"
	"github.com/heartmarshall/myenglish-backend/internal/scheduler"
)

// ReviewInput is one rating submitted against one item (spec §6:
// `reviews [ { item_id, rating, response_time_ms, user } ]`).
type ReviewInput struct {
	UserKey        string
	ItemID         string
	Rating         domain.ReviewGrade
	ResponseTimeMs int
}

// ReviewError records why one item in a batch was not applied. Per-item
// failures never abort the rest of the batch (spec §7).
type ReviewError struct {
	ItemID string
	Err    error
}

// ReviewOutcome is the result of a batch review submission (spec §6:
// `{ updated, errors? }`).
type ReviewOutcome struct {
	Updated int
	Errors  []ReviewError
}

// ReviewBatch applies each rating in inputs to its item's memory state via
// the Scheduler, inside one transaction per item. An item that does not
// exist, or carries an invalid rating, is recorded in Errors and does not
// abort the remaining items (spec §7: "per-item failures during a batch
// review do not abort the batch").
func (s *Service) ReviewBatch(ctx context.Context, inputs []ReviewInput) (ReviewOutcome, error) {
	now := s.clock.Now()

	var outcome ReviewOutcome
	for _, in := range inputs {
		if err := s.reviewOne(ctx, in, now); err != nil {
			outcome.Errors = append(outcome.Errors, ReviewError{ItemID: in.ItemID, Err: err})
			s.logger.WarnContext(ctx, "review item failed",
				"user_key", in.UserKey, "item_id", in.ItemID, "error", err)
			continue
		}
		outcome.Updated++
	}
	return outcome, nil
}

func (s *Service) reviewOne(ctx context.Context, in ReviewInput, now time.Time) error {
	if !in.Rating.IsValid() {
		return domain.ErrInvalidRating
	}

	item, ok, err := s.items.GetItem(ctx, in.ItemID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUnknownItem
	}

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.applyReview(txCtx, in.UserKey, item, in.Rating, in.ResponseTimeMs, now); err != nil {
			return err
		}

		if item.Type == domain.ItemTypeSentence && item.Payload.Sentence != "" && item.Payload.TargetWord != "" {
			if err := s.applySentenceCredit(txCtx, in.UserKey, item, in.Rating, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// applyReview runs one (learner, item) pair through the Scheduler and
// persists the result plus its review-log entry. Shared by the primary
// per-item review and every credited supporting word (spec §4.3: "invokes
// the Scheduler once per credited word").
func (s *Service) applyReview(ctx context.Context, userKey string, item domain.Item, rating domain.ReviewGrade, rtMs int, now time.Time) error {
	state, ok, err := s.memories.GetMemory(ctx, userKey, item.ID)
	if err != nil {
		return err
	}
	if !ok {
		state = domain.NewMemoryState(userKey, item.ID)
	}
	lapsesBefore := state.Lapses
	prevSnapshot := state.Snapshot()

	// Recompute elapsed days from the wall-clock gap since the last review:
	// the stored ElapsedDays is always 0 (the scheduler resets it on every
	// transition), so the Scheduler must be handed the real gap or
	// retrievability always evaluates at R=1. Done after the undo snapshot
	// above, so UndoReview restores the state exactly as it was persisted.
	if state.LastReview != nil {
		elapsed := now.Sub(*state.LastReview)
		state.ElapsedDays = max(0, int(elapsed.Hours()/24))
	}

	next, err := scheduler.Review(s.schedulerParams, state, rating, now)
	if err != nil {
		return err
	}

	if err := s.memories.UpsertMemory(ctx, next); err != nil {
		return err
	}
	if err := s.log.AppendReviewLog(ctx, domain.ReviewLogEntry{
		UserKey:        userKey,
		ItemID:         item.ID,
		Rating:         rating,
		ResponseTimeMs: rtMs,
		Timestamp:      now,
		PrevState:      prevSnapshot,
	}); err != nil {
		return err
	}

	metrics.SchedulerReviews.WithLabelValues(string(next.State), strconv.Itoa(int(rating))).Inc()
	if next.Lapses > lapsesBefore {
		metrics.SchedulerLapses.Inc()
	}
	return nil
}

// applySentenceCredit distributes partial credit from a sentence item's
// target word to its supporting words, resolving each credited word to its
// own standalone item (if any) and running it through applyReview with the
// distributor's adjusted rating. Words with no matching item are skipped,
// not fatal, mirroring the batch's own unknown-item policy.
func (s *Service) applySentenceCredit(ctx context.Context, userKey string, item domain.Item, rating domain.ReviewGrade, now time.Time) error {
	learner, err := s.learners.GetLearner(ctx, userKey)
	if err != nil {
		return err
	}

	entries, err := credit.Distribute(s.tables, s.tokenizer, item.Language, item.Payload.Sentence, item.Payload.TargetWord, rating, learner.CEFR)
	if err != nil {
		return err
	}

	var words []string
	for _, e := range entries {
		if e.CreditType != domain.CreditPrimary {
			words = append(words, e.Word)
		}
	}
	matches, err := s.items.FindItemsByWords(ctx, item.Language, words)
	if err != nil {
		return err
	}

	for _, e := range entries {
		metrics.CreditDistributions.WithLabelValues(string(e.CreditType)).Inc()
		if e.CreditType == domain.CreditPrimary {
			continue
		}
		wordItem, ok := matches[e.Word]
		if !ok {
			continue
		}
		if err := s.applyReview(ctx, userKey, wordItem, e.AdjustedRating, 0, now); err != nil {
			return err
		}
	}
	return nil
}
