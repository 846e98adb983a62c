package review

import (
	"context"
	"math/rand"

	"github.com/heartmarshall/myenglish-backend/internal/composer"
	"github.com/heartmarshall/myenglish-backend/internal/domain"
	"github.com/heartmarshall/myenglish-backend/internal/metrics"
	"github.com/heartmarshall/myenglish-backend/internal/storage"
)

// NextSession assembles up to count items for a review session (spec §6:
// `sessions/next { count, user }`). It fetches each priority tier's
// candidate pool from storage, then delegates ranking and band-filtering to
// the pure Session Composer.
func (s *Service) NextSession(ctx context.Context, userKey string, count int) (composer.Result, error) {
	if count <= 0 {
		count = s.composerBatch
	}

	learner, err := s.learners.GetLearner(ctx, userKey)
	if err != nil {
		return composer.Result{}, err
	}

	target := learner.CEFR.Theta()
	lo, hi := target-1, target+1
	now := s.clock.Now()

	due, err := s.items.QueryItemsDue(ctx, userKey, lo, hi,
		[]domain.CardState{domain.CardStateReview, domain.CardStateRelearning}, now, count)
	if err != nil {
		return composer.Result{}, err
	}
	learning, err := s.items.QueryItemsDue(ctx, userKey, lo, hi, []domain.CardState{domain.CardStateLearning}, now, count)
	if err != nil {
		return composer.Result{}, err
	}
	newItems, err := s.items.QueryItemsNew(ctx, userKey, lo, hi, count)
	if err != nil {
		return composer.Result{}, err
	}

	exclude := make([]string, 0, len(due)+len(learning)+len(newItems))
	for _, c := range due {
		exclude = append(exclude, c.Item.ID)
	}
	for _, c := range learning {
		exclude = append(exclude, c.Item.ID)
	}
	for _, it := range newItems {
		exclude = append(exclude, it.ID)
	}
	overflow, err := s.items.QueryItemsAny(ctx, userKey, exclude, count)
	if err != nil {
		return composer.Result{}, err
	}

	input := composer.Input{
		CEFR:     learner.CEFR,
		Count:    count,
		Due:      toDueCandidates(due),
		Learning: toDueCandidates(learning),
		New:      newItems,
		Overflow: overflow,
	}

	result := composer.Compose(input, rand.New(rand.NewSource(now.UnixNano())))

	metrics.ComposerBatchSize.Observe(float64(result.Breakdown.Total))
	metrics.ComposerTierFill.WithLabelValues("due").Add(float64(result.Breakdown.Due))
	metrics.ComposerTierFill.WithLabelValues("learning").Add(float64(result.Breakdown.Learning))
	metrics.ComposerTierFill.WithLabelValues("new").Add(float64(result.Breakdown.New))

	s.logger.InfoContext(ctx, "session composed",
		"user_key", userKey, "total", result.Breakdown.Total, "due", result.Breakdown.Due,
		"learning", result.Breakdown.Learning, "new", result.Breakdown.New)

	return result, nil
}

func toDueCandidates(items []storage.ItemWithMemory) []composer.DueCandidate {
	out := make([]composer.DueCandidate, len(items))
	for i, it := range items {
		out[i] = composer.DueCandidate{Item: it.Item, Due: it.State.Due}
	}
	return out
}
