package review_test

import (
	"context"
	"testing"
	"time"

	"github.com/heartmarshall/myenglish-backend/internal/domain"
	"github.com/heartmarshall/myenglish-backend/internal/review"
	"github.com/heartmarshall/myenglish-backend/internal/storage/memory"
)

func TestUndoReview_RestoresPreReviewState(t *testing.T) {
	store := memory.New()
	store.Seed(domain.Item{ID: "word-1", Language: "en", Type: domain.ItemTypeVocabulary,
		Payload: domain.ItemPayload{TargetWord: "word", ThetaItem: 0, HasTheta: true}})

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, store, now)
	ctx := context.Background()

	if _, err := svc.ReviewBatch(ctx, []review.ReviewInput{
		{UserKey: "u1", ItemID: "word-1", Rating: domain.ReviewGradeGood, ResponseTimeMs: 1000},
	}); err != nil {
		t.Fatalf("ReviewBatch: %v", err)
	}

	reviewed, ok, err := store.GetMemory(ctx, "u1", "word-1")
	if err != nil || !ok {
		t.Fatalf("GetMemory after review: ok=%v err=%v", ok, err)
	}
	if reviewed.State != domain.CardStateReview || reviewed.Reps != 1 {
		t.Fatalf("reviewed state = %+v, want REVIEW reps=1", reviewed)
	}

	restored, err := svc.UndoReview(ctx, review.UndoInput{UserKey: "u1", ItemID: "word-1"})
	if err != nil {
		t.Fatalf("UndoReview: %v", err)
	}
	if restored.State != domain.CardStateNew || restored.Reps != 0 {
		t.Errorf("restored state = %+v, want the pre-review NEW state", restored)
	}

	after, ok, err := store.GetMemory(ctx, "u1", "word-1")
	if err != nil || !ok {
		t.Fatalf("GetMemory after undo: ok=%v err=%v", ok, err)
	}
	if after.State != domain.CardStateNew || after.Reps != 0 {
		t.Errorf("persisted state after undo = %+v, want NEW reps=0", after)
	}

	if _, ok, _ := store.GetLastReviewLog(ctx, "u1", "word-1"); ok {
		t.Error("expected the review log entry to be removed after undo")
	}
}

func TestUndoReview_NeverReviewedReturnsNotFound(t *testing.T) {
	store := memory.New()
	store.Seed(domain.Item{ID: "word-1", Language: "en", Type: domain.ItemTypeVocabulary,
		Payload: domain.ItemPayload{TargetWord: "word", ThetaItem: 0, HasTheta: true}})

	svc := newTestService(t, store, time.Now())

	_, err := svc.UndoReview(context.Background(), review.UndoInput{UserKey: "u1", ItemID: "word-1"})
	if err != domain.ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUndoReview_ExpiredWindowIsValidationError(t *testing.T) {
	store := memory.New()
	store.Seed(domain.Item{ID: "word-1", Language: "en", Type: domain.ItemTypeVocabulary,
		Payload: domain.ItemPayload{TargetWord: "word", ThetaItem: 0, HasTheta: true}})

	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := &movableClock{t: start}

	svc := review.NewService(review.Deps{
		Learners:  store,
		Memories:  store,
		ReviewLog: store,
		Items:     store,
		Placement: store,
		Dashboard: store,
		Tx:        memory.TxManager{},
		Clock:     clock,
	})
	ctx := context.Background()

	if _, err := svc.ReviewBatch(ctx, []review.ReviewInput{
		{UserKey: "u1", ItemID: "word-1", Rating: domain.ReviewGradeGood, ResponseTimeMs: 1000},
	}); err != nil {
		t.Fatalf("ReviewBatch: %v", err)
	}

	clock.t = clock.t.Add(11 * time.Minute)

	_, err := svc.UndoReview(ctx, review.UndoInput{UserKey: "u1", ItemID: "word-1"})
	if _, ok := err.(*domain.ValidationError); !ok {
		t.Errorf("err = %v (%T), want *domain.ValidationError", err, err)
	}
}

type movableClock struct{ t time.Time }

func (c *movableClock) Now() time.Time { return c.t }
