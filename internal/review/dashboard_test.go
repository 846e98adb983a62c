package review_test

import (
	"context"
	"testing"
	"time"

	"github.com/heartmarshall/myenglish-backend/internal/domain"
	"github.com/heartmarshall/myenglish-backend/internal/review"
	"github.com/heartmarshall/myenglish-backend/internal/storage/memory"
)

func TestDashboard_ReflectsQueueAndHistory(t *testing.T) {
	store := memory.New()
	store.Seed(
		domain.Item{ID: "word-due", Language: "en", Type: domain.ItemTypeVocabulary, Payload: domain.ItemPayload{ThetaItem: 0, HasTheta: true}},
		domain.Item{ID: "word-new", Language: "en", Type: domain.ItemTypeVocabulary, Payload: domain.ItemPayload{ThetaItem: 0, HasTheta: true}},
	)
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)

	svc := newTestService(t, store, now)
	ctx := context.Background()

	if _, err := svc.ReviewBatch(ctx, []review.ReviewInput{
		{UserKey: "learner-1", ItemID: "word-due", Rating: domain.ReviewGradeGood, ResponseTimeMs: 1000},
	}); err != nil {
		t.Fatalf("ReviewBatch: %v", err)
	}

	dash, err := svc.Dashboard(ctx, "learner-1")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	if dash.NewCount != 1 {
		t.Errorf("expected 1 remaining new item, got %d", dash.NewCount)
	}
	if dash.ReviewedToday != 1 {
		t.Errorf("expected reviewed_today 1, got %d", dash.ReviewedToday)
	}
	if dash.Accuracy != 1.0 {
		t.Errorf("expected accuracy 1.0 after a single GOOD review, got %f", dash.Accuracy)
	}
	if dash.Streak != 1 {
		t.Errorf("expected streak 1, got %d", dash.Streak)
	}
}

func TestDashboard_EmptyLearnerHasZeroedCounts(t *testing.T) {
	store := memory.New()
	store.Seed(domain.Item{ID: "word-1", Language: "en", Type: domain.ItemTypeVocabulary, Payload: domain.ItemPayload{ThetaItem: 0, HasTheta: true}})
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)

	svc := newTestService(t, store, now)

	dash, err := svc.Dashboard(context.Background(), "learner-new")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if dash.DueCount != 0 || dash.ReviewedToday != 0 || dash.Streak != 0 || dash.Accuracy != 0 {
		t.Errorf("expected zeroed dashboard, got %+v", dash)
	}
	if dash.NewCount != 1 {
		t.Errorf("expected 1 new item, got %d", dash.NewCount)
	}
}
