package scheduler

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/heartmarshall/myenglish-backend/internal/domain"
)

func TestReviewNewCardGood(t *testing.T) {
	params := DefaultParameters()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	state := domain.NewMemoryState("learner-1", "item-1")

	got, err := Review(params, state, domain.ReviewGradeGood, now)
	if err != nil {
		t.Fatalf("Review returned error: %v", err)
	}
	if got.State != domain.CardStateReview {
		t.Errorf("State = %v, want REVIEW", got.State)
	}
	if got.ScheduledDays != 1 {
		t.Errorf("ScheduledDays = %d, want 1", got.ScheduledDays)
	}
	if !got.Due.Equal(now.Add(24 * time.Hour)) {
		t.Errorf("Due = %v, want %v", got.Due, now.Add(24*time.Hour))
	}
	wantS := params.W[2]
	if diff := got.Stability - wantS; diff > epsilon || diff < -epsilon {
		t.Errorf("Stability = %f, want %f", got.Stability, wantS)
	}
	if got.Difficulty < 1 || got.Difficulty > 10 {
		t.Errorf("Difficulty = %f, out of [1,10]", got.Difficulty)
	}
	if got.Reps != 1 {
		t.Errorf("Reps = %d, want 1", got.Reps)
	}
	if got.Lapses != 0 {
		t.Errorf("Lapses = %d, want 0", got.Lapses)
	}
}

func TestReviewReviewCardAgainLapses(t *testing.T) {
	params := DefaultParameters()
	now := time.Date(2026, 1, 21, 9, 0, 0, 0, time.UTC)
	lastReview := now.Add(-20 * 24 * time.Hour)
	state := domain.MemoryState{
		UserKey:       "learner-1",
		ItemID:        "item-1",
		State:         domain.CardStateReview,
		Stability:     10,
		Difficulty:    5,
		Reps:          3,
		Lapses:        0,
		ScheduledDays: 20,
		ElapsedDays:   20,
		Due:           now,
		LastReview:    &lastReview,
	}

	got, err := Review(params, state, domain.ReviewGradeAgain, now)
	if err != nil {
		t.Fatalf("Review returned error: %v", err)
	}
	if got.State != domain.CardStateRelearning {
		t.Errorf("State = %v, want RELEARNING", got.State)
	}
	if got.Lapses != 1 {
		t.Errorf("Lapses = %d, want 1", got.Lapses)
	}
	if got.ScheduledDays != 0 {
		t.Errorf("ScheduledDays = %d, want 0", got.ScheduledDays)
	}
	if !got.Due.Equal(now.Add(10 * time.Minute)) {
		t.Errorf("Due = %v, want now+10min", got.Due)
	}
	// Post-lapse stability for S=10, D=5, 20 days elapsed is ≈ 22.41: the
	// formula does not force it below the pre-lapse value.
	w := params.W
	r := Retrievability(20, 10)
	wantS := w[8] * math.Pow(5, -w[9]) * (math.Pow(11, w[10]) - 1) * math.Exp((1-r)*w[11])
	if math.Abs(got.Stability-wantS) > epsilon {
		t.Errorf("Stability after lapse = %f, want %f", got.Stability, wantS)
	}
}

func TestReviewInvalidRatingRejected(t *testing.T) {
	params := DefaultParameters()
	state := domain.NewMemoryState("learner-1", "item-1")
	_, err := Review(params, state, domain.ReviewGrade(9), time.Now())
	if err != domain.ErrInvalidRating {
		t.Errorf("err = %v, want ErrInvalidRating", err)
	}
}

func TestReviewDeterministic(t *testing.T) {
	params := DefaultParameters()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	state := domain.NewMemoryState("learner-1", "item-1")

	a, err := Review(params, state, domain.ReviewGradeGood, now)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Review(params, state, domain.ReviewGradeGood, now)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Review is not deterministic: %+v != %+v", a, b)
	}
}

func TestReviewDifficultyStaysBounded(t *testing.T) {
	params := DefaultParameters()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	state := domain.NewMemoryState("learner-1", "item-1")
	ratings := []domain.ReviewGrade{
		domain.ReviewGradeAgain, domain.ReviewGradeGood, domain.ReviewGradeAgain,
		domain.ReviewGradeEasy, domain.ReviewGradeHard, domain.ReviewGradeGood,
	}
	var err error
	for i, r := range ratings {
		state, err = Review(params, state, r, now.Add(time.Duration(i)*24*time.Hour))
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if state.Difficulty < 1 || state.Difficulty > 10 {
			t.Fatalf("step %d: difficulty out of range: %f", i, state.Difficulty)
		}
		if state.ScheduledDays > params.MaxIntervalDays {
			t.Fatalf("step %d: interval exceeds max: %d", i, state.ScheduledDays)
		}
	}
}

func TestReviewLearningAgainAlwaysIncrementsLapses(t *testing.T) {
	params := DefaultParameters()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	state := domain.MemoryState{
		UserKey: "learner-1", ItemID: "item-1",
		State: domain.CardStateLearning, Stability: 1, Difficulty: 5,
	}
	got, err := Review(params, state, domain.ReviewGradeAgain, now)
	if err != nil {
		t.Fatal(err)
	}
	if got.Lapses != state.Lapses+1 {
		t.Errorf("Lapses = %d, want %d", got.Lapses, state.Lapses+1)
	}
	if got.State != domain.CardStateLearning {
		t.Errorf("State = %v, want LEARNING", got.State)
	}
}

func TestReviewUnknownStateErrors(t *testing.T) {
	params := DefaultParameters()
	state := domain.MemoryState{State: domain.CardState("BOGUS")}
	_, err := Review(params, state, domain.ReviewGradeGood, time.Now())
	if err == nil {
		t.Error("expected error for unknown card state")
	}
}
