package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/heartmarshall/myenglish-backend/internal/composer"
	"github.com/heartmarshall/myenglish-backend/internal/domain"
	"github.com/heartmarshall/myenglish-backend/internal/review"
)

type reviewServiceMock struct {
	nextSessionFn    func(ctx context.Context, userKey string, count int) (composer.Result, error)
	reviewBatchFn    func(ctx context.Context, inputs []review.ReviewInput) (review.ReviewOutcome, error)
	startPlacementFn func(ctx context.Context, in review.StartPlacementInput) (review.StartPlacementResult, error)
	answerFn         func(ctx context.Context, in review.AnswerPlacementInput) (review.AnswerPlacementResult, error)
	undoFn           func(ctx context.Context, in review.UndoInput) (domain.MemoryState, error)
	dashboardFn      func(ctx context.Context, userKey string) (composer.Dashboard, error)
}

func (m *reviewServiceMock) NextSession(ctx context.Context, userKey string, count int) (composer.Result, error) {
	return m.nextSessionFn(ctx, userKey, count)
}

func (m *reviewServiceMock) ReviewBatch(ctx context.Context, inputs []review.ReviewInput) (review.ReviewOutcome, error) {
	return m.reviewBatchFn(ctx, inputs)
}

func (m *reviewServiceMock) StartPlacement(ctx context.Context, in review.StartPlacementInput) (review.StartPlacementResult, error) {
	return m.startPlacementFn(ctx, in)
}

func (m *reviewServiceMock) AnswerPlacement(ctx context.Context, in review.AnswerPlacementInput) (review.AnswerPlacementResult, error) {
	return m.answerFn(ctx, in)
}

func (m *reviewServiceMock) UndoReview(ctx context.Context, in review.UndoInput) (domain.MemoryState, error) {
	return m.undoFn(ctx, in)
}

func (m *reviewServiceMock) Dashboard(ctx context.Context, userKey string) (composer.Dashboard, error) {
	return m.dashboardFn(ctx, userKey)
}

type learnerStoreMock struct {
	learner domain.Learner
	err     error
}

func (m *learnerStoreMock) GetLearner(_ context.Context, userKey string) (domain.Learner, error) {
	if m.err != nil {
		return domain.Learner{}, m.err
	}
	return m.learner, nil
}

func TestNextSession_ReturnsComposedBatch(t *testing.T) {
	t.Parallel()

	svc := &reviewServiceMock{
		nextSessionFn: func(_ context.Context, userKey string, count int) (composer.Result, error) {
			if userKey != "learner-1" || count != 20 {
				t.Fatalf("unexpected call: %s %d", userKey, count)
			}
			return composer.Result{
				Items:     []domain.Item{{ID: "item-1", Language: "ru", Type: domain.ItemTypeVocabulary}},
				Breakdown: composer.Breakdown{Due: 1, Total: 1},
				Band:      composer.Band{Lo: -1, Hi: 1},
			}, nil
		},
	}
	learners := &learnerStoreMock{learner: domain.Learner{UserKey: "learner-1", CEFR: domain.A2}}
	h := NewReviewHandler(svc, learners, nil)

	body, _ := json.Marshal(nextSessionRequest{User: "learner-1", Count: 20})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/next", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.NextSession(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp nextSessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.UserCEFR != domain.A2 {
		t.Errorf("expected user_cefr A2, got %s", resp.UserCEFR)
	}
	if len(resp.Items) != 1 || resp.Items[0].ID != "item-1" {
		t.Errorf("unexpected items: %+v", resp.Items)
	}
}

func TestNextSession_MissingUserIsBadRequest(t *testing.T) {
	t.Parallel()

	h := NewReviewHandler(&reviewServiceMock{}, &learnerStoreMock{}, nil)

	body, _ := json.Marshal(nextSessionRequest{Count: 10})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/next", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.NextSession(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestReviews_ReportsUpdatedAndErrors(t *testing.T) {
	t.Parallel()

	svc := &reviewServiceMock{
		reviewBatchFn: func(_ context.Context, inputs []review.ReviewInput) (review.ReviewOutcome, error) {
			if len(inputs) != 1 || inputs[0].ItemID != "item-1" {
				t.Fatalf("unexpected inputs: %+v", inputs)
			}
			return review.ReviewOutcome{
				Updated: 1,
				Errors:  []review.ReviewError{{ItemID: "item-2", Err: domain.ErrUnknownItem}},
			}, nil
		},
	}
	h := NewReviewHandler(svc, &learnerStoreMock{}, nil)

	body, _ := json.Marshal([]reviewInputDTO{
		{ItemID: "item-1", Rating: 3, User: "learner-1"},
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/reviews", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Reviews(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp reviewBatchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Updated != 1 {
		t.Errorf("expected updated=1, got %d", resp.Updated)
	}
	if len(resp.Errors) != 1 || resp.Errors[0].ItemID != "item-2" {
		t.Errorf("unexpected errors: %+v", resp.Errors)
	}
}

func TestPlacementStart_NoCandidatesReturns409(t *testing.T) {
	t.Parallel()

	svc := &reviewServiceMock{
		startPlacementFn: func(_ context.Context, _ review.StartPlacementInput) (review.StartPlacementResult, error) {
			return review.StartPlacementResult{}, domain.ErrNoPlacementItems
		},
	}
	h := NewReviewHandler(svc, &learnerStoreMock{}, nil)

	body, _ := json.Marshal(startPlacementRequest{User: "learner-1", Language: "ru"})
	req := httptest.NewRequest(http.MethodPost, "/v1/placement/start", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.PlacementStart(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestPlacementAnswer_CompleteReturnsResults(t *testing.T) {
	t.Parallel()

	svc := &reviewServiceMock{
		answerFn: func(_ context.Context, in review.AnswerPlacementInput) (review.AnswerPlacementResult, error) {
			if in.UserAnswer != "3" {
				t.Fatalf("unexpected user_answer: %s", in.UserAnswer)
			}
			return review.AnswerPlacementResult{
				Complete:       true,
				FinalCEFR:      domain.B1,
				FinalTheta:     0.1,
				ItemsCompleted: 8,
				KnownWords:     6,
			}, nil
		},
	}
	h := NewReviewHandler(svc, &learnerStoreMock{}, nil)

	body, _ := json.Marshal(answerPlacementRequest{SessionID: "sess-1", ItemID: "item-1", UserAnswer: "3"})
	req := httptest.NewRequest(http.MethodPost, "/v1/placement/answer", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.PlacementAnswer(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp answerPlacementResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Complete || resp.Results == nil {
		t.Fatalf("expected complete results, got %+v", resp)
	}
	if resp.Results.CEFRLevel != domain.B1 || resp.Results.KnownWords != 6 {
		t.Errorf("unexpected results: %+v", resp.Results)
	}
}

func TestReviewUndo_ReturnsRestoredState(t *testing.T) {
	t.Parallel()

	svc := &reviewServiceMock{
		undoFn: func(_ context.Context, in review.UndoInput) (domain.MemoryState, error) {
			if in.UserKey != "learner-1" || in.ItemID != "item-1" {
				t.Fatalf("unexpected call: %+v", in)
			}
			return domain.MemoryState{UserKey: "learner-1", ItemID: "item-1", State: domain.CardStateReview, Reps: 2}, nil
		},
	}
	h := NewReviewHandler(svc, &learnerStoreMock{}, nil)

	body, _ := json.Marshal(undoReviewRequest{User: "learner-1", ItemID: "item-1"})
	req := httptest.NewRequest(http.MethodPost, "/v1/reviews/undo", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.ReviewUndo(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp undoReviewResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ItemID != "item-1" || resp.Reps != 2 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestReviewUndo_NeverReviewedReturnsNotFound(t *testing.T) {
	t.Parallel()

	svc := &reviewServiceMock{
		undoFn: func(_ context.Context, _ review.UndoInput) (domain.MemoryState, error) {
			return domain.MemoryState{}, domain.ErrNotFound
		},
	}
	h := NewReviewHandler(svc, &learnerStoreMock{}, nil)

	body, _ := json.Marshal(undoReviewRequest{User: "learner-1", ItemID: "item-1"})
	req := httptest.NewRequest(http.MethodPost, "/v1/reviews/undo", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.ReviewUndo(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDashboard_ReturnsQueueBreakdown(t *testing.T) {
	t.Parallel()

	svc := &reviewServiceMock{
		dashboardFn: func(_ context.Context, userKey string) (composer.Dashboard, error) {
			if userKey != "learner-1" {
				t.Fatalf("unexpected user: %s", userKey)
			}
			return composer.Dashboard{
				DueCount: 5, NewCount: 3, ReviewedToday: 2, Streak: 4,
				StatusCounts: map[domain.CardState]int{domain.CardStateReview: 5},
			}, nil
		},
	}
	h := NewReviewHandler(svc, &learnerStoreMock{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard?user=learner-1", nil)
	rec := httptest.NewRecorder()

	h.Dashboard(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp dashboardResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.DueCount != 5 || resp.Streak != 4 || resp.StatusCounts["REVIEW"] != 5 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestDashboard_MissingUserIsBadRequest(t *testing.T) {
	t.Parallel()

	h := NewReviewHandler(&reviewServiceMock{}, &learnerStoreMock{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
	rec := httptest.NewRecorder()

	h.Dashboard(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPlacementAnswer_UnknownSessionReturnsConflict(t *testing.T) {
	t.Parallel()

	svc := &reviewServiceMock{
		answerFn: func(_ context.Context, _ review.AnswerPlacementInput) (review.AnswerPlacementResult, error) {
			return review.AnswerPlacementResult{}, errors.Join(domain.ErrSessionUnavailable)
		},
	}
	h := NewReviewHandler(svc, &learnerStoreMock{}, nil)

	body, _ := json.Marshal(answerPlacementRequest{SessionID: "sess-1", ItemID: "item-1", UserAnswer: "2"})
	req := httptest.NewRequest(http.MethodPost, "/v1/placement/answer", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.PlacementAnswer(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}
