package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/myenglish-backend/internal/composer"
	"github.com/heartmarshall/myenglish-backend/internal/domain"
	"github.com/heartmarshall/myenglish-backend/internal/review"
)

// reviewService is the subset of *review.Service the HTTP layer depends on,
// narrower than the concrete type so handlers can be tested against a fake.
type reviewService interface {
	NextSession(ctx context.Context, userKey string, count int) (composer.Result, error)
	ReviewBatch(ctx context.Context, inputs []review.ReviewInput) (review.ReviewOutcome, error)
	StartPlacement(ctx context.Context, in review.StartPlacementInput) (review.StartPlacementResult, error)
	AnswerPlacement(ctx context.Context, in review.AnswerPlacementInput) (review.AnswerPlacementResult, error)
	UndoReview(ctx context.Context, in review.UndoInput) (domain.MemoryState, error)
	Dashboard(ctx context.Context, userKey string) (composer.Dashboard, error)
}

// learnerStore is the minimal read needed to report a learner's current
// CEFR alongside a composed session (spec §6: `sessions/next` response
// includes `user_cefr`).
type learnerStore interface {
	GetLearner(ctx context.Context, userKey string) (domain.Learner, error)
}

// ReviewHandler serves the four core operations of spec §6 over JSON.
type ReviewHandler struct {
	svc      reviewService
	learners learnerStore
	logger   *slog.Logger
}

// NewReviewHandler creates a ReviewHandler.
func NewReviewHandler(svc reviewService, learners learnerStore, logger *slog.Logger) *ReviewHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewHandler{svc: svc, learners: learners, logger: logger.With("handler", "review")}
}

// NextSession handles `POST /v1/sessions/next`.
func (h *ReviewHandler) NextSession(w http.ResponseWriter, r *http.Request) {
	var req nextSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewValidationError("body", "invalid JSON"))
		return
	}
	if req.User == "" {
		writeError(w, domain.NewValidationError("user", "required"))
		return
	}

	ctx := r.Context()
	result, err := h.svc.NextSession(ctx, req.User, req.Count)
	if err != nil {
		writeError(w, err)
		return
	}

	learner, err := h.learners.GetLearner(ctx, req.User)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toNextSessionResponse(learner.CEFR, result))
}

// Reviews handles `POST /v1/reviews`. The request body is a JSON array per
// spec §6, not a wrapped object.
func (h *ReviewHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	var req []reviewInputDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewValidationError("body", "invalid JSON"))
		return
	}

	outcome, err := h.svc.ReviewBatch(r.Context(), toReviewInputs(req))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toReviewBatchResponse(outcome))
}

// PlacementStart handles `POST /v1/placement/start`.
func (h *ReviewHandler) PlacementStart(w http.ResponseWriter, r *http.Request) {
	var req startPlacementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewValidationError("body", "invalid JSON"))
		return
	}
	if req.User == "" || req.Language == "" {
		writeError(w, domain.NewValidationError("language", "user and language are required"))
		return
	}

	result, err := h.svc.StartPlacement(r.Context(), review.StartPlacementInput{
		UserKey:      req.User,
		Language:     req.Language,
		ClaimedLevel: req.ClaimedLevel,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toStartPlacementResponse(result))
}

// PlacementAnswer handles `POST /v1/placement/answer`.
func (h *ReviewHandler) PlacementAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerPlacementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewValidationError("body", "invalid JSON"))
		return
	}
	if req.SessionID == "" || req.ItemID == "" {
		writeError(w, domain.NewValidationError("session_id", "session_id and item_id are required"))
		return
	}

	result, err := h.svc.AnswerPlacement(r.Context(), review.AnswerPlacementInput{
		SessionID:      req.SessionID,
		ItemID:         req.ItemID,
		UserAnswer:     req.UserAnswer,
		ResponseTimeMs: req.ResponseTimeMs,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAnswerPlacementResponse(result))
}

// ReviewUndo handles `POST /v1/reviews/undo`. Not named by spec §6 — a
// supplemented operation that reverts the most recent review of one item
// within its undo window.
func (h *ReviewHandler) ReviewUndo(w http.ResponseWriter, r *http.Request) {
	var req undoReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewValidationError("body", "invalid JSON"))
		return
	}
	if req.User == "" || req.ItemID == "" {
		writeError(w, domain.NewValidationError("item_id", "user and item_id are required"))
		return
	}

	state, err := h.svc.UndoReview(r.Context(), review.UndoInput{UserKey: req.User, ItemID: req.ItemID})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUndoReviewResponse(state))
}

// Dashboard handles `GET /v1/dashboard?user=...`. Not named by spec §6 — a
// supplemented operation summarizing queue composition (SPEC_FULL.md §12).
func (h *ReviewHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userKey := r.URL.Query().Get("user")
	if userKey == "" {
		writeError(w, domain.NewValidationError("user", "required"))
		return
	}

	dash, err := h.svc.Dashboard(r.Context(), userKey)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDashboardResponse(dash))
}
