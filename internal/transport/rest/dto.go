package rest

import (
	"time"

	"github.com/heartmarshall/myenglish-backend/internal/composer"
	"github.com/heartmarshall/myenglish-backend/internal/domain"
	"github.com/heartmarshall/myenglish-backend/internal/review"
)

// itemDTO is the wire shape of a domain.Item (spec §6 embeds items verbatim
// in every response that returns one).
type itemDTO struct {
	ID         string   `json:"id"`
	Language   string   `json:"language"`
	Type       string   `json:"type"`
	TargetWord string   `json:"target_word"`
	Sentence   string   `json:"sentence,omitempty"`
	ThetaItem  *float64 `json:"theta_item,omitempty"`
}

func toItemDTO(it domain.Item) itemDTO {
	dto := itemDTO{
		ID:         it.ID,
		Language:   it.Language,
		Type:       string(it.Type),
		TargetWord: it.Payload.TargetWord,
		Sentence:   it.Payload.Sentence,
	}
	if it.Payload.HasTheta {
		theta := it.Payload.ThetaItem
		dto.ThetaItem = &theta
	}
	return dto
}

// --- sessions/next -----------------------------------------------------------

type nextSessionRequest struct {
	User  string `json:"user"`
	Count int    `json:"count"`
}

type breakdownDTO struct {
	Due      int `json:"due"`
	Learning int `json:"learning"`
	New      int `json:"new"`
	Total    int `json:"total"`
}

type nextSessionResponse struct {
	Items     []itemDTO    `json:"items"`
	UserCEFR  domain.CEFR  `json:"user_cefr"`
	Breakdown breakdownDTO `json:"breakdown"`
	Band      [2]float64   `json:"band"`
}

func toNextSessionResponse(cefr domain.CEFR, result composer.Result) nextSessionResponse {
	items := make([]itemDTO, len(result.Items))
	for i, it := range result.Items {
		items[i] = toItemDTO(it)
	}
	return nextSessionResponse{
		Items:    items,
		UserCEFR: cefr,
		Breakdown: breakdownDTO{
			Due:      result.Breakdown.Due,
			Learning: result.Breakdown.Learning,
			New:      result.Breakdown.New,
			Total:    result.Breakdown.Total,
		},
		Band: [2]float64{result.Band.Lo, result.Band.Hi},
	}
}

// --- reviews -------------------------------------------------------------------

type reviewInputDTO struct {
	ItemID         string `json:"item_id"`
	Rating         int    `json:"rating"`
	ResponseTimeMs int    `json:"response_time_ms"`
	User           string `json:"user"`
}

type reviewErrorDTO struct {
	ItemID string `json:"item_id"`
	Error  string `json:"error"`
}

type reviewBatchResponse struct {
	Updated int              `json:"updated"`
	Errors  []reviewErrorDTO `json:"errors,omitempty"`
}

func toReviewInputs(in []reviewInputDTO) []review.ReviewInput {
	out := make([]review.ReviewInput, len(in))
	for i, r := range in {
		out[i] = review.ReviewInput{
			UserKey:        r.User,
			ItemID:         r.ItemID,
			Rating:         domain.ReviewGrade(r.Rating),
			ResponseTimeMs: r.ResponseTimeMs,
		}
	}
	return out
}

func toReviewBatchResponse(outcome review.ReviewOutcome) reviewBatchResponse {
	resp := reviewBatchResponse{Updated: outcome.Updated}
	for _, e := range outcome.Errors {
		resp.Errors = append(resp.Errors, reviewErrorDTO{ItemID: e.ItemID, Error: e.Err.Error()})
	}
	return resp
}

// --- placement/start -------------------------------------------------------------

type startPlacementRequest struct {
	User         string       `json:"user"`
	Language     string       `json:"language"`
	ClaimedLevel *domain.CEFR `json:"claimed_level,omitempty"`
}

type progressDTO struct {
	ItemsCompleted int         `json:"items_completed"`
	EstimatedLevel domain.CEFR `json:"estimated_level"`
	CI             [2]float64  `json:"ci"`
}

type startPlacementResponse struct {
	SessionID string      `json:"session_id"`
	Item      itemDTO     `json:"item"`
	Progress  progressDTO `json:"progress"`
}

func toStartPlacementResponse(r review.StartPlacementResult) startPlacementResponse {
	return startPlacementResponse{
		SessionID: r.SessionID,
		Item:      toItemDTO(r.Item),
		Progress: progressDTO{
			ItemsCompleted: r.ItemsCompleted,
			EstimatedLevel: r.EstimatedLevel,
			CI:             [2]float64{r.CILo, r.CIHi},
		},
	}
}

// --- placement/answer -------------------------------------------------------------

type answerPlacementRequest struct {
	SessionID      string `json:"session_id"`
	ItemID         string `json:"item_id"`
	UserAnswer     string `json:"user_answer"`
	ResponseTimeMs int    `json:"response_time_ms"`
}

type feedbackDTO struct {
	WasCorrect    bool   `json:"was_correct"`
	CorrectAnswer string `json:"correct_answer"`
}

type placementResultsDTO struct {
	CEFRLevel      domain.CEFR `json:"cefr_level"`
	Theta          float64     `json:"theta"`
	CI             [2]float64  `json:"ci"`
	ItemsCompleted int         `json:"items_completed"`
	KnownWords     int         `json:"known_words"`
}

type answerPlacementResponse struct {
	Complete bool                 `json:"complete"`
	Item     *itemDTO             `json:"item,omitempty"`
	Feedback *feedbackDTO         `json:"feedback,omitempty"`
	Progress *progressDTO         `json:"progress,omitempty"`
	Results  *placementResultsDTO `json:"results,omitempty"`
}

// --- reviews/undo -------------------------------------------------------------

type undoReviewRequest struct {
	User   string `json:"user"`
	ItemID string `json:"item_id"`
}

type undoReviewResponse struct {
	ItemID     string    `json:"item_id"`
	State      string    `json:"state"`
	Step       int       `json:"step"`
	Stability  float64   `json:"stability"`
	Difficulty float64   `json:"difficulty"`
	Reps       int       `json:"reps"`
	Lapses     int       `json:"lapses"`
	Due        time.Time `json:"due"`
}

func toUndoReviewResponse(m domain.MemoryState) undoReviewResponse {
	return undoReviewResponse{
		ItemID:     m.ItemID,
		State:      string(m.State),
		Step:       m.Step,
		Stability:  m.Stability,
		Difficulty: m.Difficulty,
		Reps:       m.Reps,
		Lapses:     m.Lapses,
		Due:        m.Due,
	}
}

// --- dashboard -------------------------------------------------------------

type dashboardResponse struct {
	DueCount      int            `json:"due_count"`
	NewCount      int            `json:"new_count"`
	ReviewedToday int            `json:"reviewed_today"`
	Streak        int            `json:"streak"`
	Accuracy      float64        `json:"accuracy"`
	StatusCounts  map[string]int `json:"status_counts"`
}

func toDashboardResponse(d composer.Dashboard) dashboardResponse {
	statusCounts := make(map[string]int, len(d.StatusCounts))
	for state, count := range d.StatusCounts {
		statusCounts[string(state)] = count
	}
	return dashboardResponse{
		DueCount:      d.DueCount,
		NewCount:      d.NewCount,
		ReviewedToday: d.ReviewedToday,
		Streak:        d.Streak,
		Accuracy:      d.Accuracy,
		StatusCounts:  statusCounts,
	}
}

func toAnswerPlacementResponse(r review.AnswerPlacementResult) answerPlacementResponse {
	if r.Complete {
		return answerPlacementResponse{
			Complete: true,
			Results: &placementResultsDTO{
				CEFRLevel:      r.FinalCEFR,
				Theta:          r.FinalTheta,
				CI:             [2]float64{r.CILo, r.CIHi},
				ItemsCompleted: r.ItemsCompleted,
				KnownWords:     r.KnownWords,
			},
		}
	}

	item := toItemDTO(r.NextItem)
	return answerPlacementResponse{
		Complete: false,
		Item:     &item,
		Feedback: &feedbackDTO{
			WasCorrect:    r.WasCorrect,
			CorrectAnswer: r.CorrectAnswer,
		},
		Progress: &progressDTO{
			ItemsCompleted: r.ItemsCompleted,
			EstimatedLevel: r.EstimatedLevel,
			CI:             [2]float64{r.CILo, r.CIHi},
		},
	}
}
