package placement

import (
	"time"

	"github.com/heartmarshall/myenglish-backend/internal/domain"
)

// NewSession constructs the initial state of a placement session. If
// claimedLevel is non-nil, θ starts at that level's reference value instead
// of 0 (spec §4.2: "the θ for that class").
func NewSession(id, userKey, language string, claimedLevel *domain.CEFR, params Parameters, createdAt time.Time) domain.PlacementSession {
	theta := params.InitialTheta
	if claimedLevel != nil {
		theta = claimedLevel.Theta()
	}
	return domain.PlacementSession{
		ID:          id,
		UserKey:     userKey,
		Language:    language,
		Theta:       theta,
		SE:          params.InitialSE,
		UsedItemIDs: map[string]bool{},
		CreatedAt:   createdAt,
	}
}

// SelectNext picks the next item to administer from the candidate pool
// (items unused this session, with θ_item present). The caller is
// responsible for excluding already-used items from pool before calling.
// Returns domain.ErrNoPlacementItems if the pool is empty.
func SelectNext(params Parameters, session domain.PlacementSession, pool []domain.Item) (domain.Item, error) {
	if session.Complete {
		return domain.Item{}, domain.ErrSessionUnavailable
	}
	if len(pool) == 0 {
		return domain.Item{}, domain.ErrNoPlacementItems
	}
	idx := SelectItem(pool, session.Theta, params.Discrimination)
	return pool[idx], nil
}

// ApplyAnswer ingests one rating against the item last offered, updating
// (θ, SE), appending the response to the session's log, and deciding whether
// the session is now complete. poolEmptyAfter tells the engine whether the
// candidate pool would be empty for the *next* selection, per the stop rule's
// "candidate pool is empty" branch.
//
// The session's per-session sequence counter (domain.PlacementSession.NextSequence)
// enforces submission order (spec §5): callers must not call ApplyAnswer
// concurrently for the same session.
func ApplyAnswer(params Parameters, session domain.PlacementSession, item domain.Item, rating domain.ReviewGrade, now time.Time, poolEmptyAfter bool) (domain.PlacementSession, error) {
	if session.Complete {
		return domain.PlacementSession{}, domain.ErrSessionUnavailable
	}
	if !rating.IsValid() {
		return domain.PlacementSession{}, domain.ErrInvalidRating
	}

	result := Update(params, session.Theta, session.SE, item.Payload.ThetaItem, rating)

	session.Responses = append(session.Responses, domain.PlacementResponse{
		ItemID:      item.ID,
		Rating:      rating,
		ThetaBefore: result.ThetaBefore,
		ThetaAfter:  result.ThetaAfter,
		SEBefore:    result.SEBefore,
		SEAfter:     result.SEAfter,
		Correct:     result.Correct,
		Sequence:    session.NextSequence(),
	})
	if session.UsedItemIDs == nil {
		session.UsedItemIDs = map[string]bool{}
	}
	session.UsedItemIDs[item.ID] = true

	session.Theta = result.ThetaAfter
	session.SE = result.SEAfter
	session.ItemsCompleted++

	if ShouldStop(params, session.ItemsCompleted, session.SE, poolEmptyAfter) {
		session.Complete = true
		session.FinalCEFR = domain.CEFRFromTheta(session.Theta)
	}

	return session, nil
}

// Cancel marks a session complete with its last-known (θ, SE) frozen and the
// final CEFR computed from that θ (spec §5: cancellation semantics).
func Cancel(session domain.PlacementSession) domain.PlacementSession {
	session.Complete = true
	session.FinalCEFR = domain.CEFRFromTheta(session.Theta)
	return session
}
