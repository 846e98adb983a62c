package review

import (
	"context"

	"github.com/heartmarshall/myenglish-backend/internal/domain"
)

// UndoInput identifies the (learner, item) review to revert.
type UndoInput struct {
	UserKey string
	ItemID  string
}

// UndoReview reverts the most recent review of one item within the undo
// window: it restores the memory state that existed immediately before that
// review and removes the log entry, rather than rewriting history further
// back. Returns domain.ErrNotFound if the pair has never been reviewed, or
// domain.ErrValidation if the undo window has elapsed.
func (s *Service) UndoReview(ctx context.Context, in UndoInput) (domain.MemoryState, error) {
	last, ok, err := s.log.GetLastReviewLog(ctx, in.UserKey, in.ItemID)
	if err != nil {
		return domain.MemoryState{}, err
	}
	if !ok {
		return domain.MemoryState{}, domain.ErrNotFound
	}

	now := s.clock.Now()
	if now.Sub(last.Timestamp) > s.undoWindow {
		return domain.MemoryState{}, domain.NewValidationError("item_id", "undo window expired")
	}

	restored := domain.MemoryState{UserKey: in.UserKey, ItemID: in.ItemID}
	restored.Restore(last.PrevState)
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.memories.UpsertMemory(txCtx, restored); err != nil {
			return err
		}
		return s.log.DeleteLastReviewLog(txCtx, in.UserKey, in.ItemID)
	})
	if err != nil {
		return domain.MemoryState{}, err
	}

	s.logger.InfoContext(ctx, "review undone",
		"user_key", in.UserKey, "item_id", in.ItemID)

	return restored, nil
}
