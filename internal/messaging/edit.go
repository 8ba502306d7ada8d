package messaging

import (
	"context"
	"database/sql"

	"github.com/adamavenir/quill/internal/db"
	"github.com/adamavenir/quill/internal/types"
	"go.uber.org/zap"
)

// EditInput replaces a message's content on behalf of EditorID.
type EditInput struct {
	MessageID string
	EditorID  string
	Content   string
}

// EditResult is the stored message after an edit. Archived is nil when the
// content was unchanged and nothing was written.
type EditResult struct {
	Message  types.Message         `json:"message"`
	Archived *types.MessageHistory `json:"archived,omitempty"`
}

// EditMessage compares the stored content with the new content inside one
// transaction. When they differ the old content is archived first and then
// overwritten; a failed archive aborts the edit with ErrArchiveFailure.
// Concurrent edits are last-write-wins: each one archives whatever was
// stored when its transaction started.
func (s *Service) EditMessage(ctx context.Context, in EditInput) (EditResult, error) {
	log := s.opLogger("edit")
	if err := validateContent(in.Content); err != nil {
		return EditResult{}, s.fail(log, "edit", err)
	}

	var result EditResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := requireUser(ctx, tx, in.EditorID); err != nil {
			return err
		}
		msg, err := requireMessage(ctx, tx, in.MessageID)
		if err != nil {
			return err
		}
		if msg.Content == in.Content {
			result = EditResult{Message: *msg}
			return nil
		}

		entry, err := db.CreateMessageHistory(ctx, tx, types.MessageHistory{
			MessageID:  msg.ID,
			OldContent: msg.Content,
			EditedBy:   &in.EditorID,
			ArchivedAt: s.nowMillis(),
		})
		if err != nil {
			return failure(ErrArchiveFailure, "insert history", err)
		}
		if _, err := db.UpdateMessageContent(ctx, tx, msg.ID, in.Content, in.EditorID); err != nil {
			return err
		}

		updated := *msg
		updated.Content = in.Content
		updated.Edited = true
		updated.LastEditor = &in.EditorID
		result = EditResult{Message: updated, Archived: &entry}
		return nil
	})
	if err != nil {
		return EditResult{}, s.fail(log, "edit", err)
	}

	if result.Archived == nil {
		s.metrics.EditsUnchanged.Inc()
		log.Debug("edit unchanged", zap.String("message", result.Message.ID))
		return result, nil
	}
	s.metrics.EditsArchived.Inc()
	log.Info("message edited",
		zap.String("message", result.Message.ID),
		zap.String("editor", in.EditorID),
		zap.String("history", result.Archived.ID),
	)
	return result, nil
}

// History returns the archived pre-images of a message, oldest first.
func (s *Service) History(ctx context.Context, messageID string) ([]types.MessageHistory, error) {
	if _, err := requireMessage(ctx, s.db, messageID); err != nil {
		return nil, err
	}
	return db.GetMessageHistory(ctx, s.db, messageID)
}
