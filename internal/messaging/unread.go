package messaging

import (
	"context"
	"database/sql"

	"github.com/adamavenir/quill/internal/db"
	"github.com/adamavenir/quill/internal/types"
	"go.uber.org/zap"
)

// Unread returns the user's unread messages, newest first, as the
// restricted projection. Each call re-queries the store.
func (s *Service) Unread(ctx context.Context, userID string) ([]types.UnreadMessage, error) {
	if _, err := requireUser(ctx, s.db, userID); err != nil {
		return nil, err
	}
	messages, err := db.GetUnreadMessages(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []types.UnreadMessage{}
	}
	return messages, nil
}

// UnreadCount returns how many unread messages the user has.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if _, err := requireUser(ctx, s.db, userID); err != nil {
		return 0, err
	}
	return db.GetUnreadCount(ctx, s.db, userID)
}

// MarkRead flips the read flag of a message. Only its receiver may do so.
// Marking an already-read message keeps the original read time.
func (s *Service) MarkRead(ctx context.Context, messageID, userID string) (types.Message, error) {
	log := s.opLogger("mark_read")
	var msg *types.Message
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		msg, err = requireMessage(ctx, tx, messageID)
		if err != nil {
			return err
		}
		if msg.ReceiverID != userID {
			return ErrNotParticipant
		}
		if msg.Read {
			return nil
		}
		readAt := s.nowMillis()
		if _, err := db.MarkMessageRead(ctx, tx, msg.ID, readAt); err != nil {
			return err
		}
		msg.Read = true
		msg.ReadAt = &readAt
		return nil
	})
	if err != nil {
		return types.Message{}, s.fail(log, "mark_read", err)
	}
	log.Debug("message read", zap.String("message", msg.ID), zap.String("user", userID))
	return *msg, nil
}
