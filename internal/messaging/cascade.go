package messaging

import (
	"context"
	"database/sql"

	"github.com/adamavenir/quill/internal/db"
	"github.com/adamavenir/quill/internal/types"
	"go.uber.org/zap"
)

// cascadeStep is one cleanup statement of a deletion. count receives the
// number of affected rows.
type cascadeStep struct {
	name  string
	run   func(ctx context.Context, tx db.DBTX) (int64, error)
	count *int64
}

func (s *Service) runCascade(ctx context.Context, tx *sql.Tx, steps []cascadeStep) error {
	for _, step := range steps {
		n, err := step.run(ctx, tx)
		if err != nil {
			return failure(ErrCascadeFailure, step.name, err)
		}
		if step.count != nil {
			*step.count += n
		}
	}
	return nil
}

// DeleteUser removes a user and everything that references it in one
// transaction: notifications targeting the user, history attributed to the
// user, every message the user sent or received together with all replies
// beneath those messages, and last-editor references on surviving messages.
// Any failing step rolls everything back and the error matches
// ErrCascadeFailure.
func (s *Service) DeleteUser(ctx context.Context, userID string) (types.CascadeReport, error) {
	log := s.opLogger("delete_user")
	report := types.CascadeReport{UserID: userID}
	scope := db.UserMessagesScope(userID)

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := requireUser(ctx, tx, userID); err != nil {
			return err
		}
		return s.runCascade(ctx, tx, []cascadeStep{
			{"delete history by editor", func(ctx context.Context, tx db.DBTX) (int64, error) {
				return db.DeleteHistoryByEditor(ctx, tx, userID)
			}, &report.History},
			{"delete history of messages", func(ctx context.Context, tx db.DBTX) (int64, error) {
				return db.DeleteHistoryInScope(ctx, tx, scope)
			}, &report.History},
			{"delete notifications for user", func(ctx context.Context, tx db.DBTX) (int64, error) {
				return db.DeleteNotificationsForUser(ctx, tx, userID)
			}, &report.Notifications},
			{"delete notifications of messages", func(ctx context.Context, tx db.DBTX) (int64, error) {
				return db.DeleteNotificationsInScope(ctx, tx, scope)
			}, &report.Notifications},
			{"clear last editor", func(ctx context.Context, tx db.DBTX) (int64, error) {
				return db.ClearLastEditor(ctx, tx, userID)
			}, &report.EditorCleared},
			{"delete messages", func(ctx context.Context, tx db.DBTX) (int64, error) {
				return db.DeleteMessagesInScope(ctx, tx, scope)
			}, &report.Messages},
			{"delete user", func(ctx context.Context, tx db.DBTX) (int64, error) {
				return db.DeleteUserRow(ctx, tx, userID)
			}, nil},
		})
	})
	if err != nil {
		return types.CascadeReport{}, s.fail(log, "delete_user", err)
	}

	s.recordCascade(report)
	log.Info("user deleted",
		zap.String("user", userID),
		zap.Int64("messages", report.Messages),
		zap.Int64("notifications", report.Notifications),
		zap.Int64("history", report.History),
		zap.Int64("editor_cleared", report.EditorCleared),
	)
	return report, nil
}

// DeleteMessage removes a message with all replies beneath it, plus their
// notifications and history. Only the message's sender or receiver may
// delete it.
func (s *Service) DeleteMessage(ctx context.Context, messageID, userID string) (types.CascadeReport, error) {
	log := s.opLogger("delete_message")
	report := types.CascadeReport{UserID: userID}
	scope := db.MessageSubtreeScope(messageID)

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		msg, err := requireMessage(ctx, tx, messageID)
		if err != nil {
			return err
		}
		if msg.SenderID != userID && msg.ReceiverID != userID {
			return ErrNotParticipant
		}
		return s.runCascade(ctx, tx, []cascadeStep{
			{"delete history of messages", func(ctx context.Context, tx db.DBTX) (int64, error) {
				return db.DeleteHistoryInScope(ctx, tx, scope)
			}, &report.History},
			{"delete notifications of messages", func(ctx context.Context, tx db.DBTX) (int64, error) {
				return db.DeleteNotificationsInScope(ctx, tx, scope)
			}, &report.Notifications},
			{"delete messages", func(ctx context.Context, tx db.DBTX) (int64, error) {
				return db.DeleteMessagesInScope(ctx, tx, scope)
			}, &report.Messages},
		})
	})
	if err != nil {
		return types.CascadeReport{}, s.fail(log, "delete_message", err)
	}

	s.recordCascade(report)
	log.Info("message deleted",
		zap.String("message", messageID),
		zap.String("user", userID),
		zap.Int64("messages", report.Messages),
	)
	return report, nil
}

func (s *Service) recordCascade(report types.CascadeReport) {
	s.metrics.CascadeDeleted.WithLabelValues("message").Add(float64(report.Messages))
	s.metrics.CascadeDeleted.WithLabelValues("notification").Add(float64(report.Notifications))
	s.metrics.CascadeDeleted.WithLabelValues("history").Add(float64(report.History))
}
