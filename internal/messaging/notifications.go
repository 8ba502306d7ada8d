package messaging

import (
	"context"
	"database/sql"

	"github.com/adamavenir/quill/internal/db"
	"github.com/adamavenir/quill/internal/types"
)

// Notifications lists a user's notifications, newest first.
func (s *Service) Notifications(ctx context.Context, userID string, unreadOnly bool) ([]types.Notification, error) {
	if _, err := requireUser(ctx, s.db, userID); err != nil {
		return nil, err
	}
	notifications, err := db.GetNotificationsForUser(ctx, s.db, userID, unreadOnly)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []types.Notification{}
	}
	return notifications, nil
}

// MarkNotificationRead flips a notification's read flag. Only its target
// user may do so.
func (s *Service) MarkNotificationRead(ctx context.Context, notificationID, userID string) (types.Notification, error) {
	log := s.opLogger("mark_notification_read")
	var notification *types.Notification
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		notification, err = db.GetNotification(ctx, tx, notificationID)
		if err != nil {
			return err
		}
		if notification == nil {
			return notFound("notification", notificationID)
		}
		if notification.UserID != userID {
			return ErrNotParticipant
		}
		if _, err := db.MarkNotificationRead(ctx, tx, notificationID); err != nil {
			return err
		}
		notification.Read = true
		return nil
	})
	if err != nil {
		return types.Notification{}, s.fail(log, "mark_notification_read", err)
	}
	return *notification, nil
}
