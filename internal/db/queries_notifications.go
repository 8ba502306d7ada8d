package db

import (
	"context"
	"database/sql"

	"github.com/adamavenir/quill/internal/core"
	"github.com/adamavenir/quill/internal/types"
)

const notificationColumns = `guid, user_guid, message_guid, text, is_read, created_at`

// CreateNotification inserts a notification for a user.
func CreateNotification(ctx context.Context, db DBTX, notification types.Notification) (types.Notification, error) {
	guid := notification.ID
	if guid == "" {
		var err error
		guid, err = generateUniqueGUIDForTable(ctx, db, "quill_notifications", core.PrefixNotification)
		if err != nil {
			return types.Notification{}, err
		}
	}

	if _, err := db.ExecContext(ctx, `
		INSERT INTO quill_notifications (guid, user_guid, message_guid, text, is_read, created_at)
		VALUES (?, ?, ?, ?, 0, ?)
	`, guid, notification.UserID, notification.MessageID, notification.Text, notification.CreatedAt); err != nil {
		return types.Notification{}, err
	}

	return types.Notification{
		ID:        guid,
		UserID:    notification.UserID,
		MessageID: notification.MessageID,
		Text:      notification.Text,
		CreatedAt: notification.CreatedAt,
	}, nil
}

// GetNotification returns a notification by GUID, or nil when absent.
func GetNotification(ctx context.Context, db DBTX, notificationID string) (*types.Notification, error) {
	row := db.QueryRowContext(ctx, "SELECT "+notificationColumns+" FROM quill_notifications WHERE guid = ?", notificationID)
	notification, err := scanNotification(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// GetNotificationsForUser returns a user's notifications, newest first.
func GetNotificationsForUser(ctx context.Context, db DBTX, userID string, unreadOnly bool) ([]types.Notification, error) {
	query := "SELECT " + notificationColumns + " FROM quill_notifications WHERE user_guid = ?"
	if unreadOnly {
		query += " AND is_read = 0"
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []types.Notification
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notifications, nil
}

// GetNotificationsForMessage returns every notification referencing a message.
func GetNotificationsForMessage(ctx context.Context, db DBTX, messageID string) ([]types.Notification, error) {
	rows, err := db.QueryContext(ctx, "SELECT "+notificationColumns+" FROM quill_notifications WHERE message_guid = ? ORDER BY created_at ASC, rowid ASC", messageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []types.Notification
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkNotificationRead flips the read flag on one notification.
func MarkNotificationRead(ctx context.Context, db DBTX, notificationID string) (int64, error) {
	result, err := db.ExecContext(ctx, "UPDATE quill_notifications SET is_read = 1 WHERE guid = ? AND is_read = 0", notificationID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteNotificationsForUser removes notifications targeting a user.
func DeleteNotificationsForUser(ctx context.Context, db DBTX, userID string) (int64, error) {
	result, err := db.ExecContext(ctx, "DELETE FROM quill_notifications WHERE user_guid = ?", userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanNotification(scanner interface{ Scan(dest ...any) error }) (types.Notification, error) {
	var notification types.Notification
	var isRead int
	if err := scanner.Scan(&notification.ID, &notification.UserID, &notification.MessageID, &notification.Text, &isRead, &notification.CreatedAt); err != nil {
		return types.Notification{}, err
	}
	notification.Read = isRead != 0
	return notification, nil
}
