package db

import (
	"context"
	"database/sql"

	"github.com/adamavenir/quill/internal/types"
)

// unreadColumns is the restricted projection served by the unread index.
const unreadColumns = `guid, sender_guid, receiver_guid, content, created_at, parent_guid`

// GetUnreadMessages returns unread messages received by a user, newest
// first. The predicate matches idx_quill_messages_unread.
func GetUnreadMessages(ctx context.Context, db DBTX, receiverID string) ([]types.UnreadMessage, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+unreadColumns+` FROM quill_messages
		WHERE receiver_guid = ? AND is_read = 0
		ORDER BY created_at DESC, rowid DESC
	`, receiverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []types.UnreadMessage
	for rows.Next() {
		var msg types.UnreadMessage
		var parent sql.NullString
		if err := rows.Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.CreatedAt, &parent); err != nil {
			return nil, err
		}
		msg.ParentID = nullStringPtr(parent)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

// GetUnreadCount returns how many unread messages a user has.
func GetUnreadCount(ctx context.Context, db DBTX, receiverID string) (int64, error) {
	row := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM quill_messages WHERE receiver_guid = ? AND is_read = 0", receiverID)
	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
