package db

import (
	"context"
	"fmt"
)

// MessageScope selects a set of seed messages plus every reply beneath them.
// Deleting a message must take its replies along, otherwise parent_guid would
// dangle.
type MessageScope struct {
	seed string
	args []any
}

// UserMessagesScope covers every message a user sent or received and all
// replies to those messages, whoever wrote them.
func UserMessagesScope(userID string) MessageScope {
	return MessageScope{seed: "sender_guid = ? OR receiver_guid = ?", args: []any{userID, userID}}
}

// MessageSubtreeScope covers one message and all of its replies.
func MessageSubtreeScope(messageID string) MessageScope {
	return MessageScope{seed: "guid = ?", args: []any{messageID}}
}

func (s MessageScope) with() string {
	return fmt.Sprintf(`WITH RECURSIVE scoped(guid) AS (
		SELECT guid FROM quill_messages WHERE %s
		UNION
		SELECT child.guid FROM quill_messages child
		JOIN scoped p ON child.parent_guid = p.guid
	)`, s.seed)
}

func (s MessageScope) exec(ctx context.Context, db DBTX, statement string) (int64, error) {
	result, err := db.ExecContext(ctx, s.with()+"\n"+statement, s.args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteHistoryInScope removes history rows of every scoped message.
func DeleteHistoryInScope(ctx context.Context, db DBTX, scope MessageScope) (int64, error) {
	return scope.exec(ctx, db, "DELETE FROM quill_message_history WHERE message_guid IN (SELECT guid FROM scoped)")
}

// DeleteNotificationsInScope removes notifications of every scoped message.
func DeleteNotificationsInScope(ctx context.Context, db DBTX, scope MessageScope) (int64, error) {
	return scope.exec(ctx, db, "DELETE FROM quill_notifications WHERE message_guid IN (SELECT guid FROM scoped)")
}

// DeleteMessagesInScope removes every scoped message.
func DeleteMessagesInScope(ctx context.Context, db DBTX, scope MessageScope) (int64, error) {
	return scope.exec(ctx, db, "DELETE FROM quill_messages WHERE guid IN (SELECT guid FROM scoped)")
}

// ClearLastEditor neutralizes last_editor references to a user on messages
// that survive the user's deletion.
func ClearLastEditor(ctx context.Context, db DBTX, userID string) (int64, error) {
	result, err := db.ExecContext(ctx, "UPDATE quill_messages SET last_editor = NULL WHERE last_editor = ?", userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
