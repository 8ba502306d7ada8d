package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/adamavenir/quill/internal/core"
	"github.com/adamavenir/quill/internal/types"
)

// messageColumns is the explicit column list for SELECT queries.
// This prevents column order issues when migrations add columns via ALTER TABLE.
const messageColumns = `guid, sender_guid, receiver_guid, content, created_at, edited, last_editor, parent_guid, is_read, read_at`

// messageColumnsAliased is the same but with m. prefix for JOINs.
const messageColumnsAliased = `m.guid, m.sender_guid, m.receiver_guid, m.content, m.created_at, m.edited, m.last_editor, m.parent_guid, m.is_read, m.read_at`

// CreateMessage inserts a new message. New messages are never edited or read.
func CreateMessage(ctx context.Context, db DBTX, message types.Message) (types.Message, error) {
	guid := message.ID
	if guid == "" {
		var err error
		guid, err = generateUniqueGUIDForTable(ctx, db, "quill_messages", core.PrefixMessage)
		if err != nil {
			return types.Message{}, err
		}
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO quill_messages (guid, sender_guid, receiver_guid, content, created_at, edited, last_editor, parent_guid, is_read, read_at)
		VALUES (?, ?, ?, ?, ?, 0, NULL, ?, 0, NULL)
	`, guid, message.SenderID, message.ReceiverID, message.Content, message.CreatedAt, nullableValue(message.ParentID))
	if err != nil {
		return types.Message{}, err
	}

	return types.Message{
		ID:         guid,
		SenderID:   message.SenderID,
		ReceiverID: message.ReceiverID,
		Content:    message.Content,
		CreatedAt:  message.CreatedAt,
		ParentID:   message.ParentID,
	}, nil
}

// GetMessage returns a message by GUID, or nil when absent.
func GetMessage(ctx context.Context, db DBTX, messageID string) (*types.Message, error) {
	row := db.QueryRowContext(ctx, "SELECT "+messageColumns+" FROM quill_messages WHERE guid = ?", messageID)
	message, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// GetMessageByPrefix returns a message by GUID prefix, or nil when nothing
// matches. Prefixes outside the GUID alphabet match nothing; a prefix shared
// by several messages returns ErrAmbiguousPrefix.
func GetMessageByPrefix(ctx context.Context, db DBTX, prefix string) (*types.Message, error) {
	normalized := strings.TrimPrefix(strings.ToLower(prefix), core.PrefixMessage+"-")
	if !core.IsGUIDPrefix(normalized) {
		return nil, nil
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM quill_messages
		WHERE guid LIKE ?
		ORDER BY created_at DESC
		LIMIT 2
	`, messageColumns), fmt.Sprintf("msg-%s%%", normalized))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}
	switch len(messages) {
	case 0:
		return nil, nil
	case 1:
		return &messages[0], nil
	default:
		return nil, ErrAmbiguousPrefix
	}
}

// UpdateMessageContent overwrites content and marks the message edited.
func UpdateMessageContent(ctx context.Context, db DBTX, messageID, content, editorID string) (int64, error) {
	result, err := db.ExecContext(ctx, `
		UPDATE quill_messages SET content = ?, edited = 1, last_editor = ? WHERE guid = ?
	`, content, editorID, messageID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// MarkMessageRead sets the read flag. Already-read messages keep their read_at.
func MarkMessageRead(ctx context.Context, db DBTX, messageID string, readAt int64) (int64, error) {
	result, err := db.ExecContext(ctx, `
		UPDATE quill_messages SET is_read = 1, read_at = ? WHERE guid = ? AND is_read = 0
	`, readAt, messageID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// GetInboxRoots returns root messages received by a user, newest first.
func GetInboxRoots(ctx context.Context, db DBTX, receiverID string) ([]types.Message, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM quill_messages
		WHERE receiver_guid = ? AND parent_guid IS NULL
		ORDER BY created_at DESC, rowid DESC
	`, messageColumns), receiverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

// GetRepliesFor returns direct replies of every given parent in one query,
// grouped by parent GUID. Each group is ordered oldest first.
func GetRepliesFor(ctx context.Context, db DBTX, parentIDs []string) (map[string][]types.Message, error) {
	grouped := make(map[string][]types.Message, len(parentIDs))
	parentIDs = dedupeStrings(parentIDs)
	if len(parentIDs) == 0 {
		return grouped, nil
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM quill_messages
		WHERE parent_guid IN (%s)
		ORDER BY created_at ASC, rowid ASC
	`, messageColumns, placeholders(len(parentIDs))), stringArgs(parentIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}
	for _, msg := range messages {
		parent := *msg.ParentID
		grouped[parent] = append(grouped[parent], msg)
	}
	return grouped, nil
}

// GetConversation returns every message exchanged between two users in
// chronological order.
func GetConversation(ctx context.Context, db DBTX, userA, userB string) ([]types.Message, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM quill_messages
		WHERE (sender_guid = ? AND receiver_guid = ?) OR (sender_guid = ? AND receiver_guid = ?)
		ORDER BY created_at ASC, rowid ASC
	`, messageColumns), userA, userB, userB, userA)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

// GetMessageCount returns the total number of stored messages.
func GetMessageCount(ctx context.Context, db DBTX) (int64, error) {
	row := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM quill_messages")
	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

type messageRow struct {
	GUID       string
	SenderID   string
	ReceiverID string
	Content    string
	CreatedAt  int64
	Edited     int
	LastEditor sql.NullString
	ParentID   sql.NullString
	IsRead     int
	ReadAt     sql.NullInt64
}

func (row messageRow) toMessage() types.Message {
	return types.Message{
		ID:         row.GUID,
		SenderID:   row.SenderID,
		ReceiverID: row.ReceiverID,
		Content:    row.Content,
		CreatedAt:  row.CreatedAt,
		Edited:     row.Edited != 0,
		LastEditor: nullStringPtr(row.LastEditor),
		ParentID:   nullStringPtr(row.ParentID),
		Read:       row.IsRead != 0,
		ReadAt:     nullIntPtr(row.ReadAt),
	}
}

func scanMessages(rows *sql.Rows) ([]types.Message, error) {
	var messages []types.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

func scanMessage(scanner interface{ Scan(dest ...any) error }) (types.Message, error) {
	var row messageRow
	if err := scanner.Scan(&row.GUID, &row.SenderID, &row.ReceiverID, &row.Content, &row.CreatedAt, &row.Edited, &row.LastEditor, &row.ParentID, &row.IsRead, &row.ReadAt); err != nil {
		return types.Message{}, err
	}
	return row.toMessage(), nil
}
