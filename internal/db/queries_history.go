package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/adamavenir/quill/internal/core"
	"github.com/adamavenir/quill/internal/types"
)

const historyColumns = `guid, message_guid, old_content, edited_by, archived_at`

// CreateMessageHistory appends a pre-image record. Rows are never updated.
func CreateMessageHistory(ctx context.Context, db DBTX, entry types.MessageHistory) (types.MessageHistory, error) {
	guid := entry.ID
	if guid == "" {
		var err error
		guid, err = generateUniqueGUIDForTable(ctx, db, "quill_message_history", core.PrefixHistory)
		if err != nil {
			return types.MessageHistory{}, err
		}
	}

	if _, err := db.ExecContext(ctx, `
		INSERT INTO quill_message_history (guid, message_guid, old_content, edited_by, archived_at)
		VALUES (?, ?, ?, ?, ?)
	`, guid, entry.MessageID, entry.OldContent, nullableValue(entry.EditedBy), entry.ArchivedAt); err != nil {
		return types.MessageHistory{}, err
	}

	entry.ID = guid
	return entry, nil
}

// GetMessageHistory returns archived pre-images for a message, oldest first.
func GetMessageHistory(ctx context.Context, db DBTX, messageID string) ([]types.MessageHistory, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM quill_message_history
		WHERE message_guid = ?
		ORDER BY archived_at ASC, rowid ASC
	`, historyColumns), messageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []types.MessageHistory
	for rows.Next() {
		var entry types.MessageHistory
		var editedBy sql.NullString
		if err := rows.Scan(&entry.ID, &entry.MessageID, &entry.OldContent, &editedBy, &entry.ArchivedAt); err != nil {
			return nil, err
		}
		entry.EditedBy = nullStringPtr(editedBy)
		history = append(history, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return history, nil
}

// DeleteHistoryByEditor removes history rows attributed to a user.
func DeleteHistoryByEditor(ctx context.Context, db DBTX, userID string) (int64, error) {
	result, err := db.ExecContext(ctx, "DELETE FROM quill_message_history WHERE edited_by = ?", userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
