package db

import (
	"context"
	"fmt"

	"github.com/adamavenir/quill/internal/types"
)

// GetSubtree returns a message and all of its transitive replies in one
// query, ordered oldest first. UNION (not UNION ALL) keeps the recursion
// finite even if the stored graph contains a cycle.
func GetSubtree(ctx context.Context, db DBTX, rootID string) ([]types.Message, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		WITH RECURSIVE subtree(guid) AS (
			SELECT guid FROM quill_messages WHERE guid = ?
			UNION
			SELECT child.guid FROM quill_messages child
			JOIN subtree s ON child.parent_guid = s.guid
		)
		SELECT %s FROM quill_messages m
		JOIN subtree s ON s.guid = m.guid
		ORDER BY m.created_at ASC, m.rowid ASC
	`, messageColumnsAliased), rootID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}
