package db

import (
	"context"
	"database/sql"
	"fmt"
)

const tablesSQL = `
-- Users (identity collaborator)
CREATE TABLE IF NOT EXISTS quill_users (
  guid TEXT PRIMARY KEY,               -- e.g., "usr-x9y8z7w6"
  username TEXT NOT NULL UNIQUE,
  created_at INTEGER NOT NULL          -- unix ms
);

-- Direct messages; parent_guid links replies into a tree
CREATE TABLE IF NOT EXISTS quill_messages (
  guid TEXT PRIMARY KEY,               -- e.g., "msg-a1b2c3d4"
  sender_guid TEXT NOT NULL,
  receiver_guid TEXT NOT NULL,
  content TEXT NOT NULL,
  created_at INTEGER NOT NULL,         -- unix ms, immutable
  edited INTEGER NOT NULL DEFAULT 0,
  last_editor TEXT,                    -- user guid of the most recent editor
  parent_guid TEXT,                    -- null for root messages
  is_read INTEGER NOT NULL DEFAULT 0,
  read_at INTEGER,
  CHECK (parent_guid IS NULL OR parent_guid <> guid),
  FOREIGN KEY (sender_guid) REFERENCES quill_users(guid),
  FOREIGN KEY (receiver_guid) REFERENCES quill_users(guid),
  FOREIGN KEY (last_editor) REFERENCES quill_users(guid),
  FOREIGN KEY (parent_guid) REFERENCES quill_messages(guid) DEFERRABLE INITIALLY DEFERRED
);

-- Owed deliveries, one per created message
CREATE TABLE IF NOT EXISTS quill_notifications (
  guid TEXT PRIMARY KEY,               -- e.g., "ntf-a1b2c3d4"
  user_guid TEXT NOT NULL,             -- target (the message receiver)
  message_guid TEXT NOT NULL,
  text TEXT NOT NULL,
  is_read INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL,
  FOREIGN KEY (user_guid) REFERENCES quill_users(guid),
  FOREIGN KEY (message_guid) REFERENCES quill_messages(guid)
);

-- Append-only pre-images of edited messages
CREATE TABLE IF NOT EXISTS quill_message_history (
  guid TEXT PRIMARY KEY,               -- e.g., "hst-a1b2c3d4"
  message_guid TEXT NOT NULL,
  old_content TEXT NOT NULL,
  edited_by TEXT,
  archived_at INTEGER NOT NULL,
  FOREIGN KEY (message_guid) REFERENCES quill_messages(guid),
  FOREIGN KEY (edited_by) REFERENCES quill_users(guid)
);
`

const indexesSQL = `
CREATE INDEX IF NOT EXISTS idx_quill_messages_sender ON quill_messages(sender_guid);
CREATE INDEX IF NOT EXISTS idx_quill_messages_receiver ON quill_messages(receiver_guid, created_at);
CREATE INDEX IF NOT EXISTS idx_quill_messages_parent ON quill_messages(parent_guid);
CREATE INDEX IF NOT EXISTS idx_quill_messages_editor ON quill_messages(last_editor);
-- Unread index: a partial index, so the unread view needs no separate table
CREATE INDEX IF NOT EXISTS idx_quill_messages_unread ON quill_messages(receiver_guid, created_at) WHERE is_read = 0;

CREATE INDEX IF NOT EXISTS idx_quill_notifications_user ON quill_notifications(user_guid, is_read);
CREATE INDEX IF NOT EXISTS idx_quill_notifications_message ON quill_notifications(message_guid);

CREATE INDEX IF NOT EXISTS idx_quill_history_message ON quill_message_history(message_guid, archived_at);
CREATE INDEX IF NOT EXISTS idx_quill_history_editor ON quill_message_history(edited_by);

CREATE TRIGGER IF NOT EXISTS quill_messages_created_at_immutable
BEFORE UPDATE OF created_at ON quill_messages
WHEN NEW.created_at IS NOT OLD.created_at
BEGIN
  SELECT RAISE(ABORT, 'created_at is immutable');
END;

CREATE TRIGGER IF NOT EXISTS quill_messages_parent_immutable
BEFORE UPDATE OF parent_guid ON quill_messages
WHEN NEW.parent_guid IS NOT OLD.parent_guid
BEGIN
  SELECT RAISE(ABORT, 'parent_guid is immutable');
END;

CREATE TRIGGER IF NOT EXISTS quill_message_history_append_only
BEFORE UPDATE ON quill_message_history
BEGIN
  SELECT RAISE(ABORT, 'message history is append-only');
END;
`

// DBTX represents shared methods across sql.DB and sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// InitSchema initializes the quill schema.
func InitSchema(db *sql.DB) error {
	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := initSchemaWith(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func initSchemaWith(ctx context.Context, db DBTX) error {
	if _, err := db.ExecContext(ctx, tablesSQL); err != nil {
		return err
	}
	if err := migrateSchema(ctx, db); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, indexesSQL); err != nil {
		return err
	}
	return nil
}

// SchemaExists reports whether quill schema is present.
func SchemaExists(db *sql.DB) (bool, error) {
	row := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='quill_messages'
	`)
	var name string
	err := row.Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return name != "", nil
}

type tableColumn struct {
	Name    string
	ColType string
	NotNull int
	PK      int
}

func getTableInfo(ctx context.Context, db DBTX, table string) ([]tableColumn, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []tableColumn
	for rows.Next() {
		var col tableColumn
		var cid int
		var defaultValue sql.NullString
		if err := rows.Scan(&cid, &col.Name, &col.ColType, &col.NotNull, &defaultValue, &col.PK); err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return columns, nil
}

func hasColumn(columns []tableColumn, name string) bool {
	for _, col := range columns {
		if col.Name == name {
			return true
		}
	}
	return false
}

// migrateSchema upgrades databases created before read tracking and edit
// attribution existed.
func migrateSchema(ctx context.Context, db DBTX) error {
	messageColumns, err := getTableInfo(ctx, db, "quill_messages")
	if err != nil {
		return err
	}
	if !hasColumn(messageColumns, "is_read") {
		if _, err := db.ExecContext(ctx, "ALTER TABLE quill_messages ADD COLUMN is_read INTEGER NOT NULL DEFAULT 0"); err != nil {
			return err
		}
	}
	if !hasColumn(messageColumns, "read_at") {
		if _, err := db.ExecContext(ctx, "ALTER TABLE quill_messages ADD COLUMN read_at INTEGER"); err != nil {
			return err
		}
	}

	historyColumns, err := getTableInfo(ctx, db, "quill_message_history")
	if err != nil {
		return err
	}
	if !hasColumn(historyColumns, "edited_by") {
		if _, err := db.ExecContext(ctx, "ALTER TABLE quill_message_history ADD COLUMN edited_by TEXT REFERENCES quill_users(guid)"); err != nil {
			return err
		}
	}
	return nil
}
