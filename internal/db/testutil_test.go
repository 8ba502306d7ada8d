package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/adamavenir/quill/internal/types"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", DSN(path, 0))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func requireSchema(t *testing.T, db *sql.DB) {
	t.Helper()
	if err := InitSchema(db); err != nil {
		t.Fatalf("init schema: %v", err)
	}
}

func mustCreateUser(t *testing.T, db DBTX, username string) types.User {
	t.Helper()
	user, err := CreateUser(context.Background(), db, types.User{Username: username, CreatedAt: 1})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func mustCreateMessage(t *testing.T, db DBTX, msg types.Message) types.Message {
	t.Helper()
	created, err := CreateMessage(context.Background(), db, msg)
	if err != nil {
		t.Fatalf("create message: %v", err)
	}
	return created
}

func strPtr(value string) *string {
	return &value
}
