package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adamavenir/quill/internal/core"

	_ "modernc.org/sqlite"
)

const defaultBusyTimeout = 5 * time.Second

// DSN builds the modernc sqlite connection string. Pragmas go in the DSN so
// every pooled connection gets them, and transactions begin IMMEDIATE so a
// read-then-write inside one tx cannot interleave with another writer.
func DSN(path string, busyTimeout time.Duration) string {
	if busyTimeout <= 0 {
		busyTimeout = defaultBusyTimeout
	}
	params := url.Values{}
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", "journal_mode(WAL)")
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
	params.Set("_txlock", "immediate")
	return path + "?" + params.Encode()
}

// Open opens the SQLite database at path and ensures the schema exists.
func Open(path string, busyTimeout time.Duration) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	conn, err := sql.Open("sqlite", DSN(path, busyTimeout))
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := InitSchema(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

// OpenDatabase opens the SQLite database for a project.
func OpenDatabase(project core.Project, busyTimeout time.Duration) (*sql.DB, error) {
	core.EnsureGitignore(project.Dir())
	return Open(project.DBPath, busyTimeout)
}
