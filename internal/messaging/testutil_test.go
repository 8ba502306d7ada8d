package messaging

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adamavenir/quill/internal/db"
	"github.com/adamavenir/quill/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap/zaptest"
)

type testEnv struct {
	svc     *Service
	db      *sql.DB
	metrics *Metrics
}

// newTestEnv opens a fresh store and a service whose clock advances one
// millisecond per call, so creation order is stable.
func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "quill.db"), 0)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})

	var tick int64
	metrics := NewMetrics(prometheus.NewRegistry())
	svc := New(conn, Options{
		Logger:  zaptest.NewLogger(t),
		Metrics: metrics,
		Now: func() time.Time {
			return time.UnixMilli(1_700_000_000_000 + atomic.AddInt64(&tick, 1))
		},
	})
	return testEnv{svc: svc, db: conn, metrics: metrics}
}

func (e testEnv) user(t *testing.T, name string) types.User {
	t.Helper()
	user, err := e.svc.CreateUser(context.Background(), name)
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return user
}

func (e testEnv) send(t *testing.T, from, to types.User, content string) types.Message {
	t.Helper()
	result, err := e.svc.SendMessage(context.Background(), SendInput{SenderID: from.ID, ReceiverID: to.ID, Content: content})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	return result.Message
}

func (e testEnv) reply(t *testing.T, from types.User, parent types.Message, content string) types.Message {
	t.Helper()
	result, err := e.svc.Reply(context.Background(), ReplyInput{ParentID: parent.ID, SenderID: from.ID, Content: content})
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	return result.Message
}

// failInserts makes every insert into table abort until the returned func
// runs.
func (e testEnv) failInserts(t *testing.T, table string) func() {
	t.Helper()
	trigger := "fail_" + table
	if _, err := e.db.Exec(`CREATE TRIGGER ` + trigger + ` BEFORE INSERT ON ` + table + `
		BEGIN SELECT RAISE(ABORT, 'injected failure'); END`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}
	return func() {
		if _, err := e.db.Exec("DROP TRIGGER IF EXISTS " + trigger); err != nil {
			t.Fatalf("drop trigger: %v", err)
		}
	}
}

// failDeletes makes every delete from table abort.
func (e testEnv) failDeletes(t *testing.T, table string) {
	t.Helper()
	if _, err := e.db.Exec(`CREATE TRIGGER fail_delete_` + table + ` BEFORE DELETE ON ` + table + `
		BEGIN SELECT RAISE(ABORT, 'injected failure'); END`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}
}

func (e testEnv) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	if err := e.db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count %q: %v", query, err)
	}
	return n
}
