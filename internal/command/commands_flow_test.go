package command

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/adamavenir/quill/internal/messaging"
	"github.com/adamavenir/quill/internal/types"
)

type flow struct {
	t   *testing.T
	dir string
}

func newFlow(t *testing.T) flow {
	t.Helper()
	dir := t.TempDir()
	f := flow{t: t, dir: dir}
	f.run("init")
	return f
}

func (f flow) exec(args ...string) (string, error) {
	f.t.Helper()
	return executeCommand(NewRootCmd("test"), append([]string{"--project", f.dir}, args...)...)
}

func (f flow) run(args ...string) string {
	f.t.Helper()
	output, err := f.exec(args...)
	if err != nil {
		f.t.Fatalf("%s: %v\n%s", strings.Join(args, " "), err, output)
	}
	return output
}

func (f flow) runJSON(target any, args ...string) {
	f.t.Helper()
	output := f.run(append(args, "--json")...)
	if err := json.Unmarshal([]byte(output), target); err != nil {
		f.t.Fatalf("decode %s: %v\n%s", strings.Join(args, " "), err, output)
	}
}

func TestSendReplyEditFlow(t *testing.T) {
	f := newFlow(t)

	var alice, bob types.User
	f.runJSON(&alice, "user", "add", "alice")
	f.runJSON(&bob, "user", "add", "bob")
	if alice.ID == "" || bob.ID == "" {
		t.Fatalf("expected user ids, got %+v %+v", alice, bob)
	}

	var sent messaging.SendResult
	f.runJSON(&sent, "send", "@bob", "Hello", "--as", "alice")
	if sent.Message.ReceiverID != bob.ID || sent.Notification.UserID != bob.ID {
		t.Fatalf("unexpected send result: %+v", sent)
	}

	var reply messaging.SendResult
	f.runJSON(&reply, "reply", sent.Message.ID, "Hi", "back", "--as", "bob")
	if reply.Message.Content != "Hi back" || reply.Message.ReceiverID != alice.ID {
		t.Fatalf("unexpected reply: %+v", reply.Message)
	}

	var thread types.ThreadNode
	f.runJSON(&thread, "thread", sent.Message.ID)
	if len(thread.Replies) != 1 || thread.Replies[0].Message.ID != reply.Message.ID {
		t.Fatalf("unexpected thread: %+v", thread)
	}

	output := f.run("edit", sent.Message.ID, "Hello!", "--as", "alice")
	if !strings.Contains(output, "Edited") {
		t.Fatalf("expected edit confirmation, got %q", output)
	}
	output = f.run("edit", sent.Message.ID, "Hello!", "--as", "alice")
	if !strings.Contains(output, "No change") {
		t.Fatalf("expected no-op edit, got %q", output)
	}

	var history struct {
		Message types.Message          `json:"message"`
		History []types.MessageHistory `json:"history"`
	}
	f.runJSON(&history, "history", sent.Message.ID)
	if len(history.History) != 1 || history.History[0].OldContent != "Hello" || !history.Message.Edited {
		t.Fatalf("unexpected history: %+v", history)
	}

	if got := strings.TrimSpace(f.run("unread", "--as", "bob", "--count")); got != "1" {
		t.Fatalf("expected 1 unread for bob, got %q", got)
	}
	f.run("read", sent.Message.ID, "--as", "bob")
	if got := strings.TrimSpace(f.run("unread", "--as", "bob", "--count")); got != "0" {
		t.Fatalf("expected 0 unread for bob, got %q", got)
	}

	output = f.run("inbox", "--as", "bob")
	if !strings.Contains(output, "@alice") || !strings.Contains(output, "Hello!") {
		t.Fatalf("expected inbox to show alice's message, got %q", output)
	}

	var notifications []types.Notification
	f.runJSON(&notifications, "notifications", "--as", "alice")
	if len(notifications) != 1 || notifications[0].Text != "You received a new message from bob" {
		t.Fatalf("unexpected notifications: %+v", notifications)
	}
}

func TestDeleteUserFlow(t *testing.T) {
	f := newFlow(t)
	f.run("user", "add", "alice")
	f.run("user", "add", "bob")
	f.run("user", "add", "carol")

	var sent messaging.SendResult
	f.runJSON(&sent, "send", "bob", "ping", "--as", "alice")
	f.run("reply", sent.Message.ID, "pong", "--as", "bob")

	output, err := f.exec("rm", sent.Message.ID, "--as", "carol")
	if err == nil {
		t.Fatal("expected non-participant delete to fail")
	}
	if !strings.Contains(output, "not a participant") {
		t.Fatalf("expected participant error, got %q", output)
	}

	var report types.CascadeReport
	f.runJSON(&report, "user", "rm", "alice")
	if report.Messages != 2 || report.Notifications != 2 {
		t.Fatalf("unexpected cascade report: %+v", report)
	}

	output, err = f.exec("thread", sent.Message.ID)
	if err == nil {
		t.Fatal("expected deleted thread lookup to fail")
	}
	if !strings.Contains(output, "not found") {
		t.Fatalf("expected not found, got %q", output)
	}

	var users []types.User
	f.runJSON(&users, "user", "ls")
	if len(users) != 2 {
		t.Fatalf("expected 2 users left, got %+v", users)
	}
}

func TestMetricsFlagPrintsCounters(t *testing.T) {
	f := newFlow(t)
	f.run("user", "add", "alice")
	f.run("user", "add", "bob")

	output := f.run("send", "bob", "hello", "--as", "alice", "--metrics")
	if !strings.Contains(output, "quill_messages_sent_total 1") {
		t.Fatalf("expected sent counter, got %q", output)
	}
	if !strings.Contains(output, "quill_notifications_emitted_total 1") {
		t.Fatalf("expected notification counter, got %q", output)
	}
}

func TestNotificationTemplateFromEnv(t *testing.T) {
	f := newFlow(t)
	t.Setenv("QUILL_NOTIFICATION_TEMPLATE", "new DM from {sender}")
	f.run("user", "add", "alice")
	f.run("user", "add", "bob")

	var sent messaging.SendResult
	f.runJSON(&sent, "send", "bob", "hello", "--as", "alice")
	if sent.Notification.Text != "new DM from alice" {
		t.Fatalf("unexpected notification text: %q", sent.Notification.Text)
	}
}

func TestRmRejectsWildcardReference(t *testing.T) {
	f := newFlow(t)
	f.run("user", "add", "alice")
	f.run("user", "add", "bob")

	var sent messaging.SendResult
	f.runJSON(&sent, "send", "bob", "keep me", "--as", "alice")

	output, err := f.exec("rm", "%", "--as", "alice")
	if err == nil {
		t.Fatal("expected wildcard reference to be rejected")
	}
	if !strings.Contains(output, "malformed message id") {
		t.Fatalf("expected malformed id error, got %q", output)
	}

	var thread types.ThreadNode
	f.runJSON(&thread, "thread", sent.Message.ID)
	if thread.Message.ID != sent.Message.ID {
		t.Fatalf("expected message to survive, got %+v", thread)
	}
}
