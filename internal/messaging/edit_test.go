package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestEditMessageArchivesPreImage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	msg := env.send(t, alice, bob, "a")

	result, err := env.svc.EditMessage(ctx, EditInput{MessageID: msg.ID, EditorID: alice.ID, Content: "b"})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if !result.Message.Edited || result.Message.Content != "b" {
		t.Fatalf("unexpected edited message: %+v", result.Message)
	}
	if result.Message.LastEditor == nil || *result.Message.LastEditor != alice.ID {
		t.Fatalf("expected last editor alice, got %v", result.Message.LastEditor)
	}
	if result.Message.CreatedAt != msg.CreatedAt {
		t.Fatalf("created_at changed: %d -> %d", msg.CreatedAt, result.Message.CreatedAt)
	}

	history, err := env.svc.History(ctx, msg.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].OldContent != "a" {
		t.Fatalf("expected one history row with old content a, got %+v", history)
	}
	if history[0].EditedBy == nil || *history[0].EditedBy != alice.ID {
		t.Fatalf("expected edited_by alice, got %v", history[0].EditedBy)
	}

	stored, err := env.svc.GetMessage(ctx, msg.ID)
	if err != nil {
		t.Fatalf("get message: %v", err)
	}
	if stored.Content != "b" || !stored.Edited {
		t.Fatalf("unexpected stored message: %+v", stored)
	}
	if got := testutil.ToFloat64(env.metrics.EditsArchived); got != 1 {
		t.Fatalf("expected archived counter 1, got %v", got)
	}
}

func TestEditMessageUnchangedWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	msg := env.send(t, alice, bob, "same")

	result, err := env.svc.EditMessage(ctx, EditInput{MessageID: msg.ID, EditorID: bob.ID, Content: "same"})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if result.Archived != nil {
		t.Fatalf("expected no archive, got %+v", result.Archived)
	}
	if result.Message.Edited || result.Message.LastEditor != nil {
		t.Fatalf("unchanged edit must leave message untouched: %+v", result.Message)
	}
	if got := env.count(t, "SELECT COUNT(*) FROM quill_message_history"); got != 0 {
		t.Fatalf("expected no history, got %d", got)
	}
	if got := testutil.ToFloat64(env.metrics.EditsUnchanged); got != 1 {
		t.Fatalf("expected unchanged counter 1, got %v", got)
	}
}

func TestEditMessageNeverNotifies(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	msg := env.send(t, alice, bob, "v1")

	for _, content := range []string{"v2", "v3", "v3"} {
		if _, err := env.svc.EditMessage(ctx, EditInput{MessageID: msg.ID, EditorID: alice.ID, Content: content}); err != nil {
			t.Fatalf("edit %s: %v", content, err)
		}
	}
	if got := env.count(t, "SELECT COUNT(*) FROM quill_notifications"); got != 1 {
		t.Fatalf("expected only the creation notification, got %d", got)
	}

	history, err := env.svc.History(ctx, msg.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].OldContent != "v1" || history[1].OldContent != "v2" {
		t.Fatalf("unexpected history chain: %+v", history)
	}
}

func TestEditMessageArchiveFailureRollsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	msg := env.send(t, alice, bob, "original")
	env.failInserts(t, "quill_message_history")

	_, err := env.svc.EditMessage(ctx, EditInput{MessageID: msg.ID, EditorID: alice.ID, Content: "changed"})
	if !errors.Is(err, ErrArchiveFailure) {
		t.Fatalf("expected ErrArchiveFailure, got %v", err)
	}

	stored, err := env.svc.GetMessage(ctx, msg.ID)
	if err != nil {
		t.Fatalf("get message: %v", err)
	}
	if stored.Content != "original" || stored.Edited {
		t.Fatalf("edit must not be committed: %+v", stored)
	}
}

func TestEditMessageNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")

	_, err := env.svc.EditMessage(ctx, EditInput{MessageID: "msg-missing", EditorID: alice.ID, Content: "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := env.svc.History(ctx, "msg-missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from history, got %v", err)
	}
}

func TestConcurrentEditsArchiveEachSupersededValue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	msg := env.send(t, alice, bob, "v0")

	contents := []string{"a", "b", "c", "d", "e", "f"}
	errs := make(chan error, len(contents))
	for _, content := range contents {
		go func(content string) {
			_, err := env.svc.EditMessage(ctx, EditInput{MessageID: msg.ID, EditorID: alice.ID, Content: content})
			errs <- err
		}(content)
	}
	for range contents {
		if err := <-errs; err != nil {
			t.Fatalf("concurrent edit: %v", err)
		}
	}

	history, err := env.svc.History(ctx, msg.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != len(contents) {
		t.Fatalf("expected %d history rows, got %d", len(contents), len(history))
	}
	seen := map[string]bool{}
	for _, entry := range history {
		if seen[entry.OldContent] {
			t.Fatalf("pre-image %q archived twice", entry.OldContent)
		}
		seen[entry.OldContent] = true
	}
	if !seen["v0"] {
		t.Fatal("expected original content archived")
	}

	stored, err := env.svc.GetMessage(ctx, msg.ID)
	if err != nil {
		t.Fatalf("get message: %v", err)
	}
	if seen[stored.Content] {
		t.Fatalf("current content %q should not be in history", stored.Content)
	}
}
