package messaging

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/adamavenir/quill/internal/types"
)

func TestThreadNestsReplies(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	root := env.send(t, alice, bob, "R")
	c1 := env.reply(t, bob, root, "C1")
	c2 := env.reply(t, alice, root, "C2")
	c3 := env.reply(t, alice, c1, "C3")

	thread, err := env.svc.Thread(ctx, root.ID)
	if err != nil {
		t.Fatalf("thread: %v", err)
	}
	if thread.Message.ID != root.ID {
		t.Fatalf("expected root %s, got %s", root.ID, thread.Message.ID)
	}
	if len(thread.Replies) != 2 {
		t.Fatalf("expected 2 replies, got %d", len(thread.Replies))
	}
	if thread.Replies[0].Message.ID != c1.ID || thread.Replies[1].Message.ID != c2.ID {
		t.Fatalf("expected [C1 C2], got [%s %s]", thread.Replies[0].Message.Content, thread.Replies[1].Message.Content)
	}
	if len(thread.Replies[0].Replies) != 1 || thread.Replies[0].Replies[0].Message.ID != c3.ID {
		t.Fatalf("expected C1 -> C3, got %+v", thread.Replies[0].Replies)
	}
	if len(thread.Replies[1].Replies) != 0 || thread.Replies[1].Replies == nil {
		t.Fatalf("expected empty non-nil replies for C2")
	}
	if thread.Size() != 4 {
		t.Fatalf("expected 4 nodes, got %d", thread.Size())
	}

	again, err := env.svc.Thread(ctx, root.ID)
	if err != nil {
		t.Fatalf("thread again: %v", err)
	}
	if !reflect.DeepEqual(thread, again) {
		t.Fatal("thread results differ without intervening writes")
	}
}

func TestThreadNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Thread(context.Background(), "msg-missing")
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.ID != "msg-missing" {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestThreadDetectsCycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	a := env.send(t, alice, bob, "A")
	b := env.reply(t, bob, a, "B")

	if _, err := env.db.Exec("DROP TRIGGER quill_messages_parent_immutable"); err != nil {
		t.Fatalf("drop trigger: %v", err)
	}
	if _, err := env.db.Exec("UPDATE quill_messages SET parent_guid = ? WHERE guid = ?", b.ID, a.ID); err != nil {
		t.Fatalf("corrupt parent: %v", err)
	}

	_, err := env.svc.Thread(ctx, a.ID)
	var corrupt *CorruptThreadError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptThreadError, got %v", err)
	}
	if corrupt.RootID != a.ID || corrupt.MessageID != a.ID {
		t.Fatalf("unexpected corrupt thread error: %+v", corrupt)
	}
	if !errors.Is(err, ErrCorruptThread) {
		t.Fatalf("expected ErrCorruptThread match, got %v", err)
	}
}

type countingSource struct {
	messages []types.Message
	calls    int
}

func (s *countingSource) Subtree(ctx context.Context, rootID string) ([]types.Message, error) {
	s.calls++
	return s.messages, nil
}

func TestFetchThreadUsesOneRoundTrip(t *testing.T) {
	parent := func(id string) *string { return &id }
	var messages []types.Message
	messages = append(messages, types.Message{ID: "r"})
	for i := 0; i < 50; i++ {
		id := string(rune('a'+i%26)) + string(rune('a'+i/26))
		p := "r"
		if i > 0 {
			p = messages[len(messages)-1].ID
		}
		messages = append(messages, types.Message{ID: id, ParentID: parent(p)})
	}
	src := &countingSource{messages: messages}

	node, err := FetchThread(context.Background(), src, "r")
	if err != nil {
		t.Fatalf("fetch thread: %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("expected 1 store call, got %d", src.calls)
	}
	if node.Size() != 51 {
		t.Fatalf("expected 51 nodes, got %d", node.Size())
	}
}

func TestAssembleThreadKeepsSourceOrder(t *testing.T) {
	root := "r"
	messages := []types.Message{
		{ID: "r"},
		{ID: "x", ParentID: &root, CreatedAt: 5},
		{ID: "y", ParentID: &root, CreatedAt: 5},
		{ID: "stray", ParentID: strPtr("elsewhere")},
	}
	node, err := AssembleThread("r", messages)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(node.Replies) != 2 || node.Replies[0].Message.ID != "x" || node.Replies[1].Message.ID != "y" {
		t.Fatalf("unexpected replies: %+v", node.Replies)
	}
}

func strPtr(value string) *string {
	return &value
}
