package db

import (
	"context"
	"testing"

	"github.com/adamavenir/quill/internal/types"
)

func TestNotificationLifecycle(t *testing.T) {
	db := openTestDB(t)
	requireSchema(t, db)
	ctx := context.Background()

	alice := mustCreateUser(t, db, "alice")
	bob := mustCreateUser(t, db, "bob")
	msg := mustCreateMessage(t, db, types.Message{SenderID: alice.ID, ReceiverID: bob.ID, Content: "hi", CreatedAt: 10})

	created, err := CreateNotification(ctx, db, types.Notification{
		UserID:    bob.ID,
		MessageID: msg.ID,
		Text:      "You received a new message from alice",
		CreatedAt: 10,
	})
	if err != nil {
		t.Fatalf("create notification: %v", err)
	}

	forMessage, err := GetNotificationsForMessage(ctx, db, msg.ID)
	if err != nil {
		t.Fatalf("notifications for message: %v", err)
	}
	if len(forMessage) != 1 || forMessage[0].ID != created.ID || forMessage[0].UserID != bob.ID {
		t.Fatalf("unexpected notifications: %+v", forMessage)
	}

	changed, err := MarkNotificationRead(ctx, db, created.ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if changed != 1 {
		t.Fatalf("expected 1 row changed, got %d", changed)
	}
	changed, err = MarkNotificationRead(ctx, db, created.ID)
	if err != nil {
		t.Fatalf("mark read again: %v", err)
	}
	if changed != 0 {
		t.Fatalf("expected repeat mark to be a no-op, got %d", changed)
	}

	unread, err := GetNotificationsForUser(ctx, db, bob.ID, true)
	if err != nil {
		t.Fatalf("unread notifications: %v", err)
	}
	if len(unread) != 0 {
		t.Fatalf("expected no unread notifications, got %d", len(unread))
	}

	deleted, err := DeleteNotificationsForUser(ctx, db, bob.ID)
	if err != nil {
		t.Fatalf("delete notifications: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted, got %d", deleted)
	}
	fetched, err := GetNotification(ctx, db, created.ID)
	if err != nil {
		t.Fatalf("get notification: %v", err)
	}
	if fetched != nil {
		t.Fatalf("expected notification to be gone")
	}
}
