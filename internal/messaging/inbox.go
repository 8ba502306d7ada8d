package messaging

import (
	"context"
	"errors"
	"strings"

	"github.com/adamavenir/quill/internal/core"
	"github.com/adamavenir/quill/internal/db"
	"github.com/adamavenir/quill/internal/types"
)

// Inbox returns root messages received by the user, newest first, each with
// its direct replies. Replies for all roots come from one query.
func (s *Service) Inbox(ctx context.Context, userID string) ([]types.InboxEntry, error) {
	if _, err := requireUser(ctx, s.db, userID); err != nil {
		return nil, err
	}
	roots, err := db.GetInboxRoots(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(roots))
	for _, root := range roots {
		ids = append(ids, root.ID)
	}
	replies, err := db.GetRepliesFor(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]types.InboxEntry, 0, len(roots))
	for _, root := range roots {
		group := replies[root.ID]
		if group == nil {
			group = []types.Message{}
		}
		entries = append(entries, types.InboxEntry{Message: root, Replies: group})
	}
	return entries, nil
}

// Conversation returns every message between two users, oldest first.
func (s *Service) Conversation(ctx context.Context, userA, userB string) ([]types.Message, error) {
	if _, err := requireUser(ctx, s.db, userA); err != nil {
		return nil, err
	}
	if _, err := requireUser(ctx, s.db, userB); err != nil {
		return nil, err
	}
	messages, err := db.GetConversation(ctx, s.db, userA, userB)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []types.Message{}
	}
	return messages, nil
}

// GetMessage returns a message by exact id.
func (s *Service) GetMessage(ctx context.Context, messageID string) (types.Message, error) {
	msg, err := requireMessage(ctx, s.db, messageID)
	if err != nil {
		return types.Message{}, err
	}
	return *msg, nil
}

// ResolveMessage accepts an exact id, an id without the msg- prefix, or a
// unique id prefix. A leading # is ignored. A prefix shared by several
// messages or containing non-id characters is rejected as invalid input.
func (s *Service) ResolveMessage(ctx context.Context, ref string) (types.Message, error) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "#")
	if ref == "" {
		return types.Message{}, invalid("message id is required")
	}
	msg, err := db.GetMessage(ctx, s.db, ref)
	if err != nil {
		return types.Message{}, err
	}
	if msg != nil {
		return *msg, nil
	}
	lookup := strings.ToLower(ref)
	if !core.IsGUIDPrefix(strings.TrimPrefix(lookup, core.PrefixMessage+"-")) {
		return types.Message{}, invalid("malformed message id: %s", ref)
	}
	msg, err = db.GetMessageByPrefix(ctx, s.db, lookup)
	if errors.Is(err, db.ErrAmbiguousPrefix) {
		return types.Message{}, invalid("ambiguous message id %s: type more characters", ref)
	}
	if err != nil {
		return types.Message{}, err
	}
	if msg == nil {
		return types.Message{}, notFound("message", ref)
	}
	return *msg, nil
}
