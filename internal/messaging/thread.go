package messaging

import (
	"context"
	"database/sql"

	"github.com/adamavenir/quill/internal/db"
	"github.com/adamavenir/quill/internal/types"
	"go.uber.org/zap"
)

// ThreadSource returns a message and all of its transitive replies in one
// round-trip. Order is the per-node reply order: oldest first, ties by
// insertion.
type ThreadSource interface {
	Subtree(ctx context.Context, rootID string) ([]types.Message, error)
}

type storeSource struct {
	db db.DBTX
}

func (s storeSource) Subtree(ctx context.Context, rootID string) ([]types.Message, error) {
	return db.GetSubtree(ctx, s.db, rootID)
}

// NewStoreSource returns the SQLite-backed ThreadSource.
func NewStoreSource(conn *sql.DB) ThreadSource {
	return storeSource{db: conn}
}

// Thread assembles the reply tree under rootID with a single subtree fetch.
func (s *Service) Thread(ctx context.Context, rootID string) (*types.ThreadNode, error) {
	log := s.opLogger("thread")
	node, err := FetchThread(ctx, NewStoreSource(s.db), rootID)
	if err != nil {
		return nil, s.fail(log, "thread", err)
	}
	size := node.Size()
	s.metrics.ThreadNodes.Observe(float64(size))
	log.Debug("thread assembled", zap.String("root", rootID), zap.Int("nodes", size))
	return node, nil
}

// FetchThread loads the subtree from src and assembles it.
func FetchThread(ctx context.Context, src ThreadSource, rootID string) (*types.ThreadNode, error) {
	messages, err := src.Subtree(ctx, rootID)
	if err != nil {
		return nil, err
	}
	return AssembleThread(rootID, messages)
}

// AssembleThread nests a flat set of messages under rootID. Replies keep the
// order they have in messages. Messages not reachable from the root are
// ignored; reaching a message twice yields a *CorruptThreadError.
func AssembleThread(rootID string, messages []types.Message) (*types.ThreadNode, error) {
	var root *types.Message
	children := make(map[string][]*types.Message, len(messages))
	for i := range messages {
		msg := &messages[i]
		if msg.ID == rootID {
			root = msg
		}
		if msg.ParentID != nil {
			children[*msg.ParentID] = append(children[*msg.ParentID], msg)
		}
	}
	if root == nil {
		return nil, notFound("message", rootID)
	}

	visited := make(map[string]struct{}, len(messages))
	var build func(msg *types.Message) (*types.ThreadNode, error)
	build = func(msg *types.Message) (*types.ThreadNode, error) {
		if _, seen := visited[msg.ID]; seen {
			return nil, &CorruptThreadError{RootID: rootID, MessageID: msg.ID}
		}
		visited[msg.ID] = struct{}{}

		node := &types.ThreadNode{Message: *msg, Replies: make([]*types.ThreadNode, 0, len(children[msg.ID]))}
		for _, child := range children[msg.ID] {
			reply, err := build(child)
			if err != nil {
				return nil, err
			}
			node.Replies = append(node.Replies, reply)
		}
		return node, nil
	}
	return build(root)
}
