package types

// User is a participant that can send and receive messages.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	CreatedAt int64  `json:"created_at"`
}

// Message is a direct message. ParentID links replies into a tree.
type Message struct {
	ID         string  `json:"id"`
	SenderID   string  `json:"sender_id"`
	ReceiverID string  `json:"receiver_id"`
	Content    string  `json:"content"`
	CreatedAt  int64   `json:"created_at"`
	Edited     bool    `json:"edited"`
	LastEditor *string `json:"last_editor,omitempty"`
	ParentID   *string `json:"parent_id,omitempty"`
	Read       bool    `json:"read"`
	ReadAt     *int64  `json:"read_at,omitempty"`
}

// UnreadMessage is the restricted projection returned for unread queries.
// It deliberately omits edit and read-state columns.
type UnreadMessage struct {
	ID         string  `json:"id"`
	SenderID   string  `json:"sender_id"`
	ReceiverID string  `json:"receiver_id"`
	Content    string  `json:"content"`
	CreatedAt  int64   `json:"created_at"`
	ParentID   *string `json:"parent_id,omitempty"`
}

// Notification records that a user is owed a delivery for a message.
type Notification struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	MessageID string `json:"message_id"`
	Text      string `json:"text"`
	Read      bool   `json:"read"`
	CreatedAt int64  `json:"created_at"`
}

// MessageHistory is an archived pre-image of a message's content.
type MessageHistory struct {
	ID         string  `json:"id"`
	MessageID  string  `json:"message_id"`
	OldContent string  `json:"old_content"`
	EditedBy   *string `json:"edited_by,omitempty"`
	ArchivedAt int64   `json:"archived_at"`
}

// ThreadNode is one message of an assembled reply tree.
type ThreadNode struct {
	Message Message       `json:"message"`
	Replies []*ThreadNode `json:"replies"`
}

// Size returns the number of messages in the subtree rooted at n.
func (n *ThreadNode) Size() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, reply := range n.Replies {
		total += reply.Size()
	}
	return total
}

// InboxEntry is a root message with its direct replies.
type InboxEntry struct {
	Message Message   `json:"message"`
	Replies []Message `json:"replies"`
}

// CascadeReport counts rows removed or neutralized by a user deletion.
type CascadeReport struct {
	UserID        string `json:"user_id"`
	Messages      int64  `json:"messages"`
	Notifications int64  `json:"notifications"`
	History       int64  `json:"history"`
	EditorCleared int64  `json:"editor_cleared"`
}
