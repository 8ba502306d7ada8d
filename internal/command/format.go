package command

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/adamavenir/quill/internal/core"
	"github.com/adamavenir/quill/internal/types"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
)

var (
	noColor = os.Getenv("NO_COLOR") != ""

	dim   = ansiCode("\x1b[2m")
	bold  = ansiCode("\x1b[1m")
	cyan  = ansiCode("\x1b[36m")
	reset = ansiCode("\x1b[0m")
)

func ansiCode(code string) string {
	if noColor {
		return ""
	}
	return code
}

// formatter renders messages with usernames and short ids.
type formatter struct {
	names        map[string]string
	prefixLength int
	now          time.Time
}

func newFormatter(users []types.User, messageCount int64) formatter {
	names := make(map[string]string, len(users))
	for _, user := range users {
		names[user.ID] = user.Username
	}
	return formatter{
		names:        names,
		prefixLength: core.GetDisplayPrefixLength(int(messageCount)),
		now:          time.Now(),
	}
}

func (f formatter) name(userID string) string {
	if name, ok := f.names[userID]; ok {
		return "@" + name
	}
	return userID
}

func (f formatter) shortID(id string) string {
	return "#" + core.GetGUIDPrefix(id, f.prefixLength)
}

func (f formatter) when(ms int64) string {
	return humanize.RelTime(time.UnixMilli(ms), f.now, "ago", "from now")
}

// message renders one line: id, sender -> receiver, content and age.
func (f formatter) message(msg types.Message) string {
	flags := ""
	if msg.Edited {
		flags += " (edited)"
	}
	if !msg.Read {
		flags += " " + cyan + "*" + reset
	}
	return fmt.Sprintf("%s%s%s %s%s%s -> %s: %s%s %s%s%s",
		dim, f.shortID(msg.ID), reset,
		bold, f.name(msg.SenderID), reset,
		f.name(msg.ReceiverID),
		msg.Content, flags,
		dim, f.when(msg.CreatedAt), reset,
	)
}

func (f formatter) unread(msg types.UnreadMessage) string {
	reply := ""
	if msg.ParentID != nil {
		reply = fmt.Sprintf(" (reply to %s)", f.shortID(*msg.ParentID))
	}
	return fmt.Sprintf("%s%s%s %s%s%s: %s%s %s%s%s",
		dim, f.shortID(msg.ID), reset,
		bold, f.name(msg.SenderID), reset,
		msg.Content, reply,
		dim, f.when(msg.CreatedAt), reset,
	)
}

// thread writes the tree with two spaces of indent per level.
func (f formatter) thread(out io.Writer, node *types.ThreadNode, depth int) {
	indent := strings.Repeat("  ", depth)
	prefix := ""
	if depth > 0 {
		prefix = "└ "
	}
	fmt.Fprintf(out, "%s%s%s\n", indent, prefix, f.message(node.Message))
	for _, reply := range node.Replies {
		f.thread(out, reply, depth+1)
	}
}

func writeJSON(out io.Writer, payload any) error {
	return json.NewEncoder(out).Encode(payload)
}

func pluralize(count int64, singular string) string {
	return english.Plural(int(count), singular, "")
}
