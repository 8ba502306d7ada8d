package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adamavenir/quill/internal/messaging"
	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type ToolContext struct {
	Service *messaging.Service
	UserID  string
}

type sendArgs struct {
	To      string `json:"to" jsonschema:"Recipient username or user id"`
	Content string `json:"content" jsonschema:"Message text"`
}

type replyArgs struct {
	MessageID string `json:"message_id" jsonschema:"Message to reply to (full id or unique prefix)"`
	Content   string `json:"content" jsonschema:"Reply text"`
}

type editArgs struct {
	MessageID string `json:"message_id" jsonschema:"Message to edit"`
	Content   string `json:"content" jsonschema:"New message text"`
}

type messageArgs struct {
	MessageID string `json:"message_id" jsonschema:"Message id or unique prefix"`
}

type emptyArgs struct{}

// RegisterTools registers MCP tools for quill.
func RegisterTools(server *mcp.Server, ctx *ToolContext) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "quill_send",
		Description: "Send a direct message to another user.",
	}, func(c context.Context, _ *mcp.CallToolRequest, args sendArgs) (*mcp.CallToolResult, any, error) {
		return handleSend(c, *ctx, args), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "quill_reply",
		Description: "Reply to a message. The reply goes to the other participant of that message.",
	}, func(c context.Context, _ *mcp.CallToolRequest, args replyArgs) (*mcp.CallToolResult, any, error) {
		return handleReply(c, *ctx, args), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "quill_edit",
		Description: "Edit a message. The previous text is kept in its history.",
	}, func(c context.Context, _ *mcp.CallToolRequest, args editArgs) (*mcp.CallToolResult, any, error) {
		return handleEdit(c, *ctx, args), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "quill_unread",
		Description: "List your unread messages, newest first.",
	}, func(c context.Context, _ *mcp.CallToolRequest, _ emptyArgs) (*mcp.CallToolResult, any, error) {
		return handleUnread(c, *ctx), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "quill_read",
		Description: "Mark a message you received as read.",
	}, func(c context.Context, _ *mcp.CallToolRequest, args messageArgs) (*mcp.CallToolResult, any, error) {
		return handleRead(c, *ctx, args.MessageID), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "quill_thread",
		Description: "Fetch a message and all replies beneath it as a nested tree.",
	}, func(c context.Context, _ *mcp.CallToolRequest, args messageArgs) (*mcp.CallToolResult, any, error) {
		return handleThread(c, *ctx, args.MessageID), nil, nil
	})
}

func handleSend(c context.Context, ctx ToolContext, args sendArgs) *mcp.CallToolResult {
	receiver, err := ctx.Service.ResolveUser(c, args.To)
	if err != nil {
		return toolError(err.Error())
	}
	result, err := ctx.Service.SendMessage(c, messaging.SendInput{
		SenderID:   ctx.UserID,
		ReceiverID: receiver.ID,
		Content:    args.Content,
	})
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(fmt.Sprintf("Sent #%s to @%s", result.Message.ID, receiver.Username), false)
}

func handleReply(c context.Context, ctx ToolContext, args replyArgs) *mcp.CallToolResult {
	parent, err := ctx.Service.ResolveMessage(c, sanitizeMessageID(args.MessageID))
	if err != nil {
		return toolError(err.Error())
	}
	result, err := ctx.Service.Reply(c, messaging.ReplyInput{
		ParentID: parent.ID,
		SenderID: ctx.UserID,
		Content:  args.Content,
	})
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(fmt.Sprintf("Replied #%s to #%s", result.Message.ID, parent.ID), false)
}

func handleEdit(c context.Context, ctx ToolContext, args editArgs) *mcp.CallToolResult {
	msg, err := ctx.Service.ResolveMessage(c, sanitizeMessageID(args.MessageID))
	if err != nil {
		return toolError(err.Error())
	}
	result, err := ctx.Service.EditMessage(c, messaging.EditInput{
		MessageID: msg.ID,
		EditorID:  ctx.UserID,
		Content:   args.Content,
	})
	if err != nil {
		return toolError(err.Error())
	}
	if result.Archived == nil {
		return toolResult(fmt.Sprintf("No change to #%s", msg.ID), false)
	}
	return toolResult(fmt.Sprintf("Edited #%s", msg.ID), false)
}

func handleUnread(c context.Context, ctx ToolContext) *mcp.CallToolResult {
	messages, err := ctx.Service.Unread(c, ctx.UserID)
	if err != nil {
		return toolError(err.Error())
	}
	if len(messages) == 0 {
		return toolResult("No unread messages", false)
	}
	return jsonResult(messages)
}

func handleRead(c context.Context, ctx ToolContext, ref string) *mcp.CallToolResult {
	msg, err := ctx.Service.ResolveMessage(c, sanitizeMessageID(ref))
	if err != nil {
		return toolError(err.Error())
	}
	if _, err := ctx.Service.MarkRead(c, msg.ID, ctx.UserID); err != nil {
		return toolError(err.Error())
	}
	return toolResult(fmt.Sprintf("Marked #%s read", msg.ID), false)
}

func handleThread(c context.Context, ctx ToolContext, ref string) *mcp.CallToolResult {
	msg, err := ctx.Service.ResolveMessage(c, sanitizeMessageID(ref))
	if err != nil {
		return toolError(err.Error())
	}
	thread, err := ctx.Service.Thread(c, msg.ID)
	if err != nil {
		return toolError(err.Error())
	}
	return jsonResult(thread)
}

func jsonResult(payload any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(string(data), false)
}

func toolResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: isError,
	}
}

func toolError(text string) *mcp.CallToolResult {
	return toolResult("Error: "+text, true)
}

func sanitizeMessageID(value string) string {
	trimmed := strings.TrimSpace(value)
	trimmed = strings.TrimPrefix(trimmed, "@")
	trimmed = strings.TrimPrefix(trimmed, "#")
	return trimmed
}
