package messaging

import (
	"context"
	"database/sql"
	"strings"

	"github.com/adamavenir/quill/internal/db"
	"github.com/adamavenir/quill/internal/types"
	"go.uber.org/zap"
)

// SendInput describes a new message. ParentID makes it a reply.
type SendInput struct {
	SenderID   string
	ReceiverID string
	Content    string
	ParentID   string
}

// ReplyInput describes a reply. The receiver is derived from the parent.
type ReplyInput struct {
	ParentID string
	SenderID string
	Content  string
}

// SendResult is a committed message and the notification created with it.
type SendResult struct {
	Message      types.Message      `json:"message"`
	Notification types.Notification `json:"notification"`
}

// SendMessage stores a message and its receiver's notification in one
// transaction. If the notification cannot be written nothing is committed
// and the error matches ErrNotificationFailure.
func (s *Service) SendMessage(ctx context.Context, in SendInput) (SendResult, error) {
	log := s.opLogger("send")
	if err := validateContent(in.Content); err != nil {
		return SendResult{}, s.fail(log, "send", err)
	}

	var result SendResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		result, err = s.send(ctx, tx, in)
		return err
	})
	if err != nil {
		return SendResult{}, s.fail(log, "send", err)
	}
	s.recordSend(log, result)
	return result, nil
}

// Reply answers a message. The receiver is the parent's other participant,
// so only the parent's sender or receiver may reply.
func (s *Service) Reply(ctx context.Context, in ReplyInput) (SendResult, error) {
	log := s.opLogger("reply")
	if err := validateContent(in.Content); err != nil {
		return SendResult{}, s.fail(log, "reply", err)
	}

	var result SendResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		parent, err := requireMessage(ctx, tx, in.ParentID)
		if err != nil {
			return err
		}
		var receiver string
		switch in.SenderID {
		case parent.SenderID:
			receiver = parent.ReceiverID
		case parent.ReceiverID:
			receiver = parent.SenderID
		default:
			return ErrNotParticipant
		}
		result, err = s.send(ctx, tx, SendInput{
			SenderID:   in.SenderID,
			ReceiverID: receiver,
			Content:    in.Content,
			ParentID:   parent.ID,
		})
		return err
	})
	if err != nil {
		return SendResult{}, s.fail(log, "reply", err)
	}
	s.recordSend(log, result)
	return result, nil
}

func (s *Service) send(ctx context.Context, tx *sql.Tx, in SendInput) (SendResult, error) {
	sender, err := requireUser(ctx, tx, in.SenderID)
	if err != nil {
		return SendResult{}, err
	}
	if _, err := requireUser(ctx, tx, in.ReceiverID); err != nil {
		return SendResult{}, err
	}

	var parentID *string
	if in.ParentID != "" {
		parent, err := requireMessage(ctx, tx, in.ParentID)
		if err != nil {
			return SendResult{}, err
		}
		parentID = &parent.ID
	}

	now := s.nowMillis()
	msg, err := db.CreateMessage(ctx, tx, types.Message{
		SenderID:   sender.ID,
		ReceiverID: in.ReceiverID,
		Content:    in.Content,
		CreatedAt:  now,
		ParentID:   parentID,
	})
	if err != nil {
		return SendResult{}, err
	}

	notification, err := db.CreateNotification(ctx, tx, types.Notification{
		UserID:    msg.ReceiverID,
		MessageID: msg.ID,
		Text:      renderNotification(s.template, sender.Username),
		CreatedAt: now,
	})
	if err != nil {
		return SendResult{}, failure(ErrNotificationFailure, "insert notification", err)
	}
	return SendResult{Message: msg, Notification: notification}, nil
}

func (s *Service) recordSend(log *zap.Logger, result SendResult) {
	s.metrics.MessagesSent.Inc()
	s.metrics.NotificationsEmitted.Inc()
	fields := []zap.Field{
		zap.String("message", result.Message.ID),
		zap.String("sender", result.Message.SenderID),
		zap.String("receiver", result.Message.ReceiverID),
		zap.String("notification", result.Notification.ID),
	}
	if result.Message.ParentID != nil {
		fields = append(fields, zap.String("parent", *result.Message.ParentID))
	}
	log.Info("message sent", fields...)
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return invalid("content is required")
	}
	return nil
}
