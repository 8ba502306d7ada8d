package messaging

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrArchiveFailure      = errors.New("archive failure")
	ErrNotificationFailure = errors.New("notification failure")
	ErrCorruptThread       = errors.New("corrupt thread")
	ErrCascadeFailure      = errors.New("cascade failure")
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotParticipant      = errors.New("not a participant")
)

// NotFoundError names the missing entity. It matches ErrNotFound.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// CorruptThreadError reports a message reached twice while walking a thread.
// It matches ErrCorruptThread.
type CorruptThreadError struct {
	RootID    string
	MessageID string
}

func (e *CorruptThreadError) Error() string {
	return fmt.Sprintf("corrupt thread %s: message %s visited twice", e.RootID, e.MessageID)
}

func (e *CorruptThreadError) Is(target error) bool {
	return target == ErrCorruptThread
}

// failure wraps cause under a failure kind so errors.Is works for both.
func failure(kind error, step string, cause error) error {
	return fmt.Errorf("%w: %s: %w", kind, step, cause)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// errorKind labels an error for the failure counter.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrArchiveFailure):
		return "archive"
	case errors.Is(err, ErrNotificationFailure):
		return "notification"
	case errors.Is(err, ErrCorruptThread):
		return "corrupt_thread"
	case errors.Is(err, ErrCascadeFailure):
		return "cascade"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrNotParticipant):
		return "not_participant"
	default:
		return "store"
	}
}
