package messaging

import (
	"context"
	"database/sql"
	"time"

	"github.com/adamavenir/quill/internal/core"
	"github.com/adamavenir/quill/internal/db"
	"github.com/adamavenir/quill/internal/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service runs every messaging operation against one SQLite store. Writes
// happen inside a single transaction together with their side effects.
type Service struct {
	db       *sql.DB
	log      *zap.Logger
	metrics  *Metrics
	now      func() time.Time
	template string
}

// Options configures a Service. Zero values fall back to a no-op logger,
// unregistered metrics, time.Now and the default notification template.
type Options struct {
	Logger               *zap.Logger
	Metrics              *Metrics
	Now                  func() time.Time
	NotificationTemplate string
}

func New(conn *sql.DB, opts Options) *Service {
	svc := &Service{
		db:       conn,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		now:      opts.Now,
		template: opts.NotificationTemplate,
	}
	if svc.log == nil {
		svc.log = zap.NewNop()
	}
	if svc.metrics == nil {
		svc.metrics = NewMetrics(nil)
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.template == "" {
		svc.template = core.DefaultNotificationTemplate
	}
	return svc
}

func (s *Service) nowMillis() int64 {
	return s.now().UnixMilli()
}

// withTx runs fn in one transaction. The DSN sets _txlock=immediate, so the
// write lock is held from BEGIN and reads inside fn see the row fn updates.
func (s *Service) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// opLogger tags log lines of one operation with its name and a fresh id.
func (s *Service) opLogger(op string) *zap.Logger {
	return s.log.With(zap.String("op", op), zap.String("op_id", uuid.NewString()))
}

// fail records a failed operation and returns err unchanged.
func (s *Service) fail(log *zap.Logger, op string, err error) error {
	kind := errorKind(err)
	s.metrics.Failures.WithLabelValues(op, kind).Inc()
	log.Warn("operation failed", zap.String("kind", kind), zap.Error(err))
	return err
}

func requireUser(ctx context.Context, q db.DBTX, userID string) (*types.User, error) {
	user, err := db.GetUser(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound("user", userID)
	}
	return user, nil
}

func requireMessage(ctx context.Context, q db.DBTX, messageID string) (*types.Message, error) {
	msg, err := db.GetMessage(ctx, q, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, notFound("message", messageID)
	}
	return msg, nil
}
