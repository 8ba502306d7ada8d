package messaging

import (
	"context"
	"database/sql"
	"strings"

	"github.com/adamavenir/quill/internal/db"
	"github.com/adamavenir/quill/internal/types"
	"go.uber.org/zap"
)

// CreateUser registers a username. Usernames are unique.
func (s *Service) CreateUser(ctx context.Context, username string) (types.User, error) {
	log := s.opLogger("create_user")
	username = strings.TrimSpace(username)
	if username == "" {
		return types.User{}, s.fail(log, "create_user", invalid("username is required"))
	}

	var user types.User
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := db.GetUserByName(ctx, tx, username)
		if err != nil {
			return err
		}
		if existing != nil {
			return invalid("username already taken: %s", username)
		}
		user, err = db.CreateUser(ctx, tx, types.User{Username: username, CreatedAt: s.nowMillis()})
		if db.IsUniqueError(err) {
			return invalid("username already taken: %s", username)
		}
		return err
	})
	if err != nil {
		return types.User{}, s.fail(log, "create_user", err)
	}
	log.Info("user created", zap.String("user", user.ID), zap.String("username", user.Username))
	return user, nil
}

// GetUser returns a user by id.
func (s *Service) GetUser(ctx context.Context, userID string) (types.User, error) {
	user, err := requireUser(ctx, s.db, userID)
	if err != nil {
		return types.User{}, err
	}
	return *user, nil
}

// GetUserByName returns a user by username.
func (s *Service) GetUserByName(ctx context.Context, username string) (types.User, error) {
	user, err := db.GetUserByName(ctx, s.db, username)
	if err != nil {
		return types.User{}, err
	}
	if user == nil {
		return types.User{}, notFound("user", username)
	}
	return *user, nil
}

// ResolveUser accepts a user id or a username, with or without a leading @.
func (s *Service) ResolveUser(ctx context.Context, ref string) (types.User, error) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "@")
	if ref == "" {
		return types.User{}, invalid("user is required")
	}
	user, err := db.GetUser(ctx, s.db, ref)
	if err != nil {
		return types.User{}, err
	}
	if user != nil {
		return *user, nil
	}
	return s.GetUserByName(ctx, ref)
}

// ListUsers returns all users ordered by username.
func (s *Service) ListUsers(ctx context.Context) ([]types.User, error) {
	return db.GetUsers(ctx, s.db)
}
