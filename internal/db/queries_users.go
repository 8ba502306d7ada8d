package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/adamavenir/quill/internal/core"
	"github.com/adamavenir/quill/internal/types"
)

const userColumns = `guid, username, created_at`

// CreateUser inserts a new user. CreatedAt must be set by the caller.
func CreateUser(ctx context.Context, db DBTX, user types.User) (types.User, error) {
	username := strings.TrimSpace(user.Username)
	if username == "" {
		return types.User{}, fmt.Errorf("username is required")
	}

	guid := user.ID
	if guid == "" {
		var err error
		guid, err = generateUniqueGUIDForTable(ctx, db, "quill_users", core.PrefixUser)
		if err != nil {
			return types.User{}, err
		}
	}

	if _, err := db.ExecContext(ctx, `
		INSERT INTO quill_users (guid, username, created_at) VALUES (?, ?, ?)
	`, guid, username, user.CreatedAt); err != nil {
		return types.User{}, err
	}

	return types.User{ID: guid, Username: username, CreatedAt: user.CreatedAt}, nil
}

// GetUser returns a user by GUID, or nil when absent.
func GetUser(ctx context.Context, db DBTX, userID string) (*types.User, error) {
	row := db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM quill_users WHERE guid = ?", userID)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByName returns a user by username, or nil when absent.
func GetUserByName(ctx context.Context, db DBTX, username string) (*types.User, error) {
	row := db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM quill_users WHERE username = ?", strings.TrimSpace(username))
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUsers returns all users ordered by username.
func GetUsers(ctx context.Context, db DBTX) ([]types.User, error) {
	rows, err := db.QueryContext(ctx, "SELECT "+userColumns+" FROM quill_users ORDER BY username ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []types.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUserRow removes the user row only. Callers must clear references first.
func DeleteUserRow(ctx context.Context, db DBTX, userID string) (int64, error) {
	result, err := db.ExecContext(ctx, "DELETE FROM quill_users WHERE guid = ?", userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanUser(scanner interface{ Scan(dest ...any) error }) (types.User, error) {
	var user types.User
	if err := scanner.Scan(&user.ID, &user.Username, &user.CreatedAt); err != nil {
		return types.User{}, err
	}
	return user, nil
}
