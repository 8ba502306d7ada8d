package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/adamavenir/quill/internal/core"
	"modernc.org/sqlite"
)

const (
	sqliteConstraintForeignKey = 787
	sqliteConstraintUnique     = 2067
)

// ErrAmbiguousPrefix is returned when a GUID prefix matches several rows.
var ErrAmbiguousPrefix = errors.New("ambiguous id prefix")

func generateUniqueGUIDForTable(ctx context.Context, db DBTX, table, prefix string) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		guid, err := core.GenerateGUID(prefix)
		if err != nil {
			return "", err
		}
		row := db.QueryRowContext(ctx, fmt.Sprintf("SELECT 1 FROM %s WHERE guid = ?", table), guid)
		var exists int
		err = row.Scan(&exists)
		if err == sql.ErrNoRows {
			return guid, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("failed to generate unique %s GUID", prefix)
}

func sqliteCode(err error) (int, bool) {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code(), true
	}
	return 0, false
}

// IsUniqueError reports whether err is a UNIQUE constraint violation.
func IsUniqueError(err error) bool {
	code, ok := sqliteCode(err)
	return ok && code == sqliteConstraintUnique
}

// IsForeignKeyError reports whether err is a FOREIGN KEY violation.
func IsForeignKeyError(err error) bool {
	code, ok := sqliteCode(err)
	return ok && code == sqliteConstraintForeignKey
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, value := range values {
		args[i] = value
	}
	return args
}

func dedupeStrings(values []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func nullableValue[T any](value *T) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullStringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}

func nullIntPtr(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	v := value.Int64
	return &v
}
