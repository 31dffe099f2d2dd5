package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"
	"github.com/vytor/monkeyapp/internal/logger"
	"github.com/vytor/monkeyapp/internal/models"
	"github.com/vytor/monkeyapp/internal/repository"
)

// Helper functions shared across repository implementations

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

var profileColumns = []string{"id", "name", "email", "age", "best_friend_id", "created_at"}

func qualified(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return out
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (models.Profile, error) {
	var p models.Profile
	var bestFriend sql.NullInt64
	var age sql.NullInt64
	if err := row.Scan(&p.ID, &p.Name, &p.Email, &age, &bestFriend, &p.CreatedAt); err != nil {
		return models.Profile{}, err
	}
	p.Age = intPtr(age)
	p.BestFriendID = int64Ptr(bestFriend)
	return p, nil
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// duplicateError converts a UNIQUE constraint failure into a
// repository.DuplicateError naming the column sqlite reported. sqlite stops
// at the first failing constraint, so callers widen Fields themselves.
func duplicateError(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique {
		return err
	}
	// Message looks like "UNIQUE constraint failed: profiles.email".
	field := sqliteErr.Error()
	if idx := strings.LastIndex(field, "."); idx >= 0 {
		field = field[idx+1:]
	}
	return &repository.DuplicateError{Fields: []string{field}, Err: err}
}

func tx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	log := logger.FromContext(ctx).WithPrefix("repo")
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction: %v", err)
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		log.Debug("transaction rolled back due to error: %v", err)
		return err
	}
	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction: %v", err)
		return err
	}
	log.Debug("transaction committed")
	return nil
}
