package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/monkeyapp/internal/logger"
	"github.com/vytor/monkeyapp/internal/models"
	"github.com/vytor/monkeyapp/internal/repository"
)

type friendshipRepository struct {
	db *sql.DB
}

// NewFriendshipRepository creates a new FriendshipRepository implementation.
// Each friendship is stored as two rows, one per direction.
func NewFriendshipRepository(db *sql.DB) repository.FriendshipRepository {
	return &friendshipRepository{db: db}
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *friendshipRepository) Friends(ctx context.Context, id int64) ([]models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("friendship_repo")
	log.Debug("listing friends: profile_id=%d", id)

	query := sqlBuilder.Select(qualified("p", profileColumns)...).
		From("profiles p").
		Join("friendships f ON f.friend_id = p.id").
		Where(squirrel.Eq{"f.profile_id": id}).
		OrderBy("p.name ASC")
	return r.queryProfiles(ctx, query)
}

func (r *friendshipRepository) NonFriends(ctx context.Context, id int64) ([]models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("friendship_repo")
	log.Debug("listing non-friends: profile_id=%d", id)

	query := sqlBuilder.Select(profileColumns...).
		From("profiles").
		Where(squirrel.NotEq{"id": id}).
		Where("id NOT IN (SELECT friend_id FROM friendships WHERE profile_id = ?)", id).
		OrderBy("name ASC")
	return r.queryProfiles(ctx, query)
}

func (r *friendshipRepository) queryProfiles(ctx context.Context, query squirrel.SelectBuilder) ([]models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("friendship_repo")

	stmt, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to query profiles: %v", err)
		return nil, err
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			log.Error("failed to scan profile row: %v", err)
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *friendshipRepository) AreFriends(ctx context.Context, a, b int64) (bool, error) {
	return areFriends(ctx, r.db, a, b)
}

func areFriends(ctx context.Context, q execQuerier, a, b int64) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM friendships WHERE profile_id = ? AND friend_id = ?)`, a, b).Scan(&exists)
	return exists, err
}

func requireProfiles(ctx context.Context, q execQuerier, ids ...int64) error {
	for _, id := range ids {
		var exists bool
		if err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM profiles WHERE id = ?)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("profile %d: %w", id, repository.ErrNotFound)
		}
	}
	return nil
}

// Add makes a and b friends. Whichever direction is missing is inserted, so
// calling it on existing or half-present friendships is safe.
func (r *friendshipRepository) Add(ctx context.Context, a, b int64) error {
	log := logger.FromContext(ctx).WithPrefix("friendship_repo")
	if a == b {
		return repository.ErrSelfReference
	}
	log.Debug("adding friendship: %d <-> %d", a, b)

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		if err := requireProfiles(ctx, tx, a, b); err != nil {
			return err
		}
		stmt, args, err := sqlBuilder.Insert("friendships").
			Options("OR IGNORE").
			Columns("profile_id", "friend_id").
			Values(a, b).
			Values(b, a).
			ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			log.Error("failed to insert friendship %d <-> %d: %v", a, b, err)
			return err
		}
		if n, err := res.RowsAffected(); err == nil {
			log.Debug("friendship %d <-> %d: %d direction(s) inserted", a, b, n)
		}
		return nil
	})
}

// Remove ends the friendship between a and b. Best-friend references between
// the two are cleared before the edge rows are dropped; the whole sequence
// commits or rolls back together.
func (r *friendshipRepository) Remove(ctx context.Context, a, b int64) error {
	log := logger.FromContext(ctx).WithPrefix("friendship_repo")
	log.Debug("removing friendship: %d <-> %d", a, b)

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		friends, err := areFriends(ctx, tx, a, b)
		if err != nil {
			return err
		}
		if !friends {
			return fmt.Errorf("profiles %d and %d: %w", a, b, repository.ErrNotFriends)
		}

		// b -> a first, then a -> b.
		for _, pair := range [][2]int64{{b, a}, {a, b}} {
			if _, err := tx.ExecContext(ctx, `UPDATE profiles SET best_friend_id = NULL WHERE id = ? AND best_friend_id = ?`, pair[0], pair[1]); err != nil {
				log.Error("failed to clear best friend of %d: %v", pair[0], err)
				return err
			}
		}

		stmt, args, err := sqlBuilder.Delete("friendships").
			Where(squirrel.Or{
				squirrel.Eq{"profile_id": a, "friend_id": b},
				squirrel.Eq{"profile_id": b, "friend_id": a},
			}).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			log.Error("failed to delete friendship %d <-> %d: %v", a, b, err)
			return err
		}
		return nil
	})
}

// SetBestFriend points id's best-friend reference at bestFriendID, or clears
// it when bestFriendID is nil. The target must already be a friend.
func (r *friendshipRepository) SetBestFriend(ctx context.Context, id int64, bestFriendID *int64) error {
	log := logger.FromContext(ctx).WithPrefix("friendship_repo")

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		if err := requireProfiles(ctx, tx, id); err != nil {
			return err
		}
		if bestFriendID != nil {
			if *bestFriendID == id {
				return repository.ErrSelfReference
			}
			friends, err := areFriends(ctx, tx, id, *bestFriendID)
			if err != nil {
				return err
			}
			if !friends {
				return fmt.Errorf("profiles %d and %d: %w", id, *bestFriendID, repository.ErrNotFriends)
			}
			log.Debug("setting best friend: %d -> %d", id, *bestFriendID)
		} else {
			log.Debug("clearing best friend of %d", id)
		}

		if _, err := tx.ExecContext(ctx, `UPDATE profiles SET best_friend_id = ? WHERE id = ?`, bestFriendID, id); err != nil {
			log.Error("failed to update best friend of %d: %v", id, err)
			return err
		}
		return nil
	})
}
