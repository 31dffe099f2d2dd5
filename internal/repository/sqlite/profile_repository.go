package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/monkeyapp/internal/logger"
	"github.com/vytor/monkeyapp/internal/models"
	"github.com/vytor/monkeyapp/internal/repository"
	"github.com/vytor/monkeyapp/internal/validation"
)

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new ProfileRepository implementation
func NewProfileRepository(db *sql.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

// listOrderColumns maps sort keys to the expression the listing query orders by.
var listOrderColumns = map[models.SortKey]string{
	models.SortByName:           "p.name",
	models.SortByEmail:          "p.email",
	models.SortByAge:            "p.age",
	models.SortByBestFriendName: "best_friend_name",
	models.SortByFriendCount:    "friend_count",
}

func (r *profileRepository) Get(ctx context.Context, id int64) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("getting profile: id=%d", id)

	query, args, err := sqlBuilder.Select(profileColumns...).From("profiles").Where("id = ?", id).ToSql()
	if err != nil {
		return nil, err
	}
	p, err := scanProfile(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("profile not found: id=%d", id)
		return nil, fmt.Errorf("profile %d: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		log.Error("failed to get profile: %v", err)
		return nil, err
	}
	return &p, nil
}

// List returns every profile with its friend count and best friend's name.
// Profiles without a best friend are kept by the outer join. A zero order
// leaves the row order to the database.
func (r *profileRepository) List(ctx context.Context, order models.ProfileOrder) ([]models.ProfileListing, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("listing profiles: order=%q", order.String())

	query := sqlBuilder.Select(
		"p.id", "p.name", "p.email", "p.age", "p.best_friend_id",
		"COUNT(f.friend_id) AS friend_count",
		"bf.name AS best_friend_name",
	).
		From("profiles p").
		LeftJoin("friendships f ON f.profile_id = p.id").
		LeftJoin("profiles bf ON bf.id = p.best_friend_id").
		GroupBy("p.id", "bf.id")

	if col, ok := listOrderColumns[order.Key]; ok {
		dir := "ASC"
		if order.Desc {
			dir = "DESC"
		}
		query = query.OrderBy(col+" "+dir, "p.id ASC")
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to list profiles: %v", err)
		return nil, err
	}
	defer rows.Close()

	var listings []models.ProfileListing
	for rows.Next() {
		var l models.ProfileListing
		var age, bestFriendID sql.NullInt64
		var bestFriendName sql.NullString
		if err := rows.Scan(&l.ID, &l.Name, &l.Email, &age, &bestFriendID, &l.FriendCount, &bestFriendName); err != nil {
			log.Error("failed to scan profile row: %v", err)
			return nil, err
		}
		l.Age = intPtr(age)
		l.BestFriendID = int64Ptr(bestFriendID)
		if bestFriendName.Valid {
			name := bestFriendName.String
			l.BestFriendName = &name
		}
		listings = append(listings, l)
	}

	log.Debug("found %d profiles", len(listings))
	return listings, rows.Err()
}

func (r *profileRepository) Create(ctx context.Context, fields models.ProfileFields) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("creating profile: name=%s", fields.Name)

	stmt, args, err := sqlBuilder.Insert("profiles").
		Columns("name", "email", "age").
		Values(fields.Name, fields.Email, fields.Age).
		ToSql()
	if err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		log.Warn("failed to create profile: %v", err)
		return nil, r.duplicates(ctx, err, fields, 0)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	log.Debug("profile created: id=%d", id)
	return r.Get(ctx, id)
}

func (r *profileRepository) Update(ctx context.Context, id int64, fields models.ProfileFields) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("updating profile: id=%d", id)

	stmt, args, err := sqlBuilder.Update("profiles").
		Set("name", fields.Name).
		Set("email", fields.Email).
		Set("age", fields.Age).
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		log.Warn("failed to update profile %d: %v", id, err)
		return nil, r.duplicates(ctx, err, fields, id)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, fmt.Errorf("profile %d: %w", id, repository.ErrNotFound)
	}
	return r.Get(ctx, id)
}

func (r *profileRepository) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("deleting profile and its relations: id=%d", id)

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		// Best-friend references -> friendships -> profile, so nothing dangles
		// even when foreign keys are not enforced by the connection.
		if _, err := tx.ExecContext(ctx, `UPDATE profiles SET best_friend_id = NULL WHERE best_friend_id = ?`, id); err != nil {
			log.Error("failed to clear best friend references to %d: %v", id, err)
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM friendships WHERE profile_id = ? OR friend_id = ?`, id, id); err != nil {
			log.Error("failed to delete friendships of %d: %v", id, err)
			return err
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
		if err != nil {
			log.Error("failed to delete profile %d: %v", id, err)
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return fmt.Errorf("profile %d: %w", id, repository.ErrNotFound)
		}

		log.Debug("profile %d deleted with its relations", id)
		return nil
	})
}

// duplicates widens a unique violation to every unique field of fields that
// a profile other than id already holds. Other errors pass through.
func (r *profileRepository) duplicates(ctx context.Context, err error, fields models.ProfileFields, id int64) error {
	err = duplicateError(err)
	var dup *repository.DuplicateError
	if !errors.As(err, &dup) {
		return err
	}

	clashing, qerr := r.clashingFields(ctx, fields, id)
	if qerr != nil {
		logger.FromContext(ctx).WithPrefix("profile_repo").Warn("failed to look up clashing fields: %v", qerr)
		return dup
	}
	if len(clashing) > 0 {
		dup.Fields = clashing
	}
	return dup
}

func (r *profileRepository) clashingFields(ctx context.Context, fields models.ProfileFields, id int64) ([]string, error) {
	values := validation.UniqueValues(fields)
	match := squirrel.Or{}
	for _, field := range validation.UniqueFields {
		match = append(match, squirrel.Eq{field: values[field]})
	}

	stmt, args, err := sqlBuilder.Select(validation.UniqueFields...).
		From("profiles").
		Where(match).
		Where(squirrel.NotEq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	taken := make(map[string]bool, len(validation.UniqueFields))
	got := make([]string, len(validation.UniqueFields))
	dest := make([]any, len(got))
	for i := range got {
		dest[i] = &got[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		for i, field := range validation.UniqueFields {
			if got[i] == values[field] {
				taken[field] = true
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var clashing []string
	for _, field := range validation.UniqueFields {
		if taken[field] {
			clashing = append(clashing, field)
		}
	}
	return clashing, nil
}
