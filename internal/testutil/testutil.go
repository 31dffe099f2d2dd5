package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vytor/monkeyapp/internal/db"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The database is configured with foreign keys enabled.
func NewTestDB(t *testing.T) *sql.DB {
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	return database.DB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// IntPtr returns a pointer to n, for optional fields such as age.
func IntPtr(n int) *int {
	return &n
}

// InsertProfile adds a profile row directly and returns its id.
func InsertProfile(t *testing.T, database *sql.DB, name, email string, age int) int64 {
	res, err := database.ExecContext(context.Background(),
		`INSERT INTO profiles (name, email, age) VALUES (?, ?, ?)`, name, email, age)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// InsertNumberedProfiles adds n profiles named Test0..Test{n-1} with matching
// emails and returns their ids in insertion order.
func InsertNumberedProfiles(t *testing.T, database *sql.DB, n int) []int64 {
	ids := make([]int64, n)
	for i := 0; i < n; i++ {
		ids[i] = InsertProfile(t, database, fmt.Sprintf("Test%d", i), fmt.Sprintf("test%d@test.fi", i), 20)
	}
	return ids
}

// FriendRows returns the friend ids stored for id, i.e. one direction only.
func FriendRows(t *testing.T, database *sql.DB, id int64) []int64 {
	rows, err := database.QueryContext(context.Background(),
		`SELECT friend_id FROM friendships WHERE profile_id = ? ORDER BY friend_id`, id)
	require.NoError(t, err)
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var fid int64
		require.NoError(t, rows.Scan(&fid))
		ids = append(ids, fid)
	}
	require.NoError(t, rows.Err())
	return ids
}

// BestFriendOf returns the stored best-friend reference of id.
func BestFriendOf(t *testing.T, database *sql.DB, id int64) *int64 {
	var bf sql.NullInt64
	require.NoError(t, database.QueryRowContext(context.Background(),
		`SELECT best_friend_id FROM profiles WHERE id = ?`, id).Scan(&bf))
	if !bf.Valid {
		return nil
	}
	return &bf.Int64
}
