package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/monkeyapp/internal/db"
)

func tableNames(t *testing.T, database *db.DB) []string {
	rows, err := database.QueryContext(context.Background(), `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}

func TestOpen_AppliesMigrations(t *testing.T) {
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	defer database.Close()

	assert.Equal(t, []string{"friendships", "profiles", "schema_migrations"}, tableNames(t, database))
	assert.NoError(t, database.Ping(context.Background()))

	var fk int
	require.NoError(t, database.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestOpen_ReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monkeys.db")

	first, err := db.Open(path)
	require.NoError(t, err)
	_, err = first.Exec(`INSERT INTO profiles (name, email, age) VALUES ('a', 'a@example.com', 1)`)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := db.Open(path)
	require.NoError(t, err)
	defer second.Close()

	var applied, profiles int
	require.NoError(t, second.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))
	require.NoError(t, second.QueryRow(`SELECT COUNT(*) FROM profiles`).Scan(&profiles))
	assert.Equal(t, 2, applied)
	assert.Equal(t, 1, profiles)
}

func TestSchema_RejectsSelfReferences(t *testing.T) {
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	defer database.Close()

	res, err := database.Exec(`INSERT INTO profiles (name, email, age) VALUES ('a', 'a@example.com', 1)`)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)

	_, err = database.Exec(`INSERT INTO friendships (profile_id, friend_id) VALUES (?, ?)`, id, id)
	assert.Error(t, err)

	_, err = database.Exec(`UPDATE profiles SET best_friend_id = ? WHERE id = ?`, id, id)
	assert.Error(t, err)
}
