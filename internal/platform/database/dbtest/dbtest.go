// Package dbtest opens migrated in-memory SQLite databases for repository and service tests.
package dbtest

import (
	"context"
	"database/sql"
	"testing"

	"medportal/internal/platform/database"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// New returns a fresh database with the production schema applied.
// A single connection keeps the in-memory database alive for the whole test.
// Foreign keys are switched on so ON DELETE CASCADE behaves as it does in PostgreSQL.
func New(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=1")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}
