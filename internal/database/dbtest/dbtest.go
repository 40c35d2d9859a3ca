// Package dbtest opens throwaway migrated databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"cashvelo/internal/database"
)

// Open returns a migrated pure-Go SQLite database in a temp directory that
// is closed when the test ends
func Open(t testing.TB) *database.DB {
	t.Helper()
	db, err := database.Initialize(
		database.NewPureSQLiteDialect(),
		database.DialectConfig{Path: filepath.Join(t.TempDir(), "cashvelo-test.db")},
	)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.RunMigrations(context.Background()))
	return db
}
