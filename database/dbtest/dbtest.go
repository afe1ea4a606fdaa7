// Package dbtest opens throwaway migrated databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/rpupo63/project-showcase-backend/config"
	"github.com/rpupo63/project-showcase-backend/database"
	"github.com/stretchr/testify/require"
)

// New returns a migrated SQLite-backed Database in t's temp dir. The pool is
// a single connection, so concurrent transactions queue instead of failing
// with SQLITE_BUSY.
func New(t testing.TB) database.Database {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "showcase.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := database.OpenDialector(context.Background(), sqlite.Open(dsn), config.Database{
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(context.Background()))
	return db
}
