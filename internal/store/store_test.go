package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestStoreOpenAndMigrate(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	migrations, err := Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].Version, migrations[i].Version, "migrations must be ascending")
	}

	version, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, migrations[len(migrations)-1].Version, version)

	tables := []string{"projects", "project_files", "tags", "projects_tags", "project_sources", "_migrations"}
	for _, table := range tables {
		var count int
		err := s.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "expected table %s to exist", table)
	}

	var ledgerRows int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM _migrations").Scan(&ledgerRows))
	assert.Equal(t, len(migrations), ledgerRows)
}

func TestMigrationsRunOncePerVersion(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "reopen.db")

	s, err := Open(dbPath)
	require.NoError(t, err)
	_, err = s.CreateProject(ctx, "Vase", "/models/Vase", "")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	migrations, err := Migrations()
	require.NoError(t, err)

	var ledgerRows int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM _migrations").Scan(&ledgerRows))
	assert.Equal(t, len(migrations), ledgerRows, "reopening must not re-apply migrations")

	count, err := s.CountProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCheckIntegrity(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.CheckIntegrity(context.Background()))
	assert.NotEmpty(t, SQLiteVersion())
}
