// internal/database/migration_test.go
package database

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_create_print_jobs.up.sql")
	assert.Contains(t, names, "000001_create_print_jobs.down.sql")

	up, err := fs.ReadFile(migrationFiles, "migrations/000001_create_print_jobs.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS print_jobs")
}
