package repository

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_create_urls.up.sql")
	assert.Contains(t, names, "000001_create_urls.down.sql")

	up, err := fs.ReadFile(migrationsFS, "migrations/000001_create_urls.up.sql")
	require.NoError(t, err)
	for _, col := range []string{"id", "long_url", "short_code", "created_at", "expires_at", "click_count"} {
		assert.True(t, strings.Contains(string(up), col), "missing column %s", col)
	}
}
