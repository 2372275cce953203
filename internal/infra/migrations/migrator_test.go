package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, migrationsDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	for _, e := range entries {
		data, err := fs.ReadFile(migrationsFS, migrationsDir+"/"+e.Name())
		require.NoError(t, err)
		assert.Contains(t, string(data), "-- +goose Up", e.Name())
		assert.Contains(t, string(data), "-- +goose Down", e.Name())
	}

	slots, err := fs.ReadFile(migrationsFS, migrationsDir+"/00002_create_availability_slots.sql")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(slots), "UNIQUE (consultant_id, session_type, date, start_time)"))
}
