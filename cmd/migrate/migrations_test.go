package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Columns read and written by book.PostgresRepo.
var bookColumns = []string{"id", "title", "author", "published_date", "description", "image_url", "created_at", "updated_at"}

func repoMigrationsDir(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	require.True(t, ok, "runtime.Caller failed")
	return filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", "..", "db", "migrations"))
}

func TestCollectMigrations(t *testing.T) {
	migrations, err := goose.CollectMigrations(repoMigrationsDir(t), 0, goose.MaxVersion)
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Equal(t, int64(1), migrations[0].Version)
}

func TestSQLMigrations_HaveGooseDirectives(t *testing.T) {
	dir := repoMigrationsDir(t)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		assert.Contains(t, string(b), "-- +goose Up", e.Name())
		assert.Contains(t, string(b), "-- +goose Down", e.Name())
	}
}

func TestCreateBooksMigration_HasRepositoryColumns(t *testing.T) {
	b, err := os.ReadFile(filepath.Join(repoMigrationsDir(t), "00001_create_books.sql"))
	require.NoError(t, err)
	sql := string(b)

	up := sql[:strings.Index(sql, "-- +goose Down")]
	assert.Contains(t, up, "CREATE TABLE IF NOT EXISTS books")
	assert.Contains(t, up, "id             TEXT PRIMARY KEY")
	for _, column := range bookColumns[1:] {
		assert.Regexp(t, `(?m)^\s+`+column+`\s+\w+`, up, column)
	}
	assert.Contains(t, sql[strings.Index(sql, "-- +goose Down"):], "DROP TABLE IF EXISTS books")
}
