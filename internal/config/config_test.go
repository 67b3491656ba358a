package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"APP_ADDR", "WORKER_ADDR", "LOG_LEVEL", "DB_QUERY_TIMEOUT", "QUEUE_URL", "STORAGE_BUCKET", "CATALOG_BASE_URL", "CATALOG_MAX_RETRIES"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.App.Addr)
	assert.Equal(t, ":8081", cfg.App.WorkerAddr)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, int32(20), cfg.Queue.WaitSeconds)
	assert.Equal(t, int32(10), cfg.Queue.MaxMessages)
	assert.Equal(t, "https://www.googleapis.com", cfg.Catalog.BaseURL)
	assert.Equal(t, 0, cfg.Catalog.MaxRetries)
	assert.Equal(t, 24*time.Hour, cfg.Catalog.CacheTTL)
	assert.Equal(t, int64(10<<20), cfg.Storage.ImageMaxBytes)
	assert.Error(t, cfg.RequireQueue())
	assert.Error(t, cfg.RequireStorage())
}

func TestLoad_EnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("QUEUE_URL", "https://sqs.us-east-1.amazonaws.com/123/books")
	t.Setenv("STORAGE_BUCKET", "covers")
	t.Setenv("CATALOG_RPS", "2")
	t.Setenv("CATALOG_TIMEOUT", "3s")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://sqs.us-east-1.amazonaws.com/123/books", cfg.Queue.URL)
	assert.Equal(t, 2, cfg.Catalog.RPS)
	assert.Equal(t, 3*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, "json", cfg.App.LogFormat)
	assert.NoError(t, cfg.RequireQueue())
	assert.NoError(t, cfg.RequireStorage())
}

func TestLoad_Invalid(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("LOG_LEVEL", "verbose")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadEnvFiles_DoesNotOverrideExistingEnv(t *testing.T) {
	tmp := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmp, ".env"), []byte("DB_DSN=from_file\nCATALOG_API_KEY=file_key\n"), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	chdir(t, tmp)
	t.Setenv("DB_DSN", "from_env")
	t.Setenv("CATALOG_API_KEY", "")
	os.Unsetenv("CATALOG_API_KEY")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from_env", cfg.Database.DSN)
	assert.Equal(t, "file_key", cfg.Catalog.APIKey)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
