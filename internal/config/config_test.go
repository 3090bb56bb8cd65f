package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 3*time.Second, cfg.DBTimeout)
	assert.Equal(t, "https://www.googleapis.com/books/v1", cfg.GoogleBooksBaseURL)
	assert.Equal(t, 10, cfg.SearchLocalLimit)
	assert.Equal(t, 5, cfg.SearchCatalogLimit)
	assert.Equal(t, 500*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, 15*time.Minute, cfg.CapabilityTTL)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.Equal(t, "db/migrations", cfg.MigrationsDir)
	assert.Len(t, cfg.IngestQueries, 3)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SEARCH_DEBOUNCE", "250ms")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("GOOGLE_BOOKS_BASE_URL", "http://catalog.local/books/v1/")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "http://catalog.local/books/v1", cfg.GoogleBooksBaseURL)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
}

func TestLoad_DotenvDoesNotOverrideEnv(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, ".env"), []byte("DB_DSN=from_file\nINTERNAL_SECRET=file-secret\n"), 0o644))
	chdir(t, tmp)
	t.Setenv("DB_DSN", "from_env")
	t.Cleanup(func() { _ = os.Unsetenv("INTERNAL_SECRET") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.DatabaseDSN)
	assert.Equal(t, "file-secret", cfg.InternalSecret)
}

func TestLoad_RejectsBadLimits(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SEARCH_CATALOG_LIMIT", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestRequireCapabilitySecret(t *testing.T) {
	assert.Error(t, Config{}.RequireCapabilitySecret())
	assert.Error(t, Config{CapabilitySecret: "short"}.RequireCapabilitySecret())
	assert.NoError(t, Config{CapabilitySecret: "0123456789abcdef"}.RequireCapabilitySecret())
}
