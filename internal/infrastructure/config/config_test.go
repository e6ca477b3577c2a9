package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  allowed_origins:
    - http://localhost:4000
ledger:
  base_url: http://ledger.internal:8000
  api_key: secret
  retry_max: 5
scanner:
  base_url: http://scanner.internal:8000
storage:
  database_path: /tmp/receipts.db
sessions:
  idle_ttl_minutes: 10
observability:
  logging:
    level: debug
    format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:4000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "http://ledger.internal:8000", cfg.Ledger.BaseURL)
	assert.Equal(t, "secret", cfg.Ledger.APIKey)
	assert.Equal(t, 5, cfg.Ledger.RetryMax)
	assert.Equal(t, "/tmp/receipts.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 10, cfg.Sessions.IdleTTLMinutes)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
	assert.Equal(t, "json", cfg.Observability.Logging.Format)

	// defaults fill the holes the file left
	assert.Equal(t, 15, cfg.Ledger.TimeoutSec)
	assert.Equal(t, 60, cfg.Scanner.TimeoutSec)
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_LEDGER_KEY", "from-env")
	path := writeConfig(t, `
ledger:
  api_key: ${TEST_LEDGER_KEY}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Ledger.APIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not: a: mapping")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("LEDGER_BASE_URL", "http://ledger.test")
	t.Setenv("LEDGER_API_KEY", "k")
	t.Setenv("SESSION_IDLE_TTL_MINUTES", "5")
	t.Setenv("LOG_LEVEL", "warn")

	cfg := LoadFromEnv()

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "http://ledger.test", cfg.Ledger.BaseURL)
	assert.Equal(t, "k", cfg.Ledger.APIKey)
	assert.Equal(t, 5, cfg.Sessions.IdleTTLMinutes)
	assert.Equal(t, "warn", cfg.Observability.Logging.Level)
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("LEDGER_RETRY_MAX", "")

	cfg := LoadFromEnv()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 3, cfg.Ledger.RetryMax)
	assert.Equal(t, "receipt_review.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 30, cfg.Sessions.IdleTTLMinutes)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
}

func TestLoadFromEnv_BadIntFallsBack(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	cfg := LoadFromEnv()
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadOrEnvWithPath_FallsBackToEnv(t *testing.T) {
	t.Setenv("PORT", "6060")
	cfg := LoadOrEnvWithPath(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Equal(t, 6060, cfg.Server.Port)
}
