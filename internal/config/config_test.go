package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/contact-relay/internal/config"
)

var envKeys = []string{
	"PORT", "SITE_DIR",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASSWORD", "SMTP_TIMEOUT",
	"AUDIT_DB_PATH", "AUDIT_SALT",
	"LOG_LEVEL", "LOG_DEVELOPMENT",
}

// clearEnv blanks every variable Load reads. t.Setenv forbids t.Parallel.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.EqualValues(t, 1<<20, cfg.Server.MaxBodyBytes)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Empty(t, cfg.SMTP.Host, "smtp has no defaults")
	assert.Zero(t, cfg.SMTP.Port)
	assert.False(t, cfg.Audit.Enabled())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "587")
	t.Setenv("SMTP_USER", "me@example.com")
	t.Setenv("SMTP_PASSWORD", "secret")
	t.Setenv("SMTP_TIMEOUT", "5s")
	t.Setenv("PORT", "3000")
	t.Setenv("AUDIT_DB_PATH", "/tmp/audit.db")
	t.Setenv("LOG_DEVELOPMENT", "true")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, "me@example.com", cfg.SMTP.User)
	assert.Equal(t, "secret", cfg.SMTP.Password)
	assert.Equal(t, 5*time.Second, cfg.SMTP.Timeout)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.True(t, cfg.Audit.Enabled())
	assert.True(t, cfg.Log.Development)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
server:
  port: "9000"
  site_dir: ./public
  shutdown_timeout: 30s
smtp:
  host: file.example.com
  port: 2525
  user: file@example.com
  timeout: 20s
audit:
  db_path: audit.db
  retention: 720h
log:
  level: warn
  development: true
`)
	t.Setenv("SMTP_HOST", "env.example.com")
	t.Setenv("LOG_DEVELOPMENT", "false")
	t.Setenv("SMTP_TIMEOUT", "0s")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "./public", cfg.Server.SiteDir)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.EqualValues(t, 1<<20, cfg.Server.MaxBodyBytes, "defaults survive a partial file")
	assert.Equal(t, "env.example.com", cfg.SMTP.Host, "env wins over file")
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, "file@example.com", cfg.SMTP.User)
	assert.Zero(t, cfg.SMTP.Timeout, "env zero wins over file value")
	assert.Equal(t, "audit.db", cfg.Audit.DBPath)
	assert.Equal(t, 720*time.Hour, cfg.Audit.Retention)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.False(t, cfg.Log.Development, "env false wins over file true")
}

func TestLoad_Errors(t *testing.T) {
	t.Run("bad smtp port", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SMTP_PORT", "submission")

		_, err := config.Load("")
		require.ErrorContains(t, err, "SMTP_PORT")
	})

	t.Run("bad log development flag", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LOG_DEVELOPMENT", "maybe")

		_, err := config.Load("")
		require.ErrorContains(t, err, "LOG_DEVELOPMENT")
	})

	t.Run("missing file", func(t *testing.T) {
		clearEnv(t)

		_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		clearEnv(t)

		_, err := config.Load(writeFile(t, "server: [unterminated"))
		require.Error(t, err)
	})
}
