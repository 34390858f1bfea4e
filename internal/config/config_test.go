package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	t.Setenv(EnvLogLevel, "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultDBPath, cfg.DBPath)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 3*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 10*time.Second, cfg.MaxPollTime)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv(EnvDBPath, "/tmp/other.db")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/other.db", cfg.DBPath)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestFromEnv_InvalidLevel(t *testing.T) {
	t.Setenv(EnvLogLevel, "loud")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"8", slog.LevelError},
	}

	for _, tt := range tests {
		level, err := ParseLevel(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, level, tt.raw)
	}

	_, err := ParseLevel("chatty")
	assert.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	t.Setenv(EnvLogLevel, "")

	path := filepath.Join(t.TempDir(), "recache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db_path: /var/lib/recache/cache.db
log_level: warn
poll_interval: 10ms
max_poll_time: 30s
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/recache/cache.db", cfg.DBPath)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, 10*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.MaxPollTime)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	t.Setenv(EnvDBPath, "/env/wins.db")
	t.Setenv(EnvLogLevel, "")

	path := filepath.Join(t.TempDir(), "recache.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_path: /file/loses.db\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/env/wins.db", cfg.DBPath)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recache.yaml")
	require.NoError(t, os.WriteFile(path, []byte("poll_interval: soon\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
