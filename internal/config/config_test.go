package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, StorageMemory, cfg.StorageType)
	assert.Equal(t, LogFormatJSON, cfg.LogFormat)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"PLAYERSVC_HOST":         "127.0.0.1",
		"PLAYERSVC_PORT":         "9090",
		"PLAYERSVC_READ_TIMEOUT": "2s",
		"PLAYERSVC_LOG_LEVEL":    "debug",
		"PLAYERSVC_LOG_FORMAT":   "TEXT",
		"STORAGE_TYPE":           "Redis",
		"REDIS_URL":              "redis://cache:6379/1",
	})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.ReadTimeout)
	assert.Equal(t, LogFormatText, cfg.LogFormat)
	assert.Equal(t, StorageRedis, cfg.StorageType)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
}

func TestInvalid(t *testing.T) {
	tests := map[string]map[string]string{
		"port not a number": {"PLAYERSVC_PORT": "http"},
		"port out of range": {"PLAYERSVC_PORT": "70000"},
		"bad duration":      {"PLAYERSVC_READ_TIMEOUT": "soon"},
		"bad log level":     {"PLAYERSVC_LOG_LEVEL": "chatty"},
		"bad log format":    {"PLAYERSVC_LOG_FORMAT": "xml"},
		"unknown storage":   {"STORAGE_TYPE": "mongo"},
		"postgres no dsn":   {"STORAGE_TYPE": "postgres"},
		"redis without url": {"STORAGE_TYPE": "redis"},
		"sqlite empty path": {"STORAGE_TYPE": "sqlite", "SQLITE_PATH": " "},
	}

	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(vars)
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"PLAYERSVC_LOG_LEVEL": "warn"})
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestPostgres(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"STORAGE_TYPE": "postgres",
		"POSTGRES_DSN": "postgres://players@db/players?sslmode=disable",
	})
	require.NoError(t, err)
	assert.Equal(t, StoragePostgres, cfg.StorageType)
	assert.Equal(t, "postgres://players@db/players?sslmode=disable", cfg.PostgresDSN)
}

func TestLoadDotEnv(t *testing.T) {
	const fresh = "PLAYERSVC_DOTENV_TEST_FRESH"
	t.Cleanup(func() { _ = os.Unsetenv(fresh) })
	t.Setenv("PLAYERSVC_PORT", "7000")

	path := filepath.Join(t.TempDir(), ".env")
	content := "# local overrides\n" + fresh + "=from-file\nPLAYERSVC_PORT=9999\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))

	assert.Equal(t, "from-file", os.Getenv(fresh))
	assert.Equal(t, "7000", os.Getenv("PLAYERSVC_PORT"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
}

func TestLoadDotEnvMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BAD-KEY=value\n"), 0o600))

	assert.Error(t, LoadDotEnv(path))
}
