package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, 8080, cfg.AppPort)
	assert.Equal(t, BackendSQLite, cfg.StorageBackend)
	assert.Equal(t, "memory-gallery.db", cfg.DatabasePath)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxImageBytes)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.IsDevelopment())
	assert.Nil(t, cfg.GetCORSAllowedOrigins())
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, uint32(5), cfg.BreakerFailures)
	assert.Equal(t, 30*time.Second, cfg.BreakerTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("MAX_IMAGE_BYTES", "1024")
	t.Setenv("READ_TIMEOUT", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.AppPort)
	assert.Equal(t, BackendMemory, cfg.StorageBackend)
	assert.Equal(t, int64(1024), cfg.MaxImageBytes)
	assert.Equal(t, 2*time.Second, cfg.ReadTimeout)
}

func TestLoad_RedisRequiresURL(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "redis")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string][2]string{
		"unknown backend":  {"STORAGE_BACKEND", "cassette"},
		"unknown format":   {"LOG_FORMAT", "xml"},
		"zero image limit": {"MAX_IMAGE_BYTES", "0"},
		"unparseable port": {"APP_PORT", "eighty"},
		"negative limit":   {"WRITE_RATE_LIMIT", "-1"},
		"zero breaker":     {"BREAKER_FAILURES", "0"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetCORSAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: " http://a.test, ,http://b.test "}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.GetCORSAllowedOrigins())
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, (&Config{LogLevel: "DEBUG"}).SlogLevel())
	assert.Equal(t, slog.LevelWarn, (&Config{LogLevel: "warning"}).SlogLevel())
	assert.Equal(t, slog.LevelError, (&Config{LogLevel: "error"}).SlogLevel())
	assert.Equal(t, slog.LevelInfo, (&Config{LogLevel: "nonsense"}).SlogLevel())
}
