package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "http://localhost:8080", cfg.ServerURL)
	assert.Equal(t, "ledgerkeep.db", cfg.DBPath)
	assert.Equal(t, "bolt", cfg.DBBackend)
	assert.Equal(t, "@every 30s", cfg.SyncSchedule)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.ProbeInterval)
	assert.Equal(t, 3, cfg.MaxRetries)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("LEDGERKEEP_SERVER_URL", "https://books.example.com")
	t.Setenv("LEDGERKEEP_DB_BACKEND", "sqlite")
	t.Setenv("LEDGERKEEP_SYNC_SCHEDULE", "@every 1m")
	t.Setenv("LEDGERKEEP_PROBE_INTERVAL", "30s")
	t.Setenv("LEDGERKEEP_MAX_RETRIES", "5")

	cfg := Load()

	assert.Equal(t, "https://books.example.com", cfg.ServerURL)
	assert.Equal(t, "sqlite", cfg.DBBackend)
	assert.Equal(t, "@every 1m", cfg.SyncSchedule)
	assert.Equal(t, 30*time.Second, cfg.ProbeInterval)
	assert.Equal(t, 5, cfg.MaxRetries)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("LEDGERKEEP_PROBE_INTERVAL", "soon")
	t.Setenv("LEDGERKEEP_MAX_RETRIES", "many")

	cfg := Load()

	assert.Equal(t, 10*time.Second, cfg.ProbeInterval)
	assert.Equal(t, 3, cfg.MaxRetries)
}

func TestConfig_SlogLevel(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  slog.Level
	}{
		{name: "debug", level: "debug", want: slog.LevelDebug},
		{name: "info", level: "info", want: slog.LevelInfo},
		{name: "warn", level: "warn", want: slog.LevelWarn},
		{name: "error", level: "error", want: slog.LevelError},
		{name: "unknown defaults to info", level: "verbose", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.level}
			assert.Equal(t, tt.want, cfg.SlogLevel())
		})
	}
}
