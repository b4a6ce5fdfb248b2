package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all client configuration
type Config struct {
	ServerURL     string        // адрес REST backend
	DBPath        string        // путь к локальной базе
	DBBackend     string        // бэкенд хранилища: "bolt" или "sqlite"
	SyncSchedule  string        // cron-расписание фоновой синхронизации
	LogLevel      string        // уровень логирования
	ProbeInterval time.Duration // период опроса доступности сервера
	MaxRetries    int           // лимит попыток действия по умолчанию
}

// Load reads configuration from environment variables.
// Файл .env подхватывается, если существует.
func Load() *Config {
	// .env опционален, ошибку игнорируем
	_ = godotenv.Load()

	return &Config{
		ServerURL:     getEnv("LEDGERKEEP_SERVER_URL", "http://localhost:8080"),
		DBPath:        getEnv("LEDGERKEEP_DB_PATH", "ledgerkeep.db"),
		DBBackend:     getEnv("LEDGERKEEP_DB_BACKEND", "bolt"),
		SyncSchedule:  getEnv("LEDGERKEEP_SYNC_SCHEDULE", "@every 30s"),
		LogLevel:      getEnv("LEDGERKEEP_LOG_LEVEL", "info"),
		ProbeInterval: getEnvDuration("LEDGERKEEP_PROBE_INTERVAL", 10*time.Second),
		MaxRetries:    getEnvInt("LEDGERKEEP_MAX_RETRIES", 3),
	}
}

// SlogLevel преобразует текстовый уровень в slog.Level
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
