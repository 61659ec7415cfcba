package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string

	// Database. An empty DatabaseURL selects the local SQLite store.
	DatabaseURL string
	SQLitePath  string

	// Redis. Empty disables the lesson cache.
	RedisURL      string
	CacheTTL      time.Duration
	CacheRequired bool

	// RabbitMQ. Empty keeps lesson events in process.
	RabbitMQURL      string
	RabbitMQExchange string
	RabbitMQQueue    string

	// HTTP API
	HTTPAddr string

	// Back office. Empty applies lesson changes to the local store.
	BackOfficeURL              string
	BackOfficeTimeout          time.Duration
	BreakerFailureThreshold    int
	BreakerOpenTimeout         time.Duration
	BreakerInterval            time.Duration
	BreakerHalfOpenMaxRequests int

	// CalDAV publication
	CalDAVURL           string
	CalDAVUsername      string
	CalDAVPassword      string
	CalDAVCalendarPath  string
	CalDAVDeleteMissing bool
	PublishCron         string
	PublishHorizonDays  int

	// Worker
	WorkerHealthAddr string

	// Board
	BoardLayoutFile string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", defaultSQLitePath()),

		RedisURL:      getEnv("REDIS_URL", ""),
		CacheTTL:      getDurationEnv("CACHE_TTL", 5*time.Minute),
		CacheRequired: getBoolEnv("CACHE_REQUIRED", false),

		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", "lessonboard.lessons"),
		RabbitMQQueue:    getEnv("RABBITMQ_QUEUE", "lessonboard.worker"),

		HTTPAddr: getEnv("HTTP_ADDR", "127.0.0.1:8080"),

		BackOfficeURL:              getEnv("BACKOFFICE_URL", ""),
		BackOfficeTimeout:          getDurationEnv("BACKOFFICE_TIMEOUT", 10*time.Second),
		BreakerFailureThreshold:    getIntEnv("BREAKER_FAILURE_THRESHOLD", 5),
		BreakerOpenTimeout:         getDurationEnv("BREAKER_OPEN_TIMEOUT", 30*time.Second),
		BreakerInterval:            getDurationEnv("BREAKER_INTERVAL", time.Minute),
		BreakerHalfOpenMaxRequests: getIntEnv("BREAKER_HALF_OPEN_MAX_REQUESTS", 1),

		CalDAVURL:           getEnv("CALDAV_URL", ""),
		CalDAVUsername:      getEnv("CALDAV_USERNAME", ""),
		CalDAVPassword:      getEnv("CALDAV_PASSWORD", ""),
		CalDAVCalendarPath:  getEnv("CALDAV_CALENDAR_PATH", ""),
		CalDAVDeleteMissing: getBoolEnv("CALDAV_DELETE_MISSING", false),
		PublishCron:         getEnv("PUBLISH_CRON", "*/30 * * * *"),
		PublishHorizonDays:  getIntEnv("PUBLISH_HORIZON_DAYS", 28),

		WorkerHealthAddr: getEnv("WORKER_HEALTH_ADDR", "127.0.0.1:8081"),

		BoardLayoutFile: getEnv("BOARD_LAYOUT_FILE", ""),
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// UsesLocalStore reports whether lessons live in this process's database
// rather than behind a remote back office.
func (c *Config) UsesLocalStore() bool {
	return c.BackOfficeURL == ""
}

// CalDAVEnabled reports whether timetable publication is configured.
func (c *Config) CalDAVEnabled() bool {
	return c.CalDAVURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".lessonboard", "lessonboard.db")
	}
	return filepath.Join(home, ".lessonboard", "lessonboard.db")
}
