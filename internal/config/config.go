package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend names accepted by CATALOG_BACKEND and SESSION_BACKEND.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Load reads the .env file named by RECIPEBOT_ENV (or .env by default),
// then its .secret sidecar if it exists. Variables already set in the
// environment win. All config is flat env vars read by the getters below.
func Load() error {
	envFile := os.Getenv("RECIPEBOT_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func MigrationsPath() string {
	p := os.Getenv("MIGRATIONS_PATH")
	if p == "" {
		return "migrations"
	}
	return p
}

// CatalogBackend is postgres (default) or sqlite.
func CatalogBackend() string {
	return backend("CATALOG_BACKEND", BackendPostgres)
}

func SQLitePath() string {
	p := os.Getenv("SQLITE_PATH")
	if p == "" {
		return "recipes.db"
	}
	return p
}

// SessionBackend is postgres (default), redis or memory.
func SessionBackend() string {
	return backend("SESSION_BACKEND", BackendPostgres)
}

func RedisAddr() string {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return "localhost:6379"
	}
	return addr
}

func RedisPassword() string {
	return os.Getenv("REDIS_PASSWORD")
}

func RedisDB() int {
	db, err := strconv.Atoi(os.Getenv("REDIS_DB"))
	if err != nil || db < 0 {
		return 0
	}
	return db
}

// SessionTTL bounds how long Redis keeps a session after its last turn.
func SessionTTL() time.Duration {
	return duration("SESSION_TTL", 24*time.Hour)
}

// SessionIdleTimeout is how long a session may go without a turn before the
// expirer removes it.
func SessionIdleTimeout() time.Duration {
	return duration("SESSION_IDLE_TIMEOUT", 2*time.Hour)
}

func ExpirerInterval() time.Duration {
	return duration("EXPIRER_INTERVAL", 10*time.Minute)
}

// RateLimitRPS returns requests per second limit. Defaults to 100.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting. Defaults to 20.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error). Defaults to "info".
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

// StrictInvariants makes dialog invariant violations fail the turn instead of
// degrading to an apology. Meant for development.
func StrictInvariants() bool {
	strict, err := strconv.ParseBool(os.Getenv("STRICT_INVARIANTS"))
	return err == nil && strict
}

func backend(key, def string) string {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return def
	}
	return v
}

func duration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
