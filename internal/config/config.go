package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int

	JWTSecret string

	// Env is "dev" (default) or "prod".
	Env string

	// ScanTick is the background scanner tick interval (default 60s). Set via SCAN_TICK_MS.
	ScanTick time.Duration
	// ScanBatchSize is the max number of due applications selected per tick (default 5).
	ScanBatchSize int
	// ScanConcurrency is the max number of scans running in parallel (default 2).
	ScanConcurrency int
	// ScansEnabled turns the background scanner on. Set ENABLE_BACKGROUND_SCANS=true.
	ScansEnabled bool

	// LeaseTTL is how long a scan lease is held before it expires (default 120s).
	// A scan that overruns the TTL silently loses its exclusivity guarantee.
	LeaseTTL time.Duration

	// FetchTimeout bounds every page fetch (default 12s).
	FetchTimeout time.Duration

	// BackoffBase and BackoffCap shape the retry delay after scan failures:
	// min(base * 2^failures, cap). Defaults 1m / 1h.
	BackoffBase time.Duration
	BackoffCap  time.Duration

	// AttachMinScore is the minimum email score to attach (default 60).
	AttachMinScore int
	// PromoteMinScore is the minimum email score to promote status (default 80).
	PromoteMinScore int

	// InstanceID identifies this process as a lease owner. Defaults to hostname:pid.
	InstanceID string

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string
}

func Load() Config {
	return Config{
		Port: getEnv("PORT", "8080"),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBName: getEnv("DB_NAME", "jobwatch"),
		DBUser: getEnv("DB_USER", "jobwatch"),
		DBPass: getEnv("DB_PASS", "jobwatch"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		JWTSecret: getEnv("JWT_SECRET", "supersecretkey"),
		Env:       getEnv("ENV", "dev"),

		ScanTick:        getEnvMs("SCAN_TICK_MS", 60_000),
		ScanBatchSize:   getEnvInt("SCAN_BATCH_SIZE", 5),
		ScanConcurrency: getEnvInt("SCAN_CONCURRENCY", 2),
		ScansEnabled:    getEnv("ENABLE_BACKGROUND_SCANS", "false") == "true",

		LeaseTTL:     getEnvMs("SCAN_LEASE_TTL_MS", 120_000),
		FetchTimeout: getEnvMs("FETCH_TIMEOUT_MS", 12_000),

		BackoffBase: getEnvMs("SCAN_BACKOFF_BASE_MS", 60_000),
		BackoffCap:  getEnvMs("SCAN_BACKOFF_CAP_MS", 3_600_000),

		AttachMinScore:  getEnvInt("ATTACH_MIN_SCORE", 60),
		PromoteMinScore: getEnvInt("PROMOTE_MIN_SCORE", 80),

		InstanceID: getEnv("INSTANCE_ID", ""),

		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

func getEnvMs(key string, fallbackMs int) time.Duration {
	return time.Duration(getEnvInt(key, fallbackMs)) * time.Millisecond
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
