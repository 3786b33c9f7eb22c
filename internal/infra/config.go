package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	UsageStorePostgres = "postgres"
	UsageStoreRedis    = "redis"
	UsageStoreMemory   = "memory"

	QuotaSoft   = "soft"
	QuotaStrict = "strict"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv                string
	Port                  string
	DatabaseURL           string
	JWTSecret             string
	InternalServiceSecret string
	DefaultLocale         string
	GeoIPDBPath           string
	AutoMigrate           bool

	UsageStore       string
	RedisURL         string
	QuotaEnforcement string

	ModalBaseURL string
	ModalAPIKey  string

	AssetStoragePath string
	AssetPublicURL   string

	WorkerConcurrency  int
	WorkerPollInterval time.Duration
	WorkerJobTimeout   time.Duration
	WorkerMetricsPort  string

	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		Port:                  getEnv("PORT", "8080"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		InternalServiceSecret: os.Getenv("INTERNAL_SERVICE_SECRET"),
		DefaultLocale:         strings.ToLower(getEnv("DEFAULT_LOCALE", "sk")),
		GeoIPDBPath:           os.Getenv("GEOIP_DB_PATH"),
		AutoMigrate:           getEnvBool("AUTO_MIGRATE", false),
		UsageStore:            strings.ToLower(getEnv("USAGE_STORE", UsageStorePostgres)),
		RedisURL:              getEnv("REDIS_URL", "redis://localhost:6379/0"),
		QuotaEnforcement:      strings.ToLower(getEnv("QUOTA_ENFORCEMENT", QuotaSoft)),
		ModalBaseURL:          strings.TrimRight(os.Getenv("MODAL_BASE_URL"), "/"),
		ModalAPIKey:           os.Getenv("MODAL_API_KEY"),
		AssetStoragePath:      getEnv("ASSET_STORAGE_PATH", "./storage/assets"),
		AssetPublicURL:        getEnv("ASSET_PUBLIC_URL", "http://localhost:8080/assets"),
		WorkerConcurrency:     getEnvInt("WORKER_CONCURRENCY", 4),
		WorkerPollInterval:    time.Second * time.Duration(getEnvInt("WORKER_POLL_INTERVAL_SECONDS", 2)),
		WorkerJobTimeout:      time.Second * time.Duration(getEnvInt("WORKER_JOB_TIMEOUT_SECONDS", 300)),
		WorkerMetricsPort:     getEnv("WORKER_METRICS_PORT", "9091"),
		HTTPReadTimeout:       time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:      time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:       time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:       getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		CORSAllowedOrigins:    getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	// user tokens would otherwise pass the internal service check
	if cfg.InternalServiceSecret != "" && cfg.InternalServiceSecret == cfg.JWTSecret {
		return nil, fmt.Errorf("INTERNAL_SERVICE_SECRET must differ from JWT_SECRET")
	}

	switch cfg.UsageStore {
	case UsageStorePostgres, UsageStoreRedis, UsageStoreMemory:
	default:
		return nil, fmt.Errorf("USAGE_STORE must be one of postgres, redis, memory (got %q)", cfg.UsageStore)
	}

	switch cfg.QuotaEnforcement {
	case QuotaSoft, QuotaStrict:
	default:
		return nil, fmt.Errorf("QUOTA_ENFORCEMENT must be soft or strict (got %q)", cfg.QuotaEnforcement)
	}

	if cfg.WorkerConcurrency < 1 {
		cfg.WorkerConcurrency = 1
	}

	return cfg, nil
}

// StrictQuota reports whether admission uses the capped increment.
func (c *Config) StrictQuota() bool {
	return c.QuotaEnforcement == QuotaStrict
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
