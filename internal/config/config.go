// Package config reads the server configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dharmasatrya/tripsearch/internal/logging"
)

const (
	EnvironmentProduction = "production"

	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
	CacheBackendNone   = "none"

	defaultJourneyPlannerURL = "https://api.entur.io/journey-planner/v3/graphql"
	defaultShamashURL        = "https://api.entur.io/graphql-explorer/journey-planner-v3"
)

type Config struct {
	Port        string
	Environment string

	JourneyPlannerURL           string
	JourneyPlannerNonTransitURL string
	ClientName                  string
	UpstreamTimeout             time.Duration
	UpstreamMaxRetries          int
	UpstreamRPS                 float64
	UpstreamBurst               int
	UpstreamNonTransitRPS       float64
	UpstreamNonTransitBurst     int

	CacheBackend    string
	RedisHost       string
	RedisPort       string
	RedisPassword   string
	RedisDB         int
	CacheTTL        time.Duration
	MemoryCacheSize int

	ServiceTimezone        string
	DefaultNumTripPatterns int
	ShamashURL             string

	Log logging.Config
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvironmentProduction)
}

func Load() Config {
	primary := getEnv("JOURNEY_PLANNER_URL", defaultJourneyPlannerURL)
	rps := getEnvFloat("UPSTREAM_RPS", 20)
	burst := getEnvInt("UPSTREAM_BURST", 40)
	logDefaults := logging.DefaultConfig()

	return Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		JourneyPlannerURL:           primary,
		JourneyPlannerNonTransitURL: getEnv("JOURNEY_PLANNER_NON_TRANSIT_URL", primary),
		ClientName:                  getEnv("JOURNEY_PLANNER_CLIENT_NAME", "bff-trips"),
		UpstreamTimeout:             getEnvDuration("UPSTREAM_TIMEOUT", 10*time.Second),
		UpstreamMaxRetries:          getEnvInt("UPSTREAM_MAX_RETRIES", 2),
		UpstreamRPS:                 rps,
		UpstreamBurst:               burst,
		UpstreamNonTransitRPS:       getEnvFloat("UPSTREAM_NON_TRANSIT_RPS", rps),
		UpstreamNonTransitBurst:     getEnvInt("UPSTREAM_NON_TRANSIT_BURST", burst),

		CacheBackend:    strings.ToLower(getEnv("CACHE_BACKEND", CacheBackendRedis)),
		RedisHost:       getEnv("REDIS_HOST", "localhost"),
		RedisPort:       getEnv("REDIS_PORT", "6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		CacheTTL:        getEnvDuration("CACHE_TTL", 30*time.Minute),
		MemoryCacheSize: getEnvInt("MEMORY_CACHE_SIZE", 10000),

		ServiceTimezone:        getEnv("SERVICE_TIMEZONE", "Europe/Oslo"),
		DefaultNumTripPatterns: getEnvInt("DEFAULT_NUM_TRIP_PATTERNS", 8),
		ShamashURL:             getEnv("SHAMASH_URL", defaultShamashURL),

		Log: logging.Config{
			Level:      getEnv("LOG_LEVEL", logDefaults.Level),
			Format:     getEnv("LOG_FORMAT", logDefaults.Format),
			FilePath:   getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", logDefaults.MaxSizeMB),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", logDefaults.MaxBackups),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", logDefaults.MaxAgeDays),
			Compress:   getEnvBool("LOG_COMPRESS", logDefaults.Compress),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
