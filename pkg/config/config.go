// Package config is the process-bootstrap configuration layer: it reads
// environment variables (§6) before phase 1 of the startup orchestrator
// runs and resolves the profile and the DSNs its providers need. This is
// distinct from pkg/configuration, which assembles the plugin-contributed
// YAML configuration tree after the registry exists (§4.2).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Profile names one of the three standard provider sets (§4.7).
type Profile string

const (
	ProfileTest        Profile = "test"
	ProfileDevelopment Profile = "development"
	ProfileProduction  Profile = "production"
)

func (p Profile) valid() bool {
	switch p {
	case ProfileTest, ProfileDevelopment, ProfileProduction:
		return true
	default:
		return false
	}
}

// Config holds the environment-derived settings every profile's providers
// read at construction time.
type Config struct {
	Profile       Profile
	UserConfigDir string

	Storage  StorageConfig
	Observability ObservabilityConfig
}

// StorageConfig holds the per-backend DSNs and tuning knobs for the
// state/cache/data-store providers, adapted from the teacher's
// storage.Config (SPOKE_* -> PAISE_* env prefix, backend fields kept).
type StorageConfig struct {
	// Development profile: embedded sqlite, one file under SqliteDir.
	SqliteDir string

	// Production profile: postgres DSN for state/data store.
	PostgresURL      string
	PostgresMaxConns int
	PostgresTimeout  time.Duration

	// Production profile: redis DSN for state/cache.
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisMaxRetries int
	RedisPoolSize   int

	// Production profile: S3 location for large blob content (§3 "location").
	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool

	// In-process LRU size for the memory cache provider (test/development).
	MemoryCacheSize int
}

// ObservabilityConfig mirrors the teacher's ObservabilityConfig, narrowed to
// what this core's logging/metrics/tracing stack (§10.1) actually reads.
type ObservabilityConfig struct {
	LogLevel           string
	LogJSON            bool
	MetricsEnabled     bool
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool
}

// Load resolves Config from the environment (§6).
func Load() (*Config, error) {
	profile := Profile(getEnv("PAISE2_PROFILE", string(ProfileDevelopment)))
	if !profile.valid() {
		return nil, fmt.Errorf("config: invalid PAISE2_PROFILE %q (want test, development, or production)", profile)
	}

	userConfigDir := getEnv("PAISE_CONFIG_DIR", defaultUserConfigDir())

	cfg := &Config{
		Profile:       profile,
		UserConfigDir: userConfigDir,
		Storage:       loadStorageConfig(),
		Observability: loadObservabilityConfig(profile),
	}

	if profile == ProfileProduction {
		if cfg.Storage.PostgresURL == "" {
			return nil, fmt.Errorf("config: PAISE_POSTGRES_URL is required in production profile")
		}
		if cfg.Storage.RedisAddr == "" {
			return nil, fmt.Errorf("config: PAISE_REDIS_ADDR is required in production profile")
		}
	}

	return cfg, nil
}

func defaultUserConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("/tmp", ".config", "paise")
	}
	return filepath.Join(home, ".config", "paise")
}

func loadStorageConfig() StorageConfig {
	home, _ := os.UserHomeDir()
	return StorageConfig{
		SqliteDir:        getEnv("PAISE_SQLITE_DIR", filepath.Join(home, ".local", "share", "paise")),
		PostgresURL:      getEnv("PAISE_POSTGRES_URL", ""),
		PostgresMaxConns: getEnvInt("PAISE_POSTGRES_MAX_CONNS", 20),
		PostgresTimeout:  getEnvDuration("PAISE_POSTGRES_TIMEOUT", 10*time.Second),
		RedisAddr:        getEnv("PAISE_REDIS_ADDR", ""),
		RedisPassword:    getEnv("PAISE_REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("PAISE_REDIS_DB", 0),
		RedisMaxRetries:  getEnvInt("PAISE_REDIS_MAX_RETRIES", 3),
		RedisPoolSize:    getEnvInt("PAISE_REDIS_POOL_SIZE", 10),
		S3Endpoint:       getEnv("PAISE_S3_ENDPOINT", ""),
		S3Region:         getEnv("PAISE_S3_REGION", "us-east-1"),
		S3Bucket:         getEnv("PAISE_S3_BUCKET", ""),
		S3AccessKey:      getEnv("PAISE_S3_ACCESS_KEY", ""),
		S3SecretKey:      getEnv("PAISE_S3_SECRET_KEY", ""),
		S3UsePathStyle:   getEnvBool("PAISE_S3_USE_PATH_STYLE", false),
		MemoryCacheSize:  getEnvInt("PAISE_MEMORY_CACHE_SIZE", 4096),
	}
}

func loadObservabilityConfig(profile Profile) ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           getEnv("PAISE_LOG_LEVEL", "info"),
		LogJSON:            getEnvBool("PAISE_LOG_JSON", profile == ProfileProduction),
		MetricsEnabled:     getEnvBool("PAISE_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("PAISE_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("PAISE_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("PAISE_OTEL_SERVICE_NAME", "paise"),
		OTelServiceVersion: getEnv("PAISE_OTEL_SERVICE_VERSION", "0.1.0"),
		OTelInsecure:       getEnvBool("PAISE_OTEL_INSECURE", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
