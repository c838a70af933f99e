package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultSessionSecret = "SECRET"

// Config holds the whole application configuration, populated from the
// environment (a .env file is loaded by the cmd entrypoints).
type Config struct {
	App      AppConfig
	Redis    RedisConfig
	Session  SessionConfig
	MinIO    MinIOConfig
	Geocoder GeocoderConfig
	Upload   UploadConfig
	Queue    QueueConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

// SessionConfig mirrors the cookie session settings: a 7 day rolling TTL
// and a touch interval that limits store writes for unmodified sessions.
type SessionConfig struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	TouchAfter time.Duration
	Secure     bool
}

type MinIOConfig struct {
	Endpoint  string // localhost:9000
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the base browsers use to fetch objects. Defaults to the endpoint.
	PublicURL string
}

type GeocoderConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	CacheTTL  time.Duration
}

type UploadConfig struct {
	MaxImageBytes int64
	Timeout       time.Duration
}

// QueueConfig drives cmd/worker and the asynq scheduler.
type QueueConfig struct {
	Concurrency int
	HealthPort  string
	// GeoRepairCron schedules the periodic geo repair. Empty disables it.
	GeoRepairCron string
	// GeoThrottle spaces geocoder calls made by batch repairs.
	GeoThrottle time.Duration
}

// Load reads config from environment variables and validates it.
func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "WanderLust"),
			Environment: env,
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Session: SessionConfig{
			Secret:     getEnv("SESSION_SECRET", defaultSessionSecret),
			CookieName: getEnv("SESSION_COOKIE", "wanderlust.sid"),
			TTL:        getEnvDuration("SESSION_TTL", 7*24*time.Hour),
			TouchAfter: getEnvDuration("SESSION_TOUCH_AFTER", 24*time.Hour),
			Secure:     getEnvBool("SESSION_SECURE", env == "production"),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "wanderlust"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			PublicURL: getEnv("MINIO_PUBLIC_URL", ""),
		},
		Geocoder: GeocoderConfig{
			BaseURL:   getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org"),
			UserAgent: getEnv("GEOCODER_USER_AGENT", "wanderlust/1.0"),
			Timeout:   getEnvDuration("GEOCODER_TIMEOUT", 5*time.Second),
			CacheTTL:  getEnvDuration("GEOCODER_CACHE_TTL", 30*24*time.Hour),
		},
		Upload: UploadConfig{
			MaxImageBytes: int64(getEnvInt("UPLOAD_MAX_IMAGE_BYTES", 5*1024*1024)),
			Timeout:       getEnvDuration("UPLOAD_TIMEOUT", 30*time.Second),
		},
		Queue: QueueConfig{
			Concurrency:   getEnvInt("WORKER_CONCURRENCY", 10),
			HealthPort:    getEnv("WORKER_HEALTH_PORT", "8081"),
			GeoRepairCron: getEnv("GEO_REPAIR_CRON", ""),
			GeoThrottle:   getEnvDuration("GEO_THROTTLE", time.Second),
		},
	}

	if cfg.MinIO.PublicURL == "" {
		scheme := "http"
		if cfg.MinIO.UseSSL {
			scheme = "https"
		}
		cfg.MinIO.PublicURL = fmt.Sprintf("%s://%s", scheme, cfg.MinIO.Endpoint)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate enforces production-only requirements.
func (c *Config) Validate() error {
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.Queue.GeoThrottle < time.Second {
		return fmt.Errorf("GEO_THROTTLE must be at least 1s")
	}
	if c.App.IsProduction() {
		if c.Session.Secret == defaultSessionSecret {
			return fmt.Errorf("SESSION_SECRET must be set in production")
		}
		if !c.Session.Secure {
			return fmt.Errorf("SESSION_SECURE must be enabled in production")
		}
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
