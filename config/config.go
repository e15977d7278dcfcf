package config

import (
	"alertrelay/models"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

const (
	SnippetStoreLocal = "local"
	SnippetStoreMinio = "minio"
)

var defaultCORSOrigins = []string{
	"https://policemonitoring.vercel.app",
	"https://sossafety-alert-9ijj.vercel.app",
	"http://127.0.0.1:5500",
	"http://localhost:5500",
}

type Config struct {
	Environment string `validate:"required"`
	Port        string `validate:"required,numeric"`

	// Shared secret for sensor ingestion
	AlertAPIKey string `validate:"required"`

	// Alert store
	MaxAlerts  int     `validate:"min=1"`
	DefaultLat float64 `validate:"latitude"`
	DefaultLng float64 `validate:"longitude"`

	CORSOrigins []string

	// Proxies whose X-Forwarded-For is believed. Empty trusts none.
	TrustedProxies []string `validate:"omitempty,dive,ip|cidr"`

	// Rate limiting
	RedisURL             string
	IngestRateLimit      int `validate:"min=0"`
	IngestRateWindowSecs int `validate:"min=1"`
	WSEventsPerMinute    int `validate:"min=0"`

	// Snippet storage
	SnippetStore      string `validate:"oneof=local minio"`
	SnippetsDir       string `validate:"required_if=SnippetStore local"`
	MinioEndpoint     string `validate:"required_if=SnippetStore minio"`
	MinioAccessKey    string
	MinioSecretKey    string
	MinioBucket       string `validate:"required_if=SnippetStore minio"`
	MinioUseSSL       bool
	SnippetListTTLSec int `validate:"min=1"`

	// Logging
	LogLevel string `validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFile  string
}

func Load() *Config {
	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "3000"),
		AlertAPIKey: getEnv("ALERT_API_KEY", "dev-alert-key"),

		MaxAlerts:  getEnvAsInt("MAX_ALERTS", 100),
		DefaultLat: getEnvAsFloat("DEFAULT_LAT", 12.9716),
		DefaultLng: getEnvAsFloat("DEFAULT_LNG", 77.5946),

		CORSOrigins:    getEnvAsList("CORS_ORIGINS", defaultCORSOrigins),
		TrustedProxies: getEnvAsList("TRUSTED_PROXIES", nil),

		RedisURL:             getEnv("REDIS_URL", ""),
		IngestRateLimit:      getEnvAsInt("INGEST_RATE_LIMIT", 120),
		IngestRateWindowSecs: getEnvAsInt("INGEST_RATE_WINDOW_SECONDS", 60),
		WSEventsPerMinute:    getEnvAsInt("WS_EVENTS_PER_MINUTE", 600),

		SnippetStore:      strings.ToLower(getEnv("SNIPPET_STORE", SnippetStoreLocal)),
		SnippetsDir:       getEnv("SNIPPETS_DIR", "snippets"),
		MinioEndpoint:     getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey:    getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:    getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:       getEnv("MINIO_BUCKET", "snippets"),
		MinioUseSSL:       getEnvAsBool("MINIO_USE_SSL", false),
		SnippetListTTLSec: getEnvAsInt("SNIPPET_LIST_TTL_SECONDS", 10),

		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFile:  getEnv("LOG_FILE", ""),
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			return fmt.Errorf("invalid configuration: %s failed %q", verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) Fallback() models.Position {
	return models.Position{Lat: c.DefaultLat, Lng: c.DefaultLng}
}

func (c *Config) IngestRateWindow() time.Duration {
	return time.Duration(c.IngestRateWindowSecs) * time.Second
}

func (c *Config) SnippetListTTL() time.Duration {
	return time.Duration(c.SnippetListTTLSec) * time.Second
}

// InitRedis returns nil when no REDIS_URL is configured.
func InitRedis(cfg *Config) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logrus.WithError(err).Warn("Invalid REDIS_URL, falling back to localhost")
		// Fallback to default config
		opt = &redis.Options{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		}
	}

	client := redis.NewClient(opt)
	return client
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := cast.ToFloat64E(strings.TrimSpace(value)); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := cast.ToBoolE(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
