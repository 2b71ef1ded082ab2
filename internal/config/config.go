package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Upstream     UpstreamConfig
	OfflineQueue OfflineQueueConfig
	Cache        CacheConfig
	RateLimit    RateLimitConfig
	Notification NotificationConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// UpstreamConfig points at the cart API the storefront forwards to
type UpstreamConfig struct {
	BaseURL       string
	HealthPath    string
	Timeout       time.Duration
	ProbeInterval time.Duration
}

// OfflineQueueConfig selects where queued cart intents are kept
type OfflineQueueConfig struct {
	Driver    string // redis, postgres or memory
	Key       string
	KeyPrefix string
}

type CacheConfig struct {
	KeyPrefix string
	TTL       time.Duration
}

type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
}

// NotificationConfig bounds the in-memory notification feed
type NotificationConfig struct {
	FeedLimit int
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("SERVER_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("UPSTREAM_BASE_URL", "http://localhost:9000")
	viper.SetDefault("UPSTREAM_HEALTH_PATH", "/health")
	viper.SetDefault("UPSTREAM_TIMEOUT", "10s")
	viper.SetDefault("UPSTREAM_PROBE_INTERVAL", "5s")
	viper.SetDefault("OFFLINE_QUEUE_DRIVER", "redis")
	viper.SetDefault("OFFLINE_QUEUE_KEY", "offline-cart")
	viper.SetDefault("OFFLINE_QUEUE_KEY_PREFIX", "storefront:queue")
	viper.SetDefault("CACHE_KEY_PREFIX", "storefront:query")
	viper.SetDefault("CACHE_TTL", "1m")
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_WINDOW", "1m")
	viper.SetDefault("NOTIFICATION_FEED_LIMIT", 50)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			LogLevel:       viper.GetString("LOG_LEVEL"),
			AllowedOrigins: splitList(viper.GetString("SERVER_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Upstream: UpstreamConfig{
			BaseURL:       viper.GetString("UPSTREAM_BASE_URL"),
			HealthPath:    viper.GetString("UPSTREAM_HEALTH_PATH"),
			Timeout:       viper.GetDuration("UPSTREAM_TIMEOUT"),
			ProbeInterval: viper.GetDuration("UPSTREAM_PROBE_INTERVAL"),
		},
		OfflineQueue: OfflineQueueConfig{
			Driver:    strings.ToLower(viper.GetString("OFFLINE_QUEUE_DRIVER")),
			Key:       viper.GetString("OFFLINE_QUEUE_KEY"),
			KeyPrefix: viper.GetString("OFFLINE_QUEUE_KEY_PREFIX"),
		},
		Cache: CacheConfig{
			KeyPrefix: viper.GetString("CACHE_KEY_PREFIX"),
			TTL:       viper.GetDuration("CACHE_TTL"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:            viper.GetDuration("RATE_LIMIT_WINDOW"),
		},
		Notification: NotificationConfig{
			FeedLimit: viper.GetInt("NOTIFICATION_FEED_LIMIT"),
		},
	}
}

// IsDevelopment reports whether the server runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
