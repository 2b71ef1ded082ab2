package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.OfflineQueue.Key != "offline-cart" {
		t.Errorf("Expected default queue key offline-cart, got %s", cfg.OfflineQueue.Key)
	}
	if cfg.OfflineQueue.Driver != "redis" {
		t.Errorf("Expected default queue driver redis, got %s", cfg.OfflineQueue.Driver)
	}
	if cfg.Upstream.ProbeInterval != 5*time.Second {
		t.Errorf("Expected default probe interval 5s, got %s", cfg.Upstream.ProbeInterval)
	}
	if cfg.Cache.TTL != time.Minute {
		t.Errorf("Expected default cache TTL 1m, got %s", cfg.Cache.TTL)
	}
	if cfg.Notification.FeedLimit != 50 {
		t.Errorf("Expected default feed limit 50, got %d", cfg.Notification.FeedLimit)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("OFFLINE_QUEUE_DRIVER", "Postgres")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	t.Setenv("NOTIFICATION_FEED_LIMIT", "10")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "https://shop.example.com, https://admin.example.com ,")

	cfg := Load()

	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.OfflineQueue.Driver != "postgres" {
		t.Errorf("Expected driver to be lower-cased, got %s", cfg.OfflineQueue.Driver)
	}
	if cfg.Upstream.Timeout != 3*time.Second {
		t.Errorf("Expected upstream timeout 3s, got %s", cfg.Upstream.Timeout)
	}
	if cfg.Notification.FeedLimit != 10 {
		t.Errorf("Expected feed limit 10, got %d", cfg.Notification.FeedLimit)
	}
	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Fatalf("Expected 2 allowed origins, got %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Server.AllowedOrigins[1] != "https://admin.example.com" {
		t.Errorf("Expected trimmed origin, got %q", cfg.Server.AllowedOrigins[1])
	}
}
