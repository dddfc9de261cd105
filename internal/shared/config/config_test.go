package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVICE_NAME", "odds-router")

	cfg := Load()

	if cfg.ServiceName != "odds-router" {
		t.Fatalf("ServiceName = %q", cfg.ServiceName)
	}
	if cfg.FeedLogEnabled {
		t.Fatal("FeedLogEnabled should default to false")
	}
	if cfg.TenantRefreshInterval != 10*time.Minute {
		t.Fatalf("TenantRefreshInterval = %v, want 10m", cfg.TenantRefreshInterval)
	}
	if cfg.TopicOddsChanges != "odds_changes" {
		t.Fatalf("TopicOddsChanges = %q", cfg.TopicOddsChanges)
	}
	if cfg.TenantTopicPrefix != "odds.tenant." {
		t.Fatalf("TenantTopicPrefix = %q", cfg.TenantTopicPrefix)
	}
	if cfg.FeedBroker != "kafka" {
		t.Fatalf("FeedBroker = %q", cfg.FeedBroker)
	}
	if cfg.HTTPPort != "8084" || cfg.MetricsPort != "9097" {
		t.Fatalf("ports = %q/%q", cfg.HTTPPort, cfg.MetricsPort)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVICE_NAME", "feed-ingest")
	t.Setenv("FEED_LOG_ENABLED", "true")
	t.Setenv("TENANT_REFRESH_INTERVAL", "90s")
	t.Setenv("FEED_LOG_MAXLEN", "500")
	t.Setenv("FEED_BROKER", "nats")

	cfg := Load()

	if !cfg.FeedLogEnabled {
		t.Fatal("FeedLogEnabled should be true")
	}
	if cfg.TenantRefreshInterval != 90*time.Second {
		t.Fatalf("TenantRefreshInterval = %v, want 90s", cfg.TenantRefreshInterval)
	}
	if cfg.FeedLogMaxLen != 500 {
		t.Fatalf("FeedLogMaxLen = %d", cfg.FeedLogMaxLen)
	}
	if cfg.FeedBroker != "nats" {
		t.Fatalf("FeedBroker = %q", cfg.FeedBroker)
	}
	if cfg.HTTPPort != "" {
		t.Fatalf("feed-ingest should not expose a public port, got %q", cfg.HTTPPort)
	}
}

func TestLoadBadValuesFallBack(t *testing.T) {
	t.Setenv("SERVICE_NAME", "odds-router")
	t.Setenv("FEED_LOG_ENABLED", "yes please")
	t.Setenv("TENANT_REFRESH_INTERVAL", "ten minutes")
	t.Setenv("FEED_LOG_MAXLEN", "lots")

	cfg := Load()

	if cfg.FeedLogEnabled {
		t.Fatal("invalid bool should fall back to default")
	}
	if cfg.TenantRefreshInterval != 10*time.Minute {
		t.Fatalf("invalid duration should fall back, got %v", cfg.TenantRefreshInterval)
	}
	if cfg.FeedLogMaxLen != 10000 {
		t.Fatalf("invalid int should fall back, got %d", cfg.FeedLogMaxLen)
	}
}
