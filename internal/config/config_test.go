package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.SubscriptionCacheTTL != 60*time.Second {
		t.Errorf("expected 60s cache ttl, got %s", cfg.SubscriptionCacheTTL)
	}
	if cfg.Extraction.Timeout != 45*time.Second || cfg.OpenAI.Timeout != 30*time.Second ||
		cfg.ImageGen.Timeout != 90*time.Second || cfg.Shopify.Timeout != 30*time.Second ||
		cfg.Stripe.Timeout != 15*time.Second {
		t.Errorf("unexpected provider timeouts: %+v", cfg)
	}
	if cfg.Kafka.ExportTopic != "store-exports" {
		t.Errorf("expected store-exports topic, got %s", cfg.Kafka.ExportTopic)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", "test-key")
	t.Setenv("STRIPE_PRICE_IDS", "pro_monthly:price_1,pro_yearly:price_2")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("STOREFRONT_BASE_DOMAIN", "shops.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Stripe.PriceIDs["pro_yearly"] != "price_2" {
		t.Errorf("expected price_2, got %v", cfg.Stripe.PriceIDs)
	}
	if len(cfg.Kafka.Brokers) != 2 {
		t.Errorf("expected 2 brokers, got %v", cfg.Kafka.Brokers)
	}
	if got := cfg.StoreURL("glow"); got != "https://glow.shops.example.com" {
		t.Errorf("unexpected store url %s", got)
	}
}
