package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Port     string `env:"PORT" env-default:"8080"`
	AppURL   string `env:"APP_URL" env-default:"http://localhost:8080"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	Mongo      Mongo
	Redis      Redis
	Shopify    Shopify
	Extraction Extraction
	OpenAI     OpenAI
	ImageGen   ImageGen
	Stripe     Stripe
	Kafka      Kafka
	Storefront Storefront

	EncryptionKey        string        `env:"ENCRYPTION_KEY" env-required:"true"`
	SubscriptionCacheTTL time.Duration `env:"SUBSCRIPTION_CACHE_TTL" env-default:"60s"`
	DraftTTL             time.Duration `env:"DRAFT_TTL" env-default:"72h"`
	AllowedOrigins       []string      `env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
}

type Mongo struct {
	URI      string `env:"MONGODB_URI" env-default:"mongodb://localhost:27017"`
	Database string `env:"MONGODB_DATABASE" env-default:"store_generator"`
}

type Redis struct {
	URL string `env:"REDIS_URL" env-default:"redis://localhost:6379/0"`
}

type Shopify struct {
	APIKey     string        `env:"SHOPIFY_API_KEY"`
	APISecret  string        `env:"SHOPIFY_API_SECRET"`
	Scopes     []string      `env:"SHOPIFY_SCOPES" env-default:"read_products,write_products,read_content,write_content,read_themes,write_themes"`
	APIVersion string        `env:"SHOPIFY_API_VERSION" env-default:"2024-10"`
	Retries    int           `env:"SHOPIFY_RETRIES" env-default:"2"`
	Timeout    time.Duration `env:"SHOPIFY_TIMEOUT" env-default:"30s"`
}

type Extraction struct {
	URL     string        `env:"EXTRACTION_API_URL" env-default:"https://api.firecrawl.dev"`
	APIKey  string        `env:"EXTRACTION_API_KEY"`
	Timeout time.Duration `env:"EXTRACTION_TIMEOUT" env-default:"45s"`
}

type OpenAI struct {
	APIKey  string        `env:"OPENAI_API_KEY"`
	Model   string        `env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
	BaseURL string        `env:"OPENAI_BASE_URL"`
	Timeout time.Duration `env:"TEXT_GENERATION_TIMEOUT" env-default:"30s"`
}

type ImageGen struct {
	URL     string        `env:"IMAGE_API_URL"`
	APIKey  string        `env:"IMAGE_API_KEY"`
	Timeout time.Duration `env:"IMAGE_GENERATION_TIMEOUT" env-default:"90s"`
}

type Stripe struct {
	SecretKey     string            `env:"STRIPE_SECRET_KEY"`
	WebhookSecret string            `env:"STRIPE_WEBHOOK_SECRET"`
	PriceIDs      map[string]string `env:"STRIPE_PRICE_IDS"`
	Timeout       time.Duration     `env:"BILLING_TIMEOUT" env-default:"15s"`
}

type Kafka struct {
	Brokers     []string `env:"KAFKA_BROKERS"`
	ExportTopic string   `env:"KAFKA_EXPORT_TOPIC" env-default:"store-exports"`
}

type Storefront struct {
	BaseDomain  string `env:"STOREFRONT_BASE_DOMAIN" env-default:"localhost:8080"`
	FrontendURL string `env:"FRONTEND_URL" env-default:"http://localhost:5173"`
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return &cfg, nil
}

// StoreURL is the public address of a store deployed on an internal subdomain.
func (c *Config) StoreURL(subdomain string) string {
	return "https://" + subdomain + "." + c.Storefront.BaseDomain
}
