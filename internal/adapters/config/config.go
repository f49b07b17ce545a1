package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"hermes/pkg/errors"
)

type Config struct {
	App           AppConfig
	Postgres      PostgresConfig
	Redis         RedisConfig
	HTTP          HTTPConfig
	Guardian      GuardianConfig
	OpenAI        OpenAIConfig
	Sentiment     SentimentConfig
	Prices        PricesConfig
	Analytics     AnalyticsConfig
	ErrorTracking ErrorTrackingConfig
	Workers       WorkerConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"hermes"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Symbol   string `envconfig:"STOCK_SYMBOL" default:"NVDA"`
	Topic    string `envconfig:"NEWS_TOPIC" default:"nvidia"`
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	Database string `envconfig:"POSTGRES_DB" required:"true"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"25"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type HTTPConfig struct {
	Port int `envconfig:"HTTP_PORT" default:"8080"`
}

func (c HTTPConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

type GuardianConfig struct {
	APIKey   string        `envconfig:"GUARDIAN_API_KEY"`
	BaseURL  string        `envconfig:"GUARDIAN_BASE_URL" default:"https://content.guardianapis.com"`
	PageSize int           `envconfig:"GUARDIAN_PAGE_SIZE" default:"50"`
	Timeout  time.Duration `envconfig:"GUARDIAN_TIMEOUT" default:"15s"`
}

type OpenAIConfig struct {
	APIKey  string        `envconfig:"OPENAI_API_KEY"`
	Model   string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	Timeout time.Duration `envconfig:"OPENAI_TIMEOUT" default:"60s"`
}

// SentimentConfig points at an external inference service that scores
// article text and returns a label/score pair.
type SentimentConfig struct {
	BaseURL string        `envconfig:"SENTIMENT_URL"`
	Token   string        `envconfig:"SENTIMENT_TOKEN"`
	Timeout time.Duration `envconfig:"SENTIMENT_TIMEOUT" default:"30s"`
	MaxChars int          `envconfig:"SENTIMENT_MAX_CHARS" default:"1000"`
}

type PricesConfig struct {
	BaseURL string        `envconfig:"PRICES_BASE_URL" default:"https://query1.finance.yahoo.com"`
	Timeout time.Duration `envconfig:"PRICES_TIMEOUT" default:"15s"`
}

type AnalyticsConfig struct {
	// Rolling window for the volatility index used by the refined direction model
	VolatilityWindow int `envconfig:"ANALYTICS_VOLATILITY_WINDOW" default:"5"`
	// TTL for the cached /analyze report
	ReportCacheTTL time.Duration `envconfig:"ANALYTICS_REPORT_CACHE_TTL" default:"5m"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// WorkerConfig contains intervals for the background workers
type WorkerConfig struct {
	IngestInterval   time.Duration `envconfig:"WORKER_INGEST_INTERVAL" default:"1h"`
	IngestEnabled    bool          `envconfig:"WORKER_INGEST_ENABLED" default:"true"`
	IngestBatchSize  int           `envconfig:"WORKER_INGEST_BATCH_SIZE" default:"50"`
	BackfillInterval time.Duration `envconfig:"WORKER_BACKFILL_INTERVAL" default:"6h"`
	BackfillEnabled  bool          `envconfig:"WORKER_BACKFILL_ENABLED" default:"true"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
