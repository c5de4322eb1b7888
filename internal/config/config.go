package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	// Summarization protocol
	SingleShotCharLimit int `envconfig:"SINGLE_SHOT_CHAR_LIMIT" default:"12000"`
	ChunkChars          int `envconfig:"CHUNK_CHARS" default:"6000"`
	ChunkOverlap        int `envconfig:"CHUNK_OVERLAP" default:"500"`
	MaxChunks           int `envconfig:"MAX_CHUNKS" default:"10"`

	// LLM
	GeminiAPIKey          string  `envconfig:"GEMINI_API_KEY"`
	GeminiModel           string  `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	LLMMaxAttempts        int     `envconfig:"LLM_MAX_ATTEMPTS" default:"3"`
	LLMBackoffMinSeconds  float64 `envconfig:"LLM_BACKOFF_MIN_SECONDS" default:"1.0"`
	LLMBackoffMaxSeconds  float64 `envconfig:"LLM_BACKOFF_MAX_SECONDS" default:"3.0"`
	LLMCallTimeoutSeconds int     `envconfig:"LLM_CALL_TIMEOUT_SECONDS" default:"60"`

	// Fetching
	FeedURLs             string  `envconfig:"FEED_URLS"`
	FetchConcurrency     int     `envconfig:"FETCH_CONCURRENCY" default:"4"`
	FetchRatePerSecond   float64 `envconfig:"FETCH_RATE_PER_SECOND" default:"1"`
	MaxArticlesPerSource int     `envconfig:"MAX_ARTICLES_PER_SOURCE" default:"20"`

	// Database
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"newsdesk"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"newsdesk"`

	// Vector store
	WeaviateHost   string `envconfig:"WEAVIATE_HOST" default:"localhost:8080"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`

	// Messaging
	NSQLookupd string `envconfig:"NSQ_LOOKUPD" default:"nsqlookupd:4161"`
	NSQDHost   string `envconfig:"NSQD_HOST" default:"nsqd:4150"`

	// Server
	ServerPort   int    `envconfig:"SERVER_PORT" default:"8081"`
	QueryLogPath string `envconfig:"QUERY_LOG_PATH" default:"data/logs/query.log"`

	// Resilience
	MigrationPath              string `envconfig:"MIGRATION_PATH" default:"file://migrations"`
	BootstrapRetryAttempts     int    `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int    `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

// Load reads .env (when present), then the environment. Components never
// read env vars themselves; everything flows through this struct.
func Load() (*Config, error) {
	// Env vars may be set in the shell instead, so a missing .env is fine.
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.SingleShotCharLimit <= 0 {
		return fmt.Errorf("%w: SINGLE_SHOT_CHAR_LIMIT must be positive", ErrMissingRequired)
	}
	if c.ChunkChars <= 0 {
		return fmt.Errorf("%w: CHUNK_CHARS must be positive", ErrMissingRequired)
	}
	if c.LLMBackoffMaxSeconds < c.LLMBackoffMinSeconds {
		return fmt.Errorf("%w: LLM_BACKOFF_MAX_SECONDS below LLM_BACKOFF_MIN_SECONDS", ErrMissingRequired)
	}
	return nil
}

func (c *Config) LLMBackoffMin() time.Duration {
	return time.Duration(c.LLMBackoffMinSeconds * float64(time.Second))
}

func (c *Config) LLMBackoffMax() time.Duration {
	return time.Duration(c.LLMBackoffMaxSeconds * float64(time.Second))
}

func (c *Config) LLMCallTimeout() time.Duration {
	return time.Duration(c.LLMCallTimeoutSeconds) * time.Second
}
