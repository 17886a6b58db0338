package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"mentora"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"mentora"`

	NSQLookupd string `envconfig:"NSQ_LOOKUPD" default:"nsqlookupd:4161"`
	NSQDHost   string `envconfig:"NSQD_HOST" default:"nsqd:4150"`
	NSQDHTTP   string `envconfig:"NSQD_HTTP" default:"nsqd:4151"`

	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`
	MigrationPath string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	// Worker
	WorkerConcurrency int `envconfig:"WORKER_CONCURRENCY" default:"4"`
	WorkerStartRate   int `envconfig:"WORKER_START_RATE" default:"10"` // job starts per second
	MaxAttempts       int `envconfig:"MAX_ATTEMPTS" default:"5"`

	// Scrape
	NavigationTimeoutSeconds int `envconfig:"NAVIGATION_TIMEOUT_SECONDS" default:"30"`
	SelectorTimeoutSeconds   int `envconfig:"SELECTOR_TIMEOUT_SECONDS" default:"10"`

	// Server
	ServerPort int `envconfig:"SERVER_PORT" default:"8081"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Try loading .env from current dir and repo root
	// Ignore errors, as env vars might be set in the shell
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	rootEnv := filepath.Join(cwd, "../.env")
	_ = godotenv.Load(rootEnv)

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBHost == "" {
		return fmt.Errorf("%w: DB_HOST", ErrMissingRequired)
	}
	if c.DBUser == "" {
		return fmt.Errorf("%w: DB_USER", ErrMissingRequired)
	}
	if c.DBName == "" {
		return fmt.Errorf("%w: DB_NAME", ErrMissingRequired)
	}
	if c.WorkerConcurrency < 1 {
		return fmt.Errorf("%w: WORKER_CONCURRENCY must be >= 1", ErrMissingRequired)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("%w: MAX_ATTEMPTS must be >= 1", ErrMissingRequired)
	}
	return nil
}
