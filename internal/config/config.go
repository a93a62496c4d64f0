package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"sktexcot"`
		Port int    `envconfig:"PORT" default:"8080"`
		Env  string `envconfig:"APP_ENV" default:"development"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"sktexcot"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	// Redis is optional. Without an address locks and caching stay in-process.
	Redis struct {
		Addr     string `envconfig:"REDIS_ADDR"`
		Password string `envconfig:"REDIS_PASSWORD"`
		DB       int    `envconfig:"REDIS_DB" default:"0"`
	}

	Auth struct {
		JWTSecret string `envconfig:"JWT_SECRET"`
	}

	Ledger struct {
		InvoicePrefix   string        `envconfig:"INVOICE_PREFIX" default:"SK"`
		SummaryCacheTTL time.Duration `envconfig:"SUMMARY_CACHE_TTL" default:"5m"`
		SummaryWorkers  int           `envconfig:"SUMMARY_WORKERS" default:"8"`
		LockTTL         time.Duration `envconfig:"LOCK_TTL" default:"10s"`
		LockRetry       time.Duration `envconfig:"LOCK_RETRY" default:"50ms"`
	}

	Audit struct {
		// Async hands events to the worker through the queue. It needs Redis.
		Async bool `envconfig:"AUDIT_ASYNC" default:"false"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	RateLimit struct {
		RequestsPerMinute int `envconfig:"RATE_LIMIT_RPM" default:"300"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

func (c *Config) Production() bool {
	return c.App.Env == "production"
}

func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Audit.Async && !cfg.RedisEnabled() {
		return nil, errors.New("AUDIT_ASYNC requires REDIS_ADDR")
	}

	return &cfg, nil
}
