package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	HTTPAddr    string
	LogLevel    string

	// RedisAddr enables the webhook endpoint cache when set.
	RedisAddr        string
	EndpointCacheTTL time.Duration

	EventHandlerTimeout time.Duration
	ShutdownTimeout     time.Duration

	WebhooksEnabled    bool
	WebhookTimeout     time.Duration
	WebhookWorkers     int
	WebhookRatePerSec  float64
	WebhookMaxAttempts int
}

// Load reads the process environment after merging an optional .env file.
// Variables already set in the environment win over .env.
func Load() (Config, error) {
	_ = godotenv.Load()

	p := &parser{}
	cfg := Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		HTTPAddr:    p.str("HTTP_ADDR", ":8080"),
		LogLevel:    p.str("LOG_LEVEL", "info"),

		RedisAddr:        os.Getenv("REDIS_ADDR"),
		EndpointCacheTTL: p.duration("ENDPOINT_CACHE_TTL", 30*time.Second),

		EventHandlerTimeout: p.duration("EVENT_HANDLER_TIMEOUT", 10*time.Second),
		ShutdownTimeout:     p.duration("SHUTDOWN_TIMEOUT", 10*time.Second),

		WebhooksEnabled:    p.boolean("WEBHOOKS_ENABLED", true),
		WebhookTimeout:     p.duration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookWorkers:     p.positiveInt("WEBHOOK_WORKERS", 8),
		WebhookRatePerSec:  p.positiveFloat("WEBHOOK_RATE_PER_SEC", 20),
		WebhookMaxAttempts: p.positiveInt("WEBHOOK_MAX_ATTEMPTS", 1),
	}

	if cfg.DatabaseURL == "" {
		p.errs = append(p.errs, fmt.Errorf("DATABASE_URL is required"))
	}
	if err := errors.Join(p.errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type parser struct {
	errs []error
}

func (p *parser) str(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}

func (p *parser) boolean(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid bool %q", key, v))
		return def
	}
	return b
}

func (p *parser) positiveInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		p.errs = append(p.errs, fmt.Errorf("%s: expected a positive integer, got %q", key, v))
		return def
	}
	return n
}

func (p *parser) positiveFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		p.errs = append(p.errs, fmt.Errorf("%s: expected a positive number, got %q", key, v))
		return def
	}
	return f
}
