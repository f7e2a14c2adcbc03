package config

import (
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v10"
)

// Config holds all storefront configuration, read from the environment.
// Redis and Postgres are optional: without them the cart slot and catalog
// fall back to in-memory implementations.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Port        int    `env:"PORT" envDefault:"8080"`
	SiteURL     string `env:"SITE_URL" envDefault:"http://localhost:8080"`

	KhaltiBaseURL   string `env:"KHALTI_BASE_URL" envDefault:"https://a.khalti.com/api/v2"`
	KhaltiSecretKey string `env:"KHALTI_SECRET_KEY"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	DatabaseURL string `env:"DATABASE_URL"`

	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	MetricsToken   string `env:"METRICS_TOKEN"`

	CheckoutRateLimit         int `env:"CHECKOUT_RATE_LIMIT" envDefault:"10"`
	CheckoutRateWindowSeconds int `env:"CHECKOUT_RATE_WINDOW_SECONDS" envDefault:"60"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	u, err := url.Parse(c.SiteURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid site url: %q", c.SiteURL)
	}

	if u, err := url.Parse(c.KhaltiBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid khalti base url: %q", c.KhaltiBaseURL)
	}

	if c.CheckoutRateLimit < 1 || c.CheckoutRateWindowSeconds < 1 {
		return fmt.Errorf("invalid checkout rate limit: %d per %ds", c.CheckoutRateLimit, c.CheckoutRateWindowSeconds)
	}

	return nil
}
