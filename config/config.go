// Package config loads process settings once at startup: an optional YAML
// file named by CONFIG_FILE, then environment variables on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/open-rails/coffeeshop/auth"
	"github.com/open-rails/coffeeshop/ratelimit"
	"gopkg.in/yaml.v3"
)

// Config is the full process configuration.
type Config struct {
	HTTPAddr    string `yaml:"http_addr"`
	DatabaseURL string `yaml:"database_url"`
	RedisURL    string `yaml:"redis_url"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"` // "json" or "text"

	Auth AuthConfig `yaml:"auth"`

	ListCacheTTL time.Duration `yaml:"list_cache_ttl"`
	RateLimit    RateLimit     `yaml:"rate_limit"`
}

// AuthConfig mirrors auth.Config for file loading.
type AuthConfig struct {
	Domain       string        `yaml:"domain"`
	Issuer       string        `yaml:"issuer"`
	JWKSURL      string        `yaml:"jwks_url"`
	Audience     string        `yaml:"audience"`
	Algorithms   []string      `yaml:"algorithms"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// RateLimit bounds protected requests per subject. Zero Limit disables it.
type RateLimit struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

func defaults() Config {
	return Config{
		HTTPAddr:     ":8080",
		LogLevel:     "info",
		LogFormat:    "json",
		ListCacheTTL: 30 * time.Second,
		RateLimit:    RateLimit{Limit: 60, Window: time.Minute},
	}
}

// Load reads CONFIG_FILE (if set) and then the environment.
func Load() (Config, error) {
	cfg := defaults()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg, os.Getenv); err != nil {
		return Config{}, err
	}
	if _, err := cfg.AuthConfig(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str("HTTP_ADDR", &cfg.HTTPAddr)
	str("DATABASE_URL", &cfg.DatabaseURL)
	str("REDIS_URL", &cfg.RedisURL)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)
	str("AUTH0_DOMAIN", &cfg.Auth.Domain)
	str("AUTH_ISSUER", &cfg.Auth.Issuer)
	str("AUTH_JWKS_URL", &cfg.Auth.JWKSURL)
	str("API_AUDIENCE", &cfg.Auth.Audience)
	if v := strings.TrimSpace(getenv("AUTH_ALGORITHMS")); v != "" {
		cfg.Auth.Algorithms = nil
		for _, a := range strings.Split(v, ",") {
			if a = strings.TrimSpace(a); a != "" {
				cfg.Auth.Algorithms = append(cfg.Auth.Algorithms, a)
			}
		}
	}
	if err := dur("AUTH_FETCH_TIMEOUT", &cfg.Auth.FetchTimeout); err != nil {
		return err
	}
	if err := dur("LIST_CACHE_TTL", &cfg.ListCacheTTL); err != nil {
		return err
	}
	if err := dur("RATE_LIMIT_WINDOW", &cfg.RateLimit.Window); err != nil {
		return err
	}
	if v := strings.TrimSpace(getenv("RATE_LIMIT_LIMIT")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_LIMIT: %w", err)
		}
		cfg.RateLimit.Limit = n
	}
	return nil
}

// AuthConfig returns the validated authorization settings.
func (c Config) AuthConfig() (auth.Config, error) {
	ac := auth.Config{
		Domain:       c.Auth.Domain,
		Issuer:       c.Auth.Issuer,
		JWKSURL:      c.Auth.JWKSURL,
		Audience:     c.Auth.Audience,
		Algorithms:   c.Auth.Algorithms,
		FetchTimeout: c.Auth.FetchTimeout,
	}.WithDefaults()
	if err := ac.Validate(); err != nil {
		return auth.Config{}, err
	}
	return ac, nil
}

// Limits returns the per-bucket limits, or nil when rate limiting is off.
func (c Config) Limits() ratelimit.Limits {
	if c.RateLimit.Limit <= 0 {
		return nil
	}
	return ratelimit.Limits{ratelimit.BucketDefault: {Limit: c.RateLimit.Limit, Window: c.RateLimit.Window}}
}
