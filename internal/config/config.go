// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Content source types.
const (
	ContentSourceFile   = "file"
	ContentSourceSanity = "sanity"
)

// Form backend modes.
const (
	FormBackendLocal = "local"
	FormBackendHTTP  = "http"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"RML_DB_PATH" envDefault:"./data/reclaim.db"`
	SessionSecret string `env:"RML_SESSION_SECRET"`
	ServerHost    string `env:"RML_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"RML_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"RML_ENV" envDefault:"development"`
	LogLevel      string `env:"RML_LOG_LEVEL" envDefault:"info"`
	SiteURL       string `env:"RML_SITE_URL" envDefault:"http://localhost:8080"`

	// Content source
	ContentSource    string `env:"RML_CONTENT_SOURCE" envDefault:"file"` // file or sanity
	ContentDir       string `env:"RML_CONTENT_DIR" envDefault:"./content"`
	SanityProjectID  string `env:"RML_SANITY_PROJECT_ID"`
	SanityDataset    string `env:"RML_SANITY_DATASET" envDefault:"production"`
	SanityAPIVersion string `env:"RML_SANITY_API_VERSION" envDefault:"2024-01-01"`
	SanityToken      string `env:"RML_SANITY_TOKEN"` // read token, needed for drafts

	// Cache configuration
	RedisURL     string `env:"RML_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"RML_CACHE_PREFIX" envDefault:"reclaim:"` // Redis key prefix
	CacheTTL     int    `env:"RML_CACHE_TTL" envDefault:"3600"`       // Content cache TTL in seconds
	CacheMaxSize int    `env:"RML_CACHE_MAX_SIZE" envDefault:"1000"`  // Max memory cache entries

	// Revalidation and preview
	RevalidateSecret string `env:"RML_REVALIDATE_SECRET"`
	PreviewSecret    string `env:"RML_PREVIEW_SECRET"`

	// Form backend
	FormBackend       string        `env:"RML_FORM_BACKEND" envDefault:"local"` // local or http
	FormEndpoint      string        `env:"RML_FORM_ENDPOINT" envDefault:"/"`
	FormSubmitTimeout time.Duration `env:"RML_FORM_SUBMIT_TIMEOUT" envDefault:"15s"`
	FormRateLimit     float64       `env:"RML_FORM_RATE_LIMIT" envDefault:"0.2"` // submissions per second per IP
	FormRateBurst     int           `env:"RML_FORM_RATE_BURST" envDefault:"5"`
	RetentionDays     int           `env:"RML_RETENTION_DAYS" envDefault:"180"` // 0 keeps submissions forever
	RetentionSchedule string        `env:"RML_RETENTION_SCHEDULE" envDefault:"@daily"`

	// hCaptcha configuration
	HCaptchaSiteKey   string `env:"RML_HCAPTCHA_SITE_KEY"`   // hCaptcha site key
	HCaptchaSecretKey string `env:"RML_HCAPTCHA_SECRET_KEY"` // hCaptcha secret key

	// Webhook notification of new submissions
	WebhookURL    string `env:"RML_WEBHOOK_URL"`
	WebhookSecret string `env:"RML_WEBHOOK_SECRET"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// HCaptchaEnabled returns true if hCaptcha is configured.
func (c Config) HCaptchaEnabled() bool {
	return c.HCaptchaSiteKey != "" && c.HCaptchaSecretKey != ""
}

// WebhookEnabled returns true if submissions are forwarded to a webhook.
func (c Config) WebhookEnabled() bool {
	return c.WebhookURL != ""
}

// CacheTTLDuration returns the content cache TTL.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// Retention returns how long submissions are kept, 0 meaning forever.
func (c Config) Retention() time.Duration {
	if c.RetentionDays <= 0 {
		return 0
	}
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// MinSessionSecretLength is the minimum required length for the session secret
// and the other shared secrets in production.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks option values and, outside development, the strength of
// the configured secrets.
func (c *Config) Validate() error {
	var errs []error

	switch c.ContentSource {
	case ContentSourceFile:
		if c.ContentDir == "" {
			errs = append(errs, errors.New("RML_CONTENT_DIR is required for the file content source"))
		}
	case ContentSourceSanity:
		if c.SanityProjectID == "" {
			errs = append(errs, errors.New("RML_SANITY_PROJECT_ID is required for the sanity content source"))
		}
	default:
		errs = append(errs, fmt.Errorf("RML_CONTENT_SOURCE must be %q or %q, got %q",
			ContentSourceFile, ContentSourceSanity, c.ContentSource))
	}

	switch c.FormBackend {
	case FormBackendLocal:
	case FormBackendHTTP:
		if c.FormEndpoint == "" {
			errs = append(errs, errors.New("RML_FORM_ENDPOINT is required for the http form backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("RML_FORM_BACKEND must be %q or %q, got %q",
			FormBackendLocal, FormBackendHTTP, c.FormBackend))
	}

	if c.FormSubmitTimeout <= 0 {
		errs = append(errs, errors.New("RML_FORM_SUBMIT_TIMEOUT must be positive"))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, errors.New("RML_CACHE_TTL must not be negative"))
	}

	if !c.IsDevelopment() {
		errs = append(errs, checkSecret("RML_SESSION_SECRET", c.SessionSecret, true))
		errs = append(errs, checkSecret("RML_REVALIDATE_SECRET", c.RevalidateSecret, false))
		errs = append(errs, checkSecret("RML_PREVIEW_SECRET", c.PreviewSecret, false))
		if c.WebhookEnabled() {
			errs = append(errs, checkSecret("RML_WEBHOOK_SECRET", c.WebhookSecret, true))
		}
	}

	return errors.Join(errs...)
}

// checkSecret validates a production secret. Optional secrets may be empty;
// the endpoint they protect then stays disabled.
func checkSecret(name, secret string, required bool) error {
	if secret == "" {
		if required {
			return fmt.Errorf("%s is required outside development", name)
		}
		return nil
	}

	if len(secret) < MinSessionSecretLength {
		return fmt.Errorf("%s must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			name, MinSessionSecretLength, len(secret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if secret == weak {
			return fmt.Errorf("%s is a known default value and must not be used; "+
				"generate a secure secret with: openssl rand -base64 32", name)
		}
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(secret) {
		slog.Warn(name + " has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}
	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
