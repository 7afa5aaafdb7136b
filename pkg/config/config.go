// Package config provides the engine bridge configuration, built once at
// process start and passed into the engine client and webhook resolver.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// Webhook root suffixes used when both roots are derived from a single
	// base URL. The live root serves active workflows, the test root serves
	// drafts.
	LiveWebhookSuffix = "/webhook"
	TestWebhookSuffix = "/webhook-test"

	DefaultRequestTimeout = 30 * time.Second
	DefaultAPIKeyHeader   = "X-N8N-API-KEY"
)

var (
	// ErrEngineURLRequired is returned when no engine base URL is configured.
	ErrEngineURLRequired = errors.New("engine base URL is required")

	// ErrAPIKeyRequired is returned when no engine API key is configured.
	ErrAPIKeyRequired = errors.New("engine API key is required")

	// ErrWebhookBaseNotConfigured is returned when webhook execution is
	// requested but neither explicit roots nor a derivable base URL are set.
	ErrWebhookBaseNotConfigured = errors.New("webhook base URLs are not configured")
)

// Config carries everything the bridge needs to talk to the automation
// engine.
type Config struct {
	// EngineURL is the REST API base of the automation engine.
	EngineURL string

	// APIKey authenticates every engine call; sent in APIKeyHeader.
	APIKey       string
	APIKeyHeader string

	// LiveWebhookURL and TestWebhookURL are the webhook roots for active and
	// draft workflows. When empty they are derived from WebhookBaseURL.
	LiveWebhookURL string
	TestWebhookURL string

	// WebhookBaseURL derives both roots by fixed suffixes when the explicit
	// roots are unset.
	WebhookBaseURL string

	// RequestTimeout bounds each individual remote call. Webhook fallback
	// attempts each carry their own timeout.
	RequestTimeout time.Duration
}

// New builds a validated Config, deriving webhook roots when needed.
func New(engineURL, apiKey string) (*Config, error) {
	cfg := &Config{
		EngineURL:      engineURL,
		APIKey:         apiKey,
		APIKeyHeader:   DefaultAPIKeyHeader,
		RequestTimeout: DefaultRequestTimeout,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the minimal engine connectivity settings.
func (c *Config) Validate() error {
	if c.EngineURL == "" {
		return ErrEngineURLRequired
	}

	parsed, err := url.Parse(c.EngineURL)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("invalid engine URL %q: %w", c.EngineURL, ErrEngineURLRequired)
	}

	if c.APIKey == "" {
		return ErrAPIKeyRequired
	}

	if c.APIKeyHeader == "" {
		c.APIKeyHeader = DefaultAPIKeyHeader
	}

	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}

	return nil
}

// WebhookRoots resolves the live and test webhook roots. Explicit roots win;
// otherwise both are derived from WebhookBaseURL by fixed suffixes. Returns
// ErrWebhookBaseNotConfigured when neither is available.
func (c *Config) WebhookRoots() (live string, test string, err error) {
	live = strings.TrimSuffix(c.LiveWebhookURL, "/")
	test = strings.TrimSuffix(c.TestWebhookURL, "/")

	if live != "" && test != "" {
		return live, test, nil
	}

	base := strings.TrimSuffix(c.WebhookBaseURL, "/")
	if base == "" {
		return "", "", ErrWebhookBaseNotConfigured
	}

	if live == "" {
		live = base + LiveWebhookSuffix
	}

	if test == "" {
		test = base + TestWebhookSuffix
	}

	return live, test, nil
}
