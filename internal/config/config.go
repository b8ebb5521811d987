// Package config handles runtime configuration for the staking
// dashboard backend: defaults first, then environment overrides.
package config

import (
	"errors"
	"os"
)

// Config holds runtime settings.
//
// Fields:
//   - ListenAddr: HTTP bind address.
//   - AppBaseURL: externally reachable base URL, used to build the
//     login callback handed to the wallet-approval service.
//   - XummAPIURL / XummAPIKey / XummAPISecret: wallet-approval service
//     endpoint and credentials.
//   - XRPLNodeURL: ledger node websocket URL.
//   - RedisURL: Redis connection URL for the consumption store and
//     event stream.
//   - Production: enables the Secure cookie attribute and release-mode
//     HTTP handling.
type Config struct {
	ListenAddr    string
	AppBaseURL    string
	XummAPIURL    string
	XummAPIKey    string
	XummAPISecret string
	XRPLNodeURL   string
	RedisURL      string
	Production    bool
}

// ErrMissingCredentials is returned when the wallet-approval service
// credentials are absent.
var ErrMissingCredentials = errors.New("XUMM_API_KEY and XUMM_API_SECRET are required")

// Load builds a Config from defaults and environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:    envOr("LISTEN_ADDR", ":8080"),
		AppBaseURL:    envOr("APP_BASE_URL", "http://localhost:8080"),
		XummAPIURL:    envOr("XUMM_API_URL", "https://xumm.app/api/v1"),
		XummAPIKey:    os.Getenv("XUMM_API_KEY"),
		XummAPISecret: os.Getenv("XUMM_API_SECRET"),
		XRPLNodeURL:   envOr("XRPL_NODE", "wss://s.altnet.rippletest.net:51233"),
		RedisURL:      envOr("REDIS_URL", "redis://localhost:6379/0"),
		Production:    os.Getenv("APP_ENV") == "production",
	}

	if cfg.XummAPIKey == "" || cfg.XummAPISecret == "" {
		return nil, ErrMissingCredentials
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
