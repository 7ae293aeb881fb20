package service

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the backend connection settings.
type Config struct {
	// BaseURL is the backend endpoint root, e.g. "https://edits.example.com".
	BaseURL string `toml:"base_url"`

	// APIKey authenticates requests. Sent as a bearer token.
	APIKey string `toml:"api_key"`

	// Model selects the generative model variant.
	Model string `toml:"model"`

	// TimeoutSeconds bounds each request. Zero means DefaultTimeout.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// DefaultTimeout bounds requests when the config does not set one.
// Generative edits routinely take tens of seconds.
const DefaultTimeout = 120 * time.Second

// Timeout returns the configured per-request timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LoadConfig reads a Config from a TOML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return Config{}, fmt.Errorf("service: read config: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("service: parse config: %w", err)
	}
	if cfg.BaseURL == "" {
		return Config{}, fmt.Errorf("service: config: base_url is required")
	}
	return cfg, nil
}
