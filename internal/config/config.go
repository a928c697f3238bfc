// Package config provides configuration for the triage service.
package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config holds the configuration for the service. Authentication is either a
// GitHub App (app ID plus private key, scoped per installation) or a plain
// token; the app form takes precedence when both are present
type Config struct {
	GitHubToken           string `env:"GITHUB_TOKEN"`
	GitHubAppID           int64  `env:"GITHUB_APP_ID"`
	GitHubAppPrivateKey   string `env:"GITHUB_APP_PRIVATE_KEY_PATH"`
	BaseBranch            string `env:"BASE_BRANCH, default=main"`
	MaxConcurrentFiles    int    `env:"MAX_CONCURRENT_FILES, default=4"`
	QueueWorkers          int    `env:"QUEUE_WORKERS, default=4"`
	TelemetryEnabled      bool   `env:"TELEMETRY_ENABLED"`
	TelemetryOTLPEndpoint string `env:"TELEMETRY_OTLP_ENDPOINT"`
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process environment: %w", err)
	}
	return cfg, nil
}

// UsesAppAuth reports whether GitHub App credentials are configured
func (c Config) UsesAppAuth() bool {
	return c.GitHubAppID != 0 && c.GitHubAppPrivateKey != ""
}

// Validate checks that some usable authentication is present
func (c Config) Validate() error {
	if !c.UsesAppAuth() && c.GitHubToken == "" {
		return fmt.Errorf("missing GitHub credentials: set GITHUB_TOKEN, or GITHUB_APP_ID and GITHUB_APP_PRIVATE_KEY_PATH")
	}
	if c.TelemetryEnabled && c.TelemetryOTLPEndpoint == "" {
		return fmt.Errorf("TELEMETRY_ENABLED is set but TELEMETRY_OTLP_ENDPOINT is empty")
	}
	return nil
}
