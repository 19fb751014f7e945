// Package sgclient provides the main entry point for creating Cribl Search clients
package sgclient

import (
	"fmt"
	"strings"

	"github.com/searchgoat-io/searchgoat-go/internal/client"
	"github.com/searchgoat-io/searchgoat-go/internal/config"
	"github.com/searchgoat-io/searchgoat-go/pkg/searchgoat"
)

// New creates a new search client from an explicit configuration. All four
// credential fields are required; missing ones are reported together in a
// ConfigurationError before any network activity.
func New(cfg *searchgoat.Config) (searchgoat.Client, error) {
	if cfg == nil {
		return nil, &searchgoat.ConfigurationError{Reason: "config is required"}
	}

	normalizeEndpoints(cfg)

	searchClient, err := client.New(cfg)
	if err != nil {
		return nil, err
	}

	return searchClient, nil
}

// NewFromEnv creates a client with credentials resolved from CRIBL_*
// environment variables and an optional ".env" file in the working
// directory. Environment variables win per field.
func NewFromEnv() (searchgoat.Client, error) {
	return NewFromEnvFile("")
}

// NewFromEnvFile is NewFromEnv with an explicit dotenv file path.
func NewFromEnvFile(envFile string) (searchgoat.Client, error) {
	cfg, err := config.Resolve(envFile)
	if err != nil {
		return nil, fmt.Errorf("resolving credentials: %w", err)
	}

	return New(cfg)
}

// normalizeEndpoints trims trailing slashes and defaults the scheme.
func normalizeEndpoints(cfg *searchgoat.Config) {
	if cfg.APIEndpoint != "" {
		endpoint := strings.TrimSuffix(cfg.APIEndpoint, "/")
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}

		cfg.APIEndpoint = endpoint
	}

	if cfg.AuthURL != "" {
		cfg.AuthURL = strings.TrimSuffix(cfg.AuthURL, "/")
	}
}
