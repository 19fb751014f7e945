// Package client implements searchgoat.Client against the Cribl Search API.
package client

import (
	"fmt"

	"github.com/searchgoat-io/searchgoat-go/internal/auth"
	"github.com/searchgoat-io/searchgoat-go/internal/http"
	"github.com/searchgoat-io/searchgoat-go/pkg/searchgoat"
)

// Client implements the searchgoat.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	baseURL      string
	logger       searchgoat.Logger
}

// New creates a new search client. Credentials must already be resolved; use
// sgclient.NewFromEnv for environment-based construction. Missing credential
// fields are reported together in one ConfigurationError, before any network
// activity.
func New(config *searchgoat.Config) (*Client, error) {
	missing := missingCredentials(config)
	if len(missing) > 0 {
		return nil, &searchgoat.ConfigurationError{Missing: missing}
	}

	authURL := config.AuthURL
	if authURL == "" {
		authURL = searchgoat.DefaultAuthURL
	}

	baseURL := config.APIEndpoint
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s-%s.cribl.cloud/api/v1/m/default_search", config.Workspace, config.OrgID)
	}

	tokenManager := auth.NewOAuth2TokenManager(&auth.OAuth2Config{
		AuthURL:      authURL,
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		HTTPTimeout:  config.HTTPTimeout,
	})

	httpClient := http.NewClient(baseURL, tokenManager, httpOptions(config)...)

	return &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		baseURL:      baseURL,
		logger:       config.Logger,
	}, nil
}

// NewWithTokenManager creates a client with a custom token manager, mainly
// for tests that stub authentication.
func NewWithTokenManager(config *searchgoat.Config, tokenManager auth.TokenManager) (*Client, error) {
	if config.APIEndpoint == "" {
		return nil, &searchgoat.ConfigurationError{Reason: "API endpoint is required"}
	}

	httpClient := http.NewClient(config.APIEndpoint, tokenManager, httpOptions(config)...)

	return &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		baseURL:      config.APIEndpoint,
		logger:       config.Logger,
	}, nil
}

// missingCredentials names every unset required field.
func missingCredentials(config *searchgoat.Config) []string {
	var missing []string

	if config.ClientID == "" {
		missing = append(missing, "client_id")
	}

	if config.ClientSecret == "" {
		missing = append(missing, "client_secret")
	}

	if config.OrgID == "" {
		missing = append(missing, "org_id")
	}

	if config.Workspace == "" {
		missing = append(missing, "workspace")
	}

	return missing
}

// httpOptions builds transport options from config.
func httpOptions(config *searchgoat.Config) []http.Option {
	var opts []http.Option

	if config.Logger != nil {
		opts = append(opts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		opts = append(opts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		opts = append(opts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		opts = append(opts, http.WithHTTPTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		opts = append(opts, http.WithRetryConfig(config.RetryMax, config.RetryWaitMin, config.RetryWaitMax))
	}

	return opts
}
