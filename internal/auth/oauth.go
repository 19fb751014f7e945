package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/searchgoat-io/searchgoat-go/pkg/searchgoat"
)

// DefaultAudience is the audience claim required by the Cribl.Cloud token
// endpoint for the client_credentials grant.
const DefaultAudience = "https://api.cribl.cloud"

// defaultExpiresIn applies when the token response omits expires_in.
const defaultExpiresIn = 86400

// TokenManager supplies bearer tokens to the transport.
type TokenManager interface {
	// GetToken returns a valid bearer token, performing a credential
	// exchange if none is cached or the cached one is near expiry.
	GetToken(ctx context.Context) (string, error)

	// Invalidate drops the cached token. The transport calls this on a 401
	// before retrying the original request exactly once.
	Invalidate()

	// SetToken manually installs a token, mainly for tests.
	SetToken(token string, expiresAt time.Time)
}

// OAuth2Config configures the client_credentials exchange.
type OAuth2Config struct {
	AuthURL      string
	ClientID     string
	ClientSecret string
	Audience     string
	HTTPTimeout  time.Duration
}

// OAuth2TokenManager exchanges client credentials for bearer tokens and
// caches the result until expiry. Concurrent callers needing a fresh token
// share a single in-flight exchange; the exchange is never retried on
// failure.
type OAuth2TokenManager struct {
	config     *OAuth2Config
	store      *TokenStore
	httpClient *http.Client
	group      singleflight.Group
}

// NewOAuth2TokenManager creates a token manager for the given credentials.
func NewOAuth2TokenManager(config *OAuth2Config) *OAuth2TokenManager {
	timeout := config.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &OAuth2TokenManager{
		config:     config,
		store:      NewTokenStore(),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetToken implements TokenManager.GetToken.
func (m *OAuth2TokenManager) GetToken(ctx context.Context) (string, error) {
	token := m.store.Get()
	if token.Valid() {
		return token.AccessToken, nil
	}

	value, err, _ := m.group.Do("exchange", func() (interface{}, error) {
		// A concurrent exchange may have refreshed the store already.
		current := m.store.Get()
		if current.Valid() {
			return current.AccessToken, nil
		}

		fresh, exchangeErr := m.exchange(ctx)
		if exchangeErr != nil {
			return "", exchangeErr
		}

		m.store.Set(fresh)

		return fresh.AccessToken, nil
	})
	if err != nil {
		return "", err
	}

	accessToken, _ := value.(string)

	return accessToken, nil
}

// Invalidate implements TokenManager.Invalidate.
func (m *OAuth2TokenManager) Invalidate() {
	m.store.Clear()
}

// SetToken implements TokenManager.SetToken.
func (m *OAuth2TokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	})
}

// exchangeRequest is the JSON body sent to the token endpoint.
type exchangeRequest struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Audience     string `json:"audience"`
}

// exchange performs the client_credentials flow. All failures, including
// network errors, surface as AuthenticationError; nothing is retried.
func (m *OAuth2TokenManager) exchange(ctx context.Context) (*Token, error) {
	audience := m.config.Audience
	if audience == "" {
		audience = DefaultAudience
	}

	payload, err := json.Marshal(&exchangeRequest{
		GrantType:    "client_credentials",
		ClientID:     m.config.ClientID,
		ClientSecret: m.config.ClientSecret,
		Audience:     audience,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.AuthURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, &searchgoat.AuthenticationError{Detail: fmt.Sprintf("token request failed: %v", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &searchgoat.AuthenticationError{Status: resp.StatusCode, Detail: fmt.Sprintf("reading token response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &searchgoat.AuthenticationError{Status: resp.StatusCode, Detail: string(body)}
	}

	var token Token

	err = json.Unmarshal(body, &token)
	if err != nil {
		return nil, &searchgoat.AuthenticationError{Status: resp.StatusCode, Detail: fmt.Sprintf("parsing token response: %v", err)}
	}

	if token.AccessToken == "" {
		return nil, &searchgoat.AuthenticationError{Status: resp.StatusCode, Detail: "token response missing access_token"}
	}

	expiresIn := token.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = defaultExpiresIn
	}

	token.ExpiresAt = time.Now().Add(time.Duration(expiresIn) * time.Second)

	return &token, nil
}
