package auth

import (
	"sync"
	"time"
)

// RefreshBuffer is how long before expiry a token is treated as invalid, so
// refresh happens proactively instead of failing mid-request.
const RefreshBuffer = 5 * time.Minute

// Token represents a bearer token obtained from the authentication endpoint.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`

	// ExpiresAt is computed from ExpiresIn at exchange time.
	ExpiresAt time.Time `json:"-"`
}

// Valid reports whether the token exists and is not within the refresh
// buffer of its expiry. A zero ExpiresAt means the token never expires.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(RefreshBuffer).Before(t.ExpiresAt)
}

// TokenStore holds the single cached token for one client instance. It is
// never shared across client instances, so separate credential sets stay
// isolated.
type TokenStore struct {
	mu    sync.RWMutex
	token *Token
}

// NewTokenStore creates an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the cached token, or nil if none is cached.
func (s *TokenStore) Get() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Set replaces the cached token.
func (s *TokenStore) Set(token *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}

// Clear drops the cached token, forcing a fresh exchange on next use.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = nil
}
