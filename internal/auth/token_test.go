package auth_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/searchgoat-io/searchgoat-go/internal/auth"
)

func TestToken_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		token    *auth.Token
		expected bool
	}{
		{
			name:     "nil token",
			token:    nil,
			expected: false,
		},
		{
			name: "empty access token",
			token: &auth.Token{
				AccessToken: "",
			},
			expected: false,
		},
		{
			name: "valid token without expiry",
			token: &auth.Token{
				AccessToken: "test-token",
			},
			expected: true,
		},
		{
			name: "valid token with future expiry",
			token: &auth.Token{
				AccessToken: "test-token",
				ExpiresAt:   time.Now().Add(1 * time.Hour),
			},
			expected: true,
		},
		{
			name: "expired token",
			token: &auth.Token{
				AccessToken: "test-token",
				ExpiresAt:   time.Now().Add(-1 * time.Hour),
			},
			expected: false,
		},
		{
			name: "token expiring within refresh buffer",
			token: &auth.Token{
				AccessToken: "test-token",
				ExpiresAt:   time.Now().Add(auth.RefreshBuffer - 30*time.Second),
			},
			expected: false,
		},
		{
			name: "token expiring just outside refresh buffer",
			token: &auth.Token{
				AccessToken: "test-token",
				ExpiresAt:   time.Now().Add(auth.RefreshBuffer + 30*time.Second),
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.token.Valid())
		})
	}
}

func TestTokenStore(t *testing.T) {
	t.Parallel()
	t.Run("new store is empty", func(t *testing.T) {
		t.Parallel()

		store := auth.NewTokenStore()
		assert.Nil(t, store.Get())
	})

	t.Run("set and get token", func(t *testing.T) {
		t.Parallel()

		store := auth.NewTokenStore()
		token := &auth.Token{
			AccessToken: "test-token",
			TokenType:   "bearer",
		}

		store.Set(token)
		retrieved := store.Get()
		assert.NotNil(t, retrieved)
		assert.Equal(t, token.AccessToken, retrieved.AccessToken)
		assert.Equal(t, token.TokenType, retrieved.TokenType)
	})

	t.Run("clear token", func(t *testing.T) {
		t.Parallel()

		store := auth.NewTokenStore()
		store.Set(&auth.Token{AccessToken: "test-token"})
		store.Clear()
		assert.Nil(t, store.Get())
	})

	t.Run("concurrent access", func(t *testing.T) {
		t.Parallel()

		store := auth.NewTokenStore()

		var wg sync.WaitGroup

		for i := 0; i < 10; i++ {
			wg.Add(2)

			go func() {
				defer wg.Done()

				store.Set(&auth.Token{AccessToken: "test-token"})
			}()

			go func() {
				defer wg.Done()

				_ = store.Get()
			}()
		}

		wg.Wait()
	})
}
