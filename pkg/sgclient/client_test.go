package sgclient

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchgoat-io/searchgoat-go/pkg/searchgoat"
)

func completeConfig() *searchgoat.Config {
	return &searchgoat.Config{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		OrgID:        "beautiful-goat-abc123",
		Workspace:    "main",
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("complete config", func(t *testing.T) {
		t.Parallel()

		client, err := New(completeConfig())
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("nil config", func(t *testing.T) {
		t.Parallel()

		_, err := New(nil)
		require.Error(t, err)
		assert.True(t, searchgoat.IsConfiguration(err))
	})

	t.Run("missing credentials", func(t *testing.T) {
		t.Parallel()

		_, err := New(&searchgoat.Config{ClientID: "test-client"})
		require.Error(t, err)
		assert.True(t, searchgoat.IsConfiguration(err))
	})
}

func TestNormalizeEndpoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		endpoint string
		expected string
	}{
		{"trailing slash is trimmed", "https://search.example.com/api/", "https://search.example.com/api"},
		{"scheme defaults to https", "search.example.com/api", "https://search.example.com/api"},
		{"explicit http is kept", "http://localhost:9000/api", "http://localhost:9000/api"},
		{"empty endpoint stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &searchgoat.Config{APIEndpoint: tt.endpoint}
			normalizeEndpoints(cfg)
			assert.Equal(t, tt.expected, cfg.APIEndpoint)
		})
	}
}

func TestNewFromEnvFile(t *testing.T) {
	t.Run("builds a client from a dotenv file", func(t *testing.T) {
		clearCriblEnv(t)

		path := filepath.Join(t.TempDir(), ".env")

		err := os.WriteFile(path, []byte(`
CRIBL_CLIENT_ID=file-client
CRIBL_CLIENT_SECRET=file-secret
CRIBL_ORG_ID=file-org
CRIBL_WORKSPACE=file-workspace
`), 0o600)
		require.NoError(t, err)

		client, err := NewFromEnvFile(path)
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("missing credentials surface as ConfigurationError", func(t *testing.T) {
		clearCriblEnv(t)

		_, err := NewFromEnvFile(filepath.Join(t.TempDir(), "missing.env"))
		require.Error(t, err)
		assert.True(t, searchgoat.IsConfiguration(err))
	})
}

// clearCriblEnv unsets every credential variable for the duration of the
// test, since the surrounding environment may carry real credentials.
func clearCriblEnv(t *testing.T) {
	t.Helper()

	for _, name := range []string{
		"CRIBL_CLIENT_ID", "CRIBL_CLIENT_SECRET", "CRIBL_ORG_ID",
		"CRIBL_WORKSPACE", "CRIBL_AUTH_URL", "CRIBL_API_ENDPOINT",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}
