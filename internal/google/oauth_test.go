package google

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"main/internal/apperrors"
	"main/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		GoogleClientID:     "client-id",
		GoogleClientSecret: "client-secret",
		GoogleRedirectURI:  "https://backend.example/api/google/callback",
	}
}

func TestAuthURL(t *testing.T) {
	client := NewClient(testConfig(), zap.NewNop())

	raw, err := client.AuthURL("", "opaque-state")
	require.NoError(t, err)

	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	q := parsed.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "https://backend.example/api/google/callback", q.Get("redirect_uri"))
	assert.Equal(t, DefaultScope, q.Get("scope"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "true", q.Get("include_granted_scopes"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "opaque-state", q.Get("state"))
}

func TestAuthURLCustomScope(t *testing.T) {
	client := NewClient(testConfig(), zap.NewNop())

	raw, err := client.AuthURL("https://www.googleapis.com/auth/calendar.readonly", "")
	require.NoError(t, err)

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "https://www.googleapis.com/auth/calendar.readonly", parsed.Query().Get("scope"))
}

func TestAuthURLMissingConfig(t *testing.T) {
	client := NewClient(&config.Config{GoogleClientID: "only-id"}, zap.NewNop())

	_, err := client.AuthURL("", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	assert.Contains(t, err.Error(), "GOOGLE_CLIENT_SECRET")
	assert.Contains(t, err.Error(), "GOOGLE_REDIRECT_URI")
}

func TestClassifyTokenErr(t *testing.T) {
	client := NewClient(testConfig(), zap.NewNop())

	t.Run("provider rejection", func(t *testing.T) {
		err := client.classifyTokenErr("token refresh", &oauth2.RetrieveError{
			Response: &http.Response{StatusCode: http.StatusUnauthorized},
			Body:     []byte(`{"error":"invalid_grant"}`),
		})

		assert.ErrorIs(t, err, apperrors.ErrUpstreamAuth)
		// The raw provider body is only logged, never surfaced.
		assert.NotContains(t, err.Error(), "invalid_grant")
	})

	t.Run("transport failure", func(t *testing.T) {
		err := client.classifyTokenErr("code exchange", assert.AnError)

		assert.ErrorIs(t, err, apperrors.ErrNetwork)
	})
}
