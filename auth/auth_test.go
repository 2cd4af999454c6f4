package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"token123","token_type":"bearer","expires_in":3600}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTokenIsCached(t *testing.T) {
	var calls atomic.Int32
	srv := tokenServer(t, &calls)
	client := NewClientCred(Conf{ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL})

	tok, err := client.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token123", tok.AccessToken)

	_, err = client.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	_, err = client.ForceRefresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSetAuthHeader(t *testing.T) {
	var calls atomic.Int32
	srv := tokenServer(t, &calls)
	client := NewClientCred(Conf{ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL})

	req := httptest.NewRequest(http.MethodGet, "http://example.com/fleet.csv", nil)
	require.NoError(t, client.SetAuthHeader(req))
	assert.Equal(t, "Bearer token123", req.Header.Get("Authorization"))
}

func TestTokenError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClientCred(Conf{ClientID: "id", TokenURL: srv.URL}).Token(context.Background())
	assert.Error(t, err)
}

func TestConfEnabled(t *testing.T) {
	assert.False(t, Conf{}.Enabled())
	assert.True(t, Conf{TokenURL: "http://idp/token"}.Enabled())
}
