package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthTransport(t *testing.T) {
	t.Run("attaches the bearer token", func(t *testing.T) {
		var authHeader string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		tokens := NewTokenCache()
		tokens.SetToken("token-1")
		hc := &http.Client{Transport: &AuthTransport{Tokens: tokens}}

		resp, err := hc.Get(server.URL)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, "Bearer token-1", authHeader)
	})

	t.Run("refreshes once on 401 and retries", func(t *testing.T) {
		var seen []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("Authorization")
			seen = append(seen, token)
			if token != "Bearer fresh" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		tokens := NewTokenCache()
		tokens.SetToken("stale")
		refreshed := 0
		hc := &http.Client{Transport: &AuthTransport{
			Tokens: tokens,
			Refresh: func(context.Context) (string, error) {
				refreshed++
				return "fresh", nil
			},
		}}

		resp, err := hc.Get(server.URL)
		require.NoError(t, err)
		_ = resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 1, refreshed)
		assert.Equal(t, []string{"Bearer stale", "Bearer fresh"}, seen)
		assert.Equal(t, "fresh", tokens.Token())
	})

	t.Run("gives up when refresh fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		tokens := NewTokenCache()
		tokens.SetToken("stale")
		hc := &http.Client{Transport: &AuthTransport{
			Tokens: tokens,
			Refresh: func(context.Context) (string, error) {
				return "", assert.AnError
			},
		}}

		resp, err := hc.Get(server.URL)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("never retries the refresh call", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls++
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		tokens := NewTokenCache()
		refreshes := 0
		hc := &http.Client{Transport: &AuthTransport{
			Tokens: tokens,
			Refresh: func(context.Context) (string, error) {
				refreshes++
				return "fresh", nil
			},
		}}

		resp, err := hc.Post(server.URL+"/api/v1/auth/refresh", "application/json", nil)
		require.NoError(t, err)
		_ = resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, 1, calls)
		assert.Zero(t, refreshes)
	})
}

func TestRefreshAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/refresh", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"data":{"token":{"access_token":"fresh"}}}`))
	}))
	defer server.Close()

	token, err := New(server.URL).RefreshAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)
}
