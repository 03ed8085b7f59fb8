package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// TokenCache holds the current access token shared between the
// transport and the code that obtains tokens at login.
type TokenCache struct {
	mu    sync.RWMutex
	token string
}

// NewTokenCache creates an empty token cache
func NewTokenCache() *TokenCache {
	return &TokenCache{}
}

// Token returns the cached access token, or "" when logged out
func (tc *TokenCache) Token() string {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.token
}

// SetToken replaces the cached access token
func (tc *TokenCache) SetToken(token string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.token = token
}

// Clear drops the cached access token
func (tc *TokenCache) Clear() {
	tc.SetToken("")
}

// AuthTransport is an http.RoundTripper that attaches the bearer token
// and transparently refreshes it once on a 401 response. This is the
// refresh interceptor the state stores rely on but do not own.
type AuthTransport struct {
	// Base is the underlying transport; http.DefaultTransport when nil
	Base http.RoundTripper
	// Tokens supplies and receives the access token
	Tokens *TokenCache
	// Refresh obtains a fresh access token, typically by calling the
	// refresh endpoint with the HttpOnly refresh cookie. Nil disables
	// the retry.
	Refresh func(ctx context.Context) (string, error)
}

// RoundTrip implements http.RoundTripper
func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base().RoundTrip(t.withToken(req, t.Tokens.Token()))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || t.Refresh == nil {
		return resp, nil
	}

	// The refresh call itself is never retried.
	if strings.HasSuffix(req.URL.Path, "/auth/refresh") {
		return resp, nil
	}

	// A request body can only be replayed when GetBody is available.
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	token, refreshErr := t.Refresh(req.Context())
	if refreshErr != nil {
		return resp, nil
	}
	t.Tokens.SetToken(token)

	_ = resp.Body.Close()

	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, bodyErr := req.GetBody()
		if bodyErr != nil {
			return nil, bodyErr
		}
		retry.Body = body
	}
	return t.base().RoundTrip(t.withToken(retry, token))
}

func (t *AuthTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *AuthTransport) withToken(req *http.Request, token string) *http.Request {
	if token == "" {
		return req
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+token)
	return clone
}

// RefreshAccessToken calls the refresh endpoint and returns the new
// access token. The refresh-token cookie is sent by the client's jar.
func (c *Client) RefreshAccessToken(ctx context.Context) (string, error) {
	endpoint := c.baseURL + "/api/v1/auth/refresh"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader("{}"))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var result struct {
		Token struct {
			AccessToken string `json:"access_token"`
		} `json:"token"`
	}
	if err := c.do(req, &result); err != nil {
		return "", err
	}
	if result.Token.AccessToken == "" {
		return "", fmt.Errorf("refresh returned no access token")
	}
	return result.Token.AccessToken, nil
}

// WithAuthTransport installs the bearer/refresh transport backed by
// tokens. Requests carry the cached access token; a 401 triggers one
// refresh through this client's cookie jar before the retry.
func WithAuthTransport(tokens *TokenCache) Option {
	return func(c *Client) {
		c.httpClient.Transport = &AuthTransport{
			Base:    c.httpClient.Transport,
			Tokens:  tokens,
			Refresh: c.RefreshAccessToken,
		}
	}
}
