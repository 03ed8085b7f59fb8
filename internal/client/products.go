// Package client is the HTTP client for the storefront API, consumed by
// the state stores. It covers the product listing endpoint, the
// best-effort sign-out call, and transparent access-token refresh.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Product is the listing endpoint's representation of a product
type Product struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	Categories   []string `json:"categories"`
	MainImageURL string   `json:"main_image_url"`
	Stock        int      `json:"stock"`
	CreatedAt    string   `json:"created_at,omitempty"`
}

// Filters holds the query parameters accepted by the listing endpoint
type Filters struct {
	Page       int
	Limit      int
	Search     string
	SortBy     string
	Order      string
	MinPrice   *float64
	MaxPrice   *float64
	Categories []string
}

// DefaultFilters returns the initial listing filters
func DefaultFilters() Filters {
	return Filters{
		Page:   1,
		Limit:  12,
		SortBy: "title",
		Order:  "asc",
	}
}

// ListResponse is the listing endpoint's result page
type ListResponse struct {
	Data       []Product `json:"data"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	Count      int64     `json:"count"`
	TotalPages int       `json:"totalPages"`
}

// envelope is the standard API response wrapper
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return e.Message
}

// Client talks to the storefront API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the client logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a storefront API client. A cookie jar is installed so the
// HttpOnly refresh-token cookie set at login is replayed on refresh.
func New(baseURL string, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
			Jar:     jar,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListProducts fetches one page of the product listing
func (c *Client) ListProducts(ctx context.Context, filters Filters) (*ListResponse, error) {
	params := url.Values{}
	page := filters.Page
	if page < 1 {
		page = 1
	}
	limit := filters.Limit
	if limit < 1 {
		limit = 10
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	if filters.Search != "" {
		params.Set("search", filters.Search)
	}
	if filters.SortBy != "" {
		params.Set("sortBy", filters.SortBy)
	}
	if filters.Order != "" {
		params.Set("order", filters.Order)
	}
	if filters.MinPrice != nil {
		params.Set("minPrice", strconv.FormatFloat(*filters.MinPrice, 'f', -1, 64))
	}
	if filters.MaxPrice != nil {
		params.Set("maxPrice", strconv.FormatFloat(*filters.MaxPrice, 'f', -1, 64))
	}
	if len(filters.Categories) > 0 {
		params.Set("categories", strings.Join(filters.Categories, ","))
	}

	endpoint := c.baseURL + "/api/v1/products?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var result ListResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SignOut calls the remote sign-out endpoint. Callers treat failures as
// best-effort; the error is returned for logging only.
func (c *Client) SignOut(ctx context.Context) error {
	endpoint := c.baseURL + "/api/v1/auth/logout"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// do executes the request and decodes the response envelope into out
func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		if env.Error != nil {
			return env.Error
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}
