// Package revert fetches liquidity position snapshots from a Revert-style
// positions/analytics API.
package revert

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"lp-yield-reporter/internal/observability"
)

// Default configuration values.
const (
	DefaultBaseURL     = "https://api.revert.finance"
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// Client retrieves position payloads over HTTP with retries and capped
// exponential backoff. The decoded payload is returned as-is; shape
// normalization is the caller's concern.
type Client struct {
	baseURL     string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	withV4      bool
}

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets the initial retry delay.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithV4Positions includes Uniswap v4 positions in responses.
func WithV4Positions(enabled bool) Option {
	return func(c *Client) {
		c.withV4 = enabled
	}
}

// NewClient creates a positions API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
		withV4:      true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPositions retrieves positions for one account address. active selects
// currently-open vs exited positions. The decoded JSON value is returned
// untyped for the normalization layer.
func (c *Client) FetchPositions(ctx context.Context, account string, active bool) (any, error) {
	endpoint := fmt.Sprintf("%s/v1/positions/uniswapv3/account/%s", c.baseURL, url.PathEscape(account))

	query := url.Values{
		"active":  {strconv.FormatBool(active)},
		"with-v4": {strconv.FormatBool(c.withV4)},
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.URL.RawQuery = query.Encode()
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			observability.RecordUpstreamRequest("network_error")
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			observability.RecordUpstreamRequest("read_error")
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			observability.RecordUpstreamRequest("rate_limited")
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			observability.RecordUpstreamRequest("http_error")
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
			continue
		}

		var payload any
		if err := json.Unmarshal(body, &payload); err != nil {
			// Undecodable bodies are not retried; the upstream answered.
			observability.RecordUpstreamRequest("decode_error")
			return nil, fmt.Errorf("unmarshal response: %w", err)
		}

		observability.RecordUpstreamRequest("ok")
		return payload, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
