package revert

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srvURL string, opts ...Option) *Client {
	base := []Option{
		WithBaseURL(srvURL),
		WithRetryDelay(time.Millisecond),
	}
	return NewClient(append(base, opts...)...)
}

func TestFetchPositions_RequestShape(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, WithV4Positions(true))
	_, err := c.FetchPositions(context.Background(), "0xAbC", true)
	require.NoError(t, err)

	assert.Equal(t, "/v1/positions/uniswapv3/account/0xAbC", gotPath)
	assert.Contains(t, gotQuery, "active=true")
	assert.Contains(t, gotQuery, "with-v4=true")
}

func TestFetchPositions_InactiveQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, WithV4Positions(false))
	_, err := c.FetchPositions(context.Background(), "0xAbC", false)
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "active=false")
	assert.Contains(t, gotQuery, "with-v4=false")
}

func TestFetchPositions_PayloadPassthrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"positions": [{"nft_id": 1}]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	payload, err := c.FetchPositions(context.Background(), "0xabc", true)
	require.NoError(t, err)

	m, ok := payload.(map[string]any)
	require.True(t, ok, "payload should decode untyped")
	assert.Contains(t, m, "positions")
}

func TestFetchPositions_RetriesRateLimit(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, WithMaxRetries(3))
	_, err := c.FetchPositions(context.Background(), "0xabc", true)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestFetchPositions_RetriesExhausted(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, WithMaxRetries(2))
	_, err := c.FetchPositions(context.Background(), "0xabc", true)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "max retries exceeded"))
	assert.Equal(t, 3, calls)
}

func TestFetchPositions_DecodeErrorNotRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, WithMaxRetries(3))
	_, err := c.FetchPositions(context.Background(), "0xabc", true)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestFetchPositions_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(srv.URL, WithMaxRetries(5), WithRetryDelay(time.Minute))
	_, err := c.FetchPositions(ctx, "0xabc", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient()
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, DefaultMaxRetries, c.maxRetries)
	assert.True(t, c.withV4)
}
