package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"lp-yield-reporter/internal/observability"
)

// Default configuration values. The retry budget matches the sink's observed
// rate-limit behavior: up to 8 attempts with the delay doubling from 1s.
const (
	DefaultSheetTimeout     = 30 * time.Second
	DefaultSheetMaxAttempts = 8
	DefaultSheetRetryDelay  = 1 * time.Second
)

// SheetClient implements Ledger against a spreadsheet values HTTP API
// (Sheets-style): GET and PUT of a whole-sheet value range, with capped
// exponential backoff on rate limiting. After exhausting retries the write
// is fatal for that period.
type SheetClient struct {
	baseURL       string
	spreadsheetID string
	sheetName     string
	client        *http.Client
	maxAttempts   int
	retryDelay    time.Duration
}

// SheetOption configures SheetClient.
type SheetOption func(*SheetClient)

// WithSheetHTTPClient sets a custom http.Client.
func WithSheetHTTPClient(client *http.Client) SheetOption {
	return func(c *SheetClient) {
		c.client = client
	}
}

// WithSheetMaxAttempts sets the total attempt budget per request.
func WithSheetMaxAttempts(n int) SheetOption {
	return func(c *SheetClient) {
		c.maxAttempts = n
	}
}

// WithSheetRetryDelay sets the initial retry delay.
func WithSheetRetryDelay(d time.Duration) SheetOption {
	return func(c *SheetClient) {
		c.retryDelay = d
	}
}

// NewSheetClient creates a ledger client for one sheet of one spreadsheet.
func NewSheetClient(baseURL, spreadsheetID, sheetName string, opts ...SheetOption) *SheetClient {
	c := &SheetClient{
		baseURL:       baseURL,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		client:        &http.Client{Timeout: DefaultSheetTimeout},
		maxAttempts:   DefaultSheetMaxAttempts,
		retryDelay:    DefaultSheetRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RecordPeriod upserts one period row: reads the sheet, applies the pivot
// update and writes the whole rectangle back.
func (c *SheetClient) RecordPeriod(ctx context.Context, periodKey string, values []GroupValue) error {
	table, err := c.readValues(ctx)
	if err != nil {
		observability.RecordLedgerWrite("read_error")
		return fmt.Errorf("ledger: read sheet: %w", err)
	}

	updated := applyPeriod(table, periodKey, values)

	if err := c.writeValues(ctx, updated); err != nil {
		observability.RecordLedgerWrite("write_error")
		return fmt.Errorf("ledger: write sheet: %w", err)
	}
	observability.RecordLedgerWrite("ok")
	return nil
}

type valueRange struct {
	Values [][]string `json:"values"`
}

func (c *SheetClient) valuesURL() string {
	return fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s",
		c.baseURL, url.PathEscape(c.spreadsheetID), url.PathEscape(c.sheetName))
}

func (c *SheetClient) readValues(ctx context.Context) ([][]string, error) {
	body, err := c.doWithBackoff(ctx, http.MethodGet, c.valuesURL(), nil)
	if err != nil {
		return nil, err
	}
	var vr valueRange
	if err := json.Unmarshal(body, &vr); err != nil {
		return nil, fmt.Errorf("unmarshal values: %w", err)
	}
	return vr.Values, nil
}

func (c *SheetClient) writeValues(ctx context.Context, table [][]string) error {
	payload, err := json.Marshal(valueRange{Values: table})
	if err != nil {
		return fmt.Errorf("marshal values: %w", err)
	}
	_, err = c.doWithBackoff(ctx, http.MethodPut, c.valuesURL()+"?valueInputOption=RAW", payload)
	return err
}

// doWithBackoff performs one logical request, retrying rate limits and
// transient failures with the delay doubling between attempts.
func (c *SheetClient) doWithBackoff(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			observability.RecordLedgerRetry()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("server error %d: %s", resp.StatusCode, string(body))
			continue
		case resp.StatusCode != http.StatusOK:
			// Client errors are not retried.
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
		}

		return body, nil
	}

	return nil, fmt.Errorf("retries exhausted after %d attempts: %w", c.maxAttempts, lastErr)
}
