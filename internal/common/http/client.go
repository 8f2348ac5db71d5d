package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrMalformedResponse wraps a 2xx response whose body could not be decoded.
var ErrMalformedResponse = errors.New("malformed response body")

// StatusError is returned for a non-2xx response that was not retried away.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client is a JSON HTTP client that retries transport failures and 5xx responses.
type Client struct {
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseDelay: 200 * time.Millisecond,
	}
}

// WithRetry sets how many times a request is repeated after the first attempt.
func (c *Client) WithRetry(maxRetries int, baseDelay time.Duration) *Client {
	c.maxRetries = maxRetries
	c.baseDelay = baseDelay
	return c
}

// PostJSON posts body and decodes a 2xx response into out. It returns the number of attempts made.
func (c *Client) PostJSON(ctx context.Context, url string, body, out interface{}) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.baseDelay * time.Duration(1<<(attempt-1))):
			case <-ctx.Done():
				return attempt, ctx.Err()
			}
		}

		retry, err := c.postOnce(ctx, url, payload, out)
		if err == nil {
			return attempt + 1, nil
		}
		lastErr = err
		if !retry {
			return attempt + 1, err
		}
	}
	return c.maxRetries + 1, lastErr
}

func (c *Client) postOnce(ctx context.Context, url string, payload []byte, out interface{}) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return resp.StatusCode >= 500, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return false, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	}
	return false, nil
}
