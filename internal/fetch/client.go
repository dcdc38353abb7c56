package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout = 10 * time.Second
	userAgent      = "NewsRecommender/1.0"
	maxBodyBytes   = 4 << 20
)

// Client issues bounded-timeout GET requests. Upstream sources fail
// routinely (timeouts, non-200s, malformed payloads), so callers treat an
// error here as a per-source degradation, never a batch abort.
type Client struct {
	http *http.Client
}

// New wires an HTTP client; a nil argument gets the default timeout.
func New(client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{http: client}
}

// Get retrieves the URL and returns the body with the status code.
// Non-200 responses are reported as errors; callers needing a stricter
// deadline than the client default pass it through ctx.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body %s: %w", rawURL, err)
	}

	if resp.StatusCode != http.StatusOK {
		return body, resp.StatusCode, fmt.Errorf("%s returned %s", rawURL, resp.Status)
	}

	return body, resp.StatusCode, nil
}
