package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/ports"
)

const defaultTimeout = 15 * time.Second

// Client talks to the external classification service. The service is an
// opaque oracle: it may be slow, wrong, or emit labels outside the known
// taxonomy, all of which callers must tolerate.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.Classifier = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
	}
}

// Classify sends the text for labeling and returns the raw label with its
// confidence. Label normalization is the caller's concern.
func (c *Client) Classify(ctx context.Context, text string) (domain.Classification, error) {
	if c.endpoint == "" {
		return domain.Classification{}, fmt.Errorf("classifier endpoint is not configured")
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return domain.Classification{}, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Classification{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Classification{}, fmt.Errorf("classifier returned %s", resp.Status)
	}

	var payload struct {
		Category   string  `json:"category"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Classification{}, fmt.Errorf("decode response: %w", err)
	}

	return domain.Classification{
		Category:   payload.Category,
		Confidence: clamp01(payload.Confidence),
	}, nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
