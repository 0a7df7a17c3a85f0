package factcheck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client calls the fact-check backend: POST {claim, evidence} -> {score}.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
}

// NewClient creates a new fact-check client. Requests are rate limited so
// a message dense with citations does not burst the backend.
func NewClient(baseURL string, timeout time.Duration, userAgent string, requestsPerSecond float64, burst int) *Client {
	if burst <= 0 {
		burst = 5
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		userAgent:  userAgent,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

type checkRequest struct {
	Claim    string `json:"claim"`
	Evidence string `json:"evidence"`
}

type checkResponse struct {
	Score float64 `json:"score"`
}

// Check verifies a claim against its evidence and returns the support
// score in [0,1].
func (c *Client) Check(ctx context.Context, claim, evidence string) (float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit: %w", err)
	}

	payload, err := json.Marshal(checkRequest{Claim: claim, Evidence: evidence})
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fact check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	var body checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}

	if body.Score < 0 || body.Score > 1 {
		return 0, fmt.Errorf("score out of range: %g", body.Score)
	}

	return body.Score, nil
}
