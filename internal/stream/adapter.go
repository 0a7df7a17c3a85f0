// Package stream turns live answer-service connections into ordered
// event feeds for the reducer.
package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ppiankov/citetrail/internal/model"
	"github.com/ppiankov/citetrail/internal/util"
)

// Source produces the ordered event feed for a single question. The
// returned channel is closed when the answer is complete; the feed always
// ends with AnswerCompleted, synthesized on disconnect if need be.
type Source interface {
	Events(ctx context.Context, question string) (<-chan model.Event, error)
}

// Client consumes the answer service's server-sent event stream.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	userAgent     string
	maxEventBytes int
}

// NewClient creates a new streaming client. cfg.MaxEventBytes bounds a
// single SSE line; events beyond it abort the stream (and end the answer).
func NewClient(cfg model.BackendConfig) *Client {
	maxEventBytes := cfg.MaxEventBytes
	if maxEventBytes <= 0 {
		maxEventBytes = 64 * 1024
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: util.NewTransport(cfg.HTTPProxy, cfg.HTTPSProxy),
		},
		baseURL:       cfg.BaseURL,
		userAgent:     cfg.UserAgent,
		maxEventBytes: maxEventBytes,
	}
}

// envelope is the wire form of one streamed event. The tag values follow
// the answer service's camelCase variant names.
type envelope struct {
	Type   string            `json:"@type"`
	Query  string            `json:"query,omitempty"`
	Result []model.WebResult `json:"result,omitempty"`
	Text   string            `json:"text,omitempty"`
}

// Events opens the stream for a question and decodes it into domain
// events. Transport and parse failures after the stream is open are not
// surfaced as errors: the feed ends with a synthetic AnswerCompleted so
// the transcript stops accepting deltas and the UI settles.
func (c *Client) Events(ctx context.Context, question string) (<-chan model.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?message="+url.QueryEscape(question), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	events := make(chan model.Event, 16)

	go func() {
		defer close(events)
		defer resp.Body.Close()

		send := func(ev model.Event) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 4096), c.maxEventBytes)

		for scanner.Scan() {
			data, ok := strings.CutPrefix(scanner.Text(), "data:")
			if !ok {
				continue // comments, event: lines, blank keep-alives
			}
			data = strings.TrimSpace(data)
			if data == "" {
				continue
			}

			var env envelope
			if err := json.Unmarshal([]byte(data), &env); err != nil {
				continue // malformed payloads are tolerated, not fatal
			}

			var ev model.Event
			switch env.Type {
			case "beginSearch":
				ev = model.SearchBegan{Query: env.Query}
			case "searchResult":
				ev = model.SearchCompleted{Query: env.Query, Results: env.Result}
			case "speaking":
				ev = model.AnswerDelta{Text: env.Text}
			case "done":
				send(model.AnswerCompleted{})
				return
			default:
				continue
			}
			if !send(ev) {
				return
			}
		}

		// Disconnect or scanner error mid-answer: close out the message.
		send(model.AnswerCompleted{})
	}()

	return events, nil
}
