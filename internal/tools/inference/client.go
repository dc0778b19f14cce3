// Package inference is the HTTP client for the remote AI service. Requests
// carry a serialized project snapshot plus tool parameters; the service is
// idempotent, so a failed call can be retried from the UI without side
// effects.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
	limiter *rate.Limiter
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
		// the inference backend throttles aggressively; stay under it
		limiter: rate.NewLimiter(rate.Limit(2), 4),
	}
}

// Request is the wire payload for one tool call.
type Request struct {
	Tool     string          `json:"tool"`
	Snapshot json.RawMessage `json:"snapshot"`
	Params   json.RawMessage `json:"params,omitempty"`
}

// Response is the tool-specific structured result.
type Response struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func (c *Client) Run(ctx context.Context, req Request) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	b, _ := json.Marshal(req)

	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/tools/run", bytes.NewReader(b))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("inference run: %w", err)
	}
	defer resp.Body.Close()

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("inference decode: %w", err)
	}
	if resp.StatusCode >= 400 || !out.OK {
		return nil, fmt.Errorf("inference error (status %d): %s", resp.StatusCode, out.Error)
	}
	return &out, nil
}
