// Package credits reads the externally owned credit ledger. The pipeline
// only ever reads balances; debits happen server-side as a side effect of
// successful tool calls.
package credits

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type balanceResponse struct {
	OK      bool   `json:"ok"`
	Balance int    `json:"balance"`
	Error   string `json:"error,omitempty"`
}

func (c *Client) GetBalance(ctx context.Context, userUID string) (int, error) {
	u := fmt.Sprintf("%s/balance?user=%s", c.BaseURL, url.QueryEscape(userUID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, fmt.Errorf("credit ledger: %w", err)
	}
	defer resp.Body.Close()

	var out balanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("credit ledger decode: %w", err)
	}
	if resp.StatusCode >= 400 || !out.OK {
		return 0, fmt.Errorf("credit ledger error (status %d): %s", resp.StatusCode, out.Error)
	}
	return out.Balance, nil
}
