package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/entrhq/tabcloner/pkg/types"
)

// Client talks to a relay server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the relay at baseURL, e.g.
// "http://127.0.0.1:8768".
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchPending takes the pending snapshot from the relay. It returns nil
// and no error when nothing is waiting.
func (c *Client) FetchPending(ctx context.Context) (*types.Snapshot, error) {
	var resp PendingResponse
	if err := c.get(ctx, "/pending", &resp); err != nil {
		return nil, err
	}
	switch resp.Status {
	case StatusEmpty:
		return nil, nil
	case types.StatusSuccess:
		if resp.Data == nil {
			return nil, fmt.Errorf("relay returned success without data")
		}
		return resp.Data, nil
	default:
		return nil, fmt.Errorf("unexpected relay status %q", resp.Status)
	}
}

// Status reports whether the relay is running and holding data.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.get(ctx, "/status", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach relay: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("relay returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode relay response: %w", err)
	}
	return nil
}
