package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"chatwidget/internal/models"
)

// ErrEmptyHistory is returned before any network activity when the caller
// passes no turns; the relay would reject the payload anyway.
var ErrEmptyHistory = errors.New("relay: history must contain at least one message")

const defaultTimeout = 60 * time.Second

// Config enumerates everything the client needs to find the relay.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client issues one POST /api/chat per user turn. A failed attempt is
// terminal: there are no retries, the user resubmits.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Send posts the full conversation history to the relay and returns the
// assistant's reply text.
func (c *Client) Send(ctx context.Context, history []models.ChatMessage) (string, error) {
	if len(history) == 0 {
		return "", ErrEmptyHistory
	}

	body, err := json.Marshal(models.ChatRequest{Messages: history})
	if err != nil {
		return "", fmt.Errorf("relay: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("relay: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("relay: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp models.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return "", fmt.Errorf("relay: HTTP %d: %s", resp.StatusCode, errResp.Error)
		}
		return "", fmt.Errorf("relay: HTTP %d", resp.StatusCode)
	}

	var chatResp models.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("relay: failed to decode response: %w", err)
	}
	if chatResp.Reply == "" {
		return "", errors.New("relay: response is missing the reply field")
	}

	return chatResp.Reply, nil
}
