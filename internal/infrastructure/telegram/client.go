// Package telegram is a thin Bot API client covering the handful of methods
// the bot needs: long polling, plain sends and message forwarding/copying.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.telegram.org"

// Client talks to the Telegram Bot API. Outbound calls go through a token
// bucket so the bot stays under the API flood limits.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option customises a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient creates a Bot API client for the given token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:   token,
		baseURL: defaultBaseURL,
		// Long polls need a client timeout above the poll timeout; per-call
		// deadlines come from the caller's context.
		httpClient: &http.Client{Timeout: 90 * time.Second},
		// Bot API allows ~30 messages/second overall.
		limiter: rate.NewLimiter(rate.Limit(25), 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

func (c *Client) call(ctx context.Context, method string, params interface{}, out interface{}) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal %s params: %w", method, err)
	}
	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	if !apiResp.OK {
		return fmt.Errorf("%s: %s", method, apiResp.Description)
	}
	if out != nil {
		return json.Unmarshal(apiResp.Result, out)
	}
	return nil
}

// GetUpdates long-polls for new updates after the given offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]Update, error) {
	params := map[string]interface{}{
		"offset":          offset,
		"timeout":         timeoutSec,
		"allowed_updates": []string{"message"},
	}
	var updates []Update
	if err := c.call(ctx, "getUpdates", params, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessage sends an HTML-formatted text message to the given chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	return c.call(ctx, "sendMessage", map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}, nil)
}

// ForwardMessage forwards an existing message to the given chat, keeping the
// original sender header visible.
func (c *Client) ForwardMessage(ctx context.Context, chatID, fromChatID int64, messageID int) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	return c.call(ctx, "forwardMessage", map[string]interface{}{
		"chat_id":      chatID,
		"from_chat_id": fromChatID,
		"message_id":   messageID,
	}, nil)
}

// CopyMessage sends a copy of an existing message without the forward header.
func (c *Client) CopyMessage(ctx context.Context, chatID, fromChatID int64, messageID int) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	return c.call(ctx, "copyMessage", map[string]interface{}{
		"chat_id":      chatID,
		"from_chat_id": fromChatID,
		"message_id":   messageID,
	}, nil)
}
