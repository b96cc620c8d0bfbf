package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vea-connect/messaging/internal/models"
)

// Dispatcher delivers the final reply to the messaging provider.
// Errors are reported to the caller, never retried here: blind retries
// on a messaging API risk duplicate user-visible sends.
type Dispatcher interface {
	Send(ctx context.Context, recipient, text string) (models.DeliveryResult, error)
}

// Client wraps the provider's send-text-message API.
type Client struct {
	baseURL    string
	apiKey     string
	channelID  string
	httpClient *http.Client
}

type Config struct {
	BaseURL   string
	APIKey    string
	ChannelID string
	Timeout   time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("whatsapp: base url must not be empty")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("whatsapp: api key must not be empty")
	}
	t := cfg.Timeout
	if t == 0 {
		t = 10 * time.Second
	}
	return &Client{
		baseURL:    base,
		apiKey:     cfg.APIKey,
		channelID:  cfg.ChannelID,
		httpClient: &http.Client{Timeout: t},
	}, nil
}

type sendRequest struct {
	ChannelID string   `json:"channelRegistrationId,omitempty"`
	To        []string `json:"to"`
	Kind      string   `json:"kind"`
	Content   string   `json:"content"`
}

type sendResponse struct {
	Receipts []struct {
		MessageID string `json:"messageId"`
		To        string `json:"to"`
	} `json:"receipts"`
}

func (c *Client) Send(ctx context.Context, recipient, text string) (models.DeliveryResult, error) {
	if recipient == "" || text == "" {
		return models.DeliveryResult{}, errors.New("whatsapp: recipient and text are required")
	}

	body, err := json.Marshal(sendRequest{
		ChannelID: c.channelID,
		To:        []string{recipient},
		Kind:      "text",
		Content:   text,
	})
	if err != nil {
		return models.DeliveryResult{}, fmt.Errorf("whatsapp: marshal request: %w", err)
	}

	url := c.baseURL + "/messages/notifications:send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return models.DeliveryResult{}, fmt.Errorf("whatsapp: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return models.DeliveryResult{}, fmt.Errorf("whatsapp: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return models.DeliveryResult{}, fmt.Errorf("whatsapp: read response body: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return models.DeliveryResult{}, fmt.Errorf("whatsapp: unexpected status %d from %s", res.StatusCode, url)
	}

	var payload sendResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return models.DeliveryResult{}, fmt.Errorf("whatsapp: decode response: %w", err)
	}
	if len(payload.Receipts) == 0 {
		return models.DeliveryResult{}, errors.New("whatsapp: no receipts in response")
	}
	return models.DeliveryResult{
		ProviderMessageID: payload.Receipts[0].MessageID,
		Status:            "sent",
	}, nil
}
