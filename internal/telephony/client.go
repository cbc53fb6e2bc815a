package telephony

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/careops/scheduling-platform/pkg/logging"
)

const defaultCallTimeout = 15 * time.Second

// Client places automated announcement calls through the telephony provider's
// REST API. The reminder worker uses it to ring patients before their
// appointment.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// Config configures the announcement call client.
type Config struct {
	// APIKey is the provider API key (Bearer token).
	APIKey string
	// BaseURL is the provider API base URL.
	BaseURL string
	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// NewClient creates an announcement call client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("telephony: API key required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("telephony: base URL required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultCallTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

type callRequest struct {
	To             string `json:"to"`
	AnnouncementID string `json:"announcement_id"`
}

type callResponse struct {
	CallID string `json:"call_id"`
	Status string `json:"status"`
}

// TriggerCall starts an announcement call to the patient's phone.
func (c *Client) TriggerCall(ctx context.Context, phone, announcementID string) error {
	if strings.TrimSpace(phone) == "" {
		return fmt.Errorf("telephony: phone number required")
	}

	body, err := json.Marshal(callRequest{To: phone, AnnouncementID: announcementID})
	if err != nil {
		return fmt.Errorf("telephony: marshal request: %w", err)
	}

	url := c.baseURL + "/calls"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telephony: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("telephony: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("telephony: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("telephony: API error",
			"status", resp.StatusCode,
			"body", string(respBody),
		)
		return fmt.Errorf("telephony: API returned %d", resp.StatusCode)
	}

	var apiResp callResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return fmt.Errorf("telephony: decode response: %w", err)
	}

	c.logger.Info("telephony: announcement call placed",
		"call_id", apiResp.CallID,
		"to", maskPhone(phone),
		"announcement_id", announcementID,
	)
	return nil
}

// maskPhone hides all but the last four digits for logs.
func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
