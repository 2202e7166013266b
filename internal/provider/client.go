// Package provider implements the REST client for the Africa's Talking
// communication APIs: airtime, SMS, mobile data, voice, WhatsApp and
// account balance queries. Requests carry the account credentials; phone
// numbers are masked before they reach any log line.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sema-ai/commsgate/internal/masking"
)

const (
	liveAPIBase     = "https://api.africastalking.com"
	sandboxAPIBase  = "https://api.sandbox.africastalking.com"
	voiceAPIBase    = "https://voice.africastalking.com"
	bundlesAPIBase  = "https://bundles.africastalking.com"
	liveChatBase    = "https://chat.africastalking.com"
	sandboxChatBase = "https://chat.sandbox.africastalking.com"

	defaultTimeout = 10 * time.Second
)

// Config carries the account credentials and endpoint selection.
type Config struct {
	Username string
	APIKey   string

	// Sandbox routes balance and WhatsApp calls to the sandbox hosts.
	Sandbox bool

	// Timeout for each outbound request. Default: 10s.
	Timeout time.Duration

	// VoiceCallbackURL is the server that stores per-session TTS text and
	// audio URLs for voice callbacks. Default: http://localhost:5001.
	VoiceCallbackURL string
}

// Client talks to the provider's REST endpoints.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger

	// Endpoint hosts, overridable in tests.
	apiHost     string
	voiceHost   string
	bundlesHost string
	chatHost    string
}

// New creates a provider client. The username and API key must be set.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.Username == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("provider: username and API key are required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.VoiceCallbackURL == "" {
		cfg.VoiceCallbackURL = "http://localhost:5001"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client := &Client{
		cfg:         cfg,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		logger:      logger,
		apiHost:     liveAPIBase,
		voiceHost:   voiceAPIBase,
		bundlesHost: bundlesAPIBase,
		chatHost:    liveChatBase,
	}
	if cfg.Sandbox {
		client.apiHost = sandboxAPIBase
		client.chatHost = sandboxChatBase
	}
	return client, nil
}

// postJSON sends a JSON body and decodes a JSON response into out.
func (c *Client) postJSON(ctx context.Context, endpoint string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("provider: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("provider: build request: %w", err)
	}
	req.Header.Set("apiKey", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

// postForm sends a form-encoded body and decodes a JSON response into out.
func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("provider: build request: %w", err)
	}
	req.Header.Set("apiKey", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req, out)
}

// getJSON issues a GET and decodes a JSON response into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("provider: build request: %w", err)
	}
	req.Header.Set("apiKey", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider: %s %s: %w", req.Method, req.URL.Host, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("provider: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("provider: decode response (status %d): %w", resp.StatusCode, err)
	}
	return nil
}

// APIError is a non-2xx response from the provider.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider: API error %d: %s", e.Status, e.Body)
}

// maskPhone shortens a phone number for log lines.
func maskPhone(number string) string {
	return masking.Mask(number)
}
