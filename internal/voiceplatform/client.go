package voiceplatform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"voicedesk/internal/config"
)

// Client is the REST adapter for the voice platform. It issues bearer-token
// HTTPS requests and decodes JSON; it never retries on its own (the caller
// decides what a failed provisioning call means).
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(cfg config.VoicePlatformConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.APIToken,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Name() string { return "voice-platform" }

func (c *Client) HealthCheck(ctx context.Context) error {
	// Listing assistants is the cheapest authenticated round-trip the
	// platform offers.
	var out json.RawMessage
	return c.do(ctx, http.MethodGet, "/assistant", nil, &out)
}

func (c *Client) CreateAssistant(ctx context.Context, req AssistantRequest) (Assistant, error) {
	var out Assistant
	err := c.do(ctx, http.MethodPost, "/assistant", req, &out)
	return out, err
}

func (c *Client) GetAssistant(ctx context.Context, assistantID string) (Assistant, error) {
	var out Assistant
	err := c.do(ctx, http.MethodGet, "/assistant/"+assistantID, nil, &out)
	return out, err
}

func (c *Client) UpdateAssistant(ctx context.Context, assistantID string, req AssistantRequest) (Assistant, error) {
	var out Assistant
	err := c.do(ctx, http.MethodPatch, "/assistant/"+assistantID, req, &out)
	return out, err
}

func (c *Client) DeleteAssistant(ctx context.Context, assistantID string) error {
	return c.do(ctx, http.MethodDelete, "/assistant/"+assistantID, nil, nil)
}

func (c *Client) CreateCall(ctx context.Context, req CallRequest) (Call, error) {
	var out Call
	err := c.do(ctx, http.MethodPost, "/call", req, &out)
	return out, err
}

func (c *Client) GetCall(ctx context.Context, callID string) (Call, error) {
	var out Call
	err := c.do(ctx, http.MethodGet, "/call/"+callID, nil, &out)
	return out, err
}

func (c *Client) CreatePhoneNumber(ctx context.Context, req PhoneNumberRequest) (PhoneNumber, error) {
	var out PhoneNumber
	err := c.do(ctx, http.MethodPost, "/phone-number", req, &out)
	return out, err
}

func (c *Client) ListPhoneNumbers(ctx context.Context) ([]PhoneNumber, error) {
	var out []PhoneNumber
	err := c.do(ctx, http.MethodGet, "/phone-number", nil, &out)
	return out, err
}

func (c *Client) DeletePhoneNumber(ctx context.Context, phoneNumberID string) error {
	return c.do(ctx, http.MethodDelete, "/phone-number/"+phoneNumberID, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("voice platform: encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("voice platform: decode response: %w", err)
	}
	return nil
}
