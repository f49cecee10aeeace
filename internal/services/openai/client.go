package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vidx/internal/config"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client is a minimal OpenAI API client covering the three endpoints the
// pipeline uses: chat completions, speech synthesis, and transcription.
// Requests are single-shot; callers decide what a failure means for the job.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option customizes client construction.
type Option func(*Client)

// WithHTTPClient substitutes the HTTP client, primarily for tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL points the client at an alternate API host.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

// New builds a client from the OpenAI configuration section.
func New(cfg config.OpenAI, opts ...Option) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:     cfg.APIKey,
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("openai request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, apiError(path, resp)
	}
	return resp, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) (*http.Response, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("openai encode: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, "application/json", strings.NewReader(string(encoded)))
}

// apiError extracts the API's error message when one is present so logs
// carry the actual rejection reason rather than a bare status code.
func apiError(path string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		return fmt.Errorf("openai %s: %s (status %d)", path, envelope.Error.Message, resp.StatusCode)
	}
	detail := strings.TrimSpace(string(raw))
	if detail == "" {
		return fmt.Errorf("openai %s: status %d", path, resp.StatusCode)
	}
	return fmt.Errorf("openai %s: status %d: %s", path, resp.StatusCode, detail)
}
