package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"NewsPulse/internal/config"
	"NewsPulse/internal/ports"
)

// HTTPOracle talks to a self-hosted completion service that accepts
// {"prompt": ...} and answers {"text": ...}.
type HTTPOracle struct {
	endpoint string
	apiKey   string
	model    string
	http     *http.Client
}

var _ ports.Oracle = (*HTTPOracle)(nil)

// NewHTTPOracle creates a reusable HTTP client for the configured endpoint.
func NewHTTPOracle(cfg config.OracleConfig) (*HTTPOracle, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("http oracle endpoint is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPOracle{
		endpoint: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		http:     &http.Client{Timeout: timeout},
	}, nil
}

// Name identifies the provider in logs.
func (c *HTTPOracle) Name() string {
	return "http"
}

// Complete posts the prompt and returns the text field of the reply.
func (c *HTTPOracle) Complete(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"prompt": prompt,
	}
	if c.model != "" {
		payload["model"] = c.model
	}

	var resp struct {
		Text string `json:"text"`
	}
	if err := c.post(ctx, "/complete", payload, &resp); err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

func (c *HTTPOracle) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
