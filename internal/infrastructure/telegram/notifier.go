package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"NewsPulse/internal/config"
	"NewsPulse/internal/ports"
)

const defaultBaseURL = "https://api.telegram.org"

// Notifier sends HTML messages to a Telegram chat via the bot API.
type Notifier struct {
	baseURL  string
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier. Both are required.
func NewNotifier(cfg config.TelegramConfig) (*Notifier, error) {
	if strings.TrimSpace(cfg.BotToken) == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	if strings.TrimSpace(cfg.ChatID) == "" {
		return nil, fmt.Errorf("telegram chat id is required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Notifier{
		baseURL:  baseURL,
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// Send posts an HTML message with link previews disabled.
func (n *Notifier) Send(ctx context.Context, text string) error {
	payload := map[string]any{
		"chat_id":                  n.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	if _, err := n.call(ctx, http.MethodPost, "sendMessage", payload); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// Ping calls getMe and returns the bot username.
func (n *Notifier) Ping(ctx context.Context) (string, error) {
	result, err := n.call(ctx, http.MethodGet, "getMe", nil)
	if err != nil {
		return "", fmt.Errorf("get me: %w", err)
	}

	var me struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(result, &me); err != nil {
		return "", fmt.Errorf("decode bot identity: %w", err)
	}
	return me.Username, nil
}

func (n *Notifier) call(ctx context.Context, method, apiMethod string, payload any) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/bot%s/%s", n.baseURL, n.botToken, apiMethod)

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := n.client.Do(req)
	if err != nil {
		// The URL carries the token; keep it out of logs.
		return nil, fmt.Errorf("do request: %w", redact(err, n.botToken))
	}
	defer resp.Body.Close()

	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("telegram error: %s", resp.Status)
	}
	if !decoded.OK {
		if decoded.Description == "" {
			decoded.Description = resp.Status
		}
		return nil, fmt.Errorf("telegram error: %s", decoded.Description)
	}
	return decoded.Result, nil
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

func redact(err error, secret string) error {
	if secret == "" || !strings.Contains(err.Error(), secret) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), secret, "***"), err: err}
}
