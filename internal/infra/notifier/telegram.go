// Package notifier sends relay output to Telegram via the Bot API.
// Sends go through the shared retry policy; client errors (4xx other than
// 429) fail immediately. A dry-run mode logs the intended send instead of
// performing it.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"newsrelay/internal/resilience/retry"
)

// DefaultAPIBaseURL is the Telegram Bot API endpoint.
const DefaultAPIBaseURL = "https://api.telegram.org"

// TelegramConfig holds the settings for the Telegram notifier.
type TelegramConfig struct {
	// BotToken authenticates the bot.
	BotToken string

	// BaseURL overrides the API endpoint. Empty means DefaultAPIBaseURL.
	BaseURL string

	// Timeout is the HTTP request timeout for a single API call.
	Timeout time.Duration

	// DryRun logs intended sends instead of performing them.
	DryRun bool
}

// Telegram sends text messages and documents through the Bot API.
type Telegram struct {
	config      TelegramConfig
	httpClient  *http.Client
	retryConfig retry.Config
}

// NewTelegram creates a Telegram notifier.
func NewTelegram(config TelegramConfig) *Telegram {
	if config.BaseURL == "" {
		config.BaseURL = DefaultAPIBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &Telegram{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		retryConfig: retry.RelayConfig(),
	}
}

// apiResponse is the envelope every Bot API method returns.
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendText delivers a text message to the given chat.
func (t *Telegram) SendText(ctx context.Context, chatID, text string) error {
	if t.config.DryRun {
		slog.Info("[dry-run] would send text message",
			slog.String("chat_id", chatID),
			slog.Int("length", len(text)))
		return nil
	}

	err := retry.WithBackoff(ctx, t.retryConfig, func() error {
		return t.doSendText(ctx, chatID, text)
	})
	if err != nil {
		return fmt.Errorf("telegram send text to %s: %w", chatID, err)
	}

	slog.Info("sent text message", slog.String("chat_id", chatID))
	return nil
}

// SendDocument uploads the file at path as a document to the given chat.
func (t *Telegram) SendDocument(ctx context.Context, chatID, path string) error {
	if t.config.DryRun {
		slog.Info("[dry-run] would send document",
			slog.String("chat_id", chatID),
			slog.String("path", path))
		return nil
	}

	err := retry.WithBackoff(ctx, t.retryConfig, func() error {
		return t.doSendDocument(ctx, chatID, path)
	})
	if err != nil {
		return fmt.Errorf("telegram send document to %s: %w", chatID, err)
	}

	slog.Info("sent document",
		slog.String("chat_id", chatID),
		slog.String("path", path))
	return nil
}

func (t *Telegram) doSendText(ctx context.Context, chatID, text string) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("marshal sendMessage payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.methodURL("sendMessage"), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return t.execute(req)
}

func (t *Telegram) doSendDocument(ctx context.Context, chatID, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open document %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("chat_id", chatID); err != nil {
		return fmt.Errorf("write chat_id field: %w", err)
	}
	part, err := writer.CreateFormFile("document", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("create document part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy document body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.methodURL("sendDocument"), &body)
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return t.execute(req)
}

// execute performs the request and classifies the response. Non-2xx statuses
// map to retry.HTTPError so 5xx and 429 retry and other 4xx fail immediately.
func (t *Telegram) execute(req *http.Request) error {
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("telegram api: %s", strings.TrimSpace(string(respBody))),
		}
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return fmt.Errorf("decode telegram response: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram api rejected request: %s", apiResp.Description)
	}

	return nil
}

func (t *Telegram) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", t.config.BaseURL, t.config.BotToken, method)
}
