package translator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"newsrelay/internal/resilience/circuitbreaker"
	"newsrelay/internal/resilience/retry"
	"newsrelay/internal/utils/text"
)

// ClaudeConfig holds the settings for the Claude engine.
type ClaudeConfig struct {
	// Model is the Claude model identifier.
	Model string

	// MaxTokens is the maximum number of tokens for the API response.
	MaxTokens int

	// Timeout is the maximum duration for a single model call.
	Timeout time.Duration
}

// DefaultClaudeConfig returns the default Claude engine settings.
func DefaultClaudeConfig() ClaudeConfig {
	return ClaudeConfig{
		Model:     string(anthropic.ModelClaudeSonnet4_5_20250929),
		MaxTokens: 2048,
		Timeout:   60 * time.Second,
	}
}

// Claude implements Engine using Anthropic's Claude API.
type Claude struct {
	client         anthropic.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         ClaudeConfig
}

// NewClaude creates a Claude engine with the given API key.
func NewClaude(apiKey string) *Claude {
	config := DefaultClaudeConfig()

	slog.Info("Initialized Claude translator",
		slog.String("model", config.Model))

	return &Claude{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		circuitBreaker: circuitbreaker.New(circuitbreaker.TranslationConfig()),
		retryConfig:    retry.RelayConfig(),
		config:         config,
	}
}

// TranslateFullText translates text to Russian.
func (c *Claude) TranslateFullText(ctx context.Context, input string) (string, error) {
	prompt := translateSystemPrompt + "\n\nTranslate this text to Russian:\n\n" +
		truncateInput(input)

	result, err := c.complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("claude translate failed: %w", err)
	}
	return result, nil
}

// SummarizeBullets condenses text into Russian bullet points.
func (c *Claude) SummarizeBullets(ctx context.Context, input string) ([]string, error) {
	prompt := fmt.Sprintf("Create %d-%d bullet point summary in Russian language ONLY. "+
		"Each bullet should be 1-2 sentences, concise and fact-focused. "+
		"Preserve key facts and numbers. Start each bullet with '- '. "+
		"Skip disclaimers, legal notices, advertisements, and promotional content.\n\n%s",
		MinBullets, MaxBullets, truncateInput(input))

	result, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("claude summarize failed: %w", err)
	}
	return parseBullets(result), nil
}

// complete runs one message call through retry and the circuit breaker.
func (c *Claude) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var result string
	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doComplete(ctx, prompt)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("translation circuit breaker open, request rejected",
					slog.String("state", c.circuitBreaker.State().String()))
				return fmt.Errorf("translation engine unavailable: circuit breaker open")
			}
			return err
		}
		result = cbResult.(string)
		return nil
	})
	if retryErr != nil {
		return "", retryErr
	}

	return result, nil
}

// doComplete performs the actual API call without retry or circuit breaker.
func (c *Claude) doComplete(ctx context.Context, prompt string) (interface{}, error) {
	requestID := uuid.New().String()
	start := time.Now()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
	})

	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "Claude call failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		slog.ErrorContext(ctx, "Claude returned empty response",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration))
		return "", ErrEmptyResponse
	}

	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("claude api returned unexpected response type")
	}

	slog.InfoContext(ctx, "Claude call completed",
		slog.String("request_id", requestID),
		slog.Int("output_length", text.CountRunes(textBlock.Text)),
		slog.Duration("duration", duration))

	return textBlock.Text, nil
}
