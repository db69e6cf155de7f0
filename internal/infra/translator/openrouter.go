package translator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"newsrelay/internal/resilience/circuitbreaker"
	"newsrelay/internal/resilience/retry"
	"newsrelay/internal/utils/text"
)

// DefaultOpenRouterBaseURL is the OpenRouter OpenAI-compatible endpoint.
const DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

const translateSystemPrompt = "You are a professional translator. Translate the " +
	"following text to Russian language ONLY. Output ONLY the Russian translation, " +
	"nothing else. Preserve the meaning and structure. Use neutral business tone."

// OpenRouterConfig holds the settings for the OpenRouter engine.
type OpenRouterConfig struct {
	// APIKey authenticates against OpenRouter.
	APIKey string

	// BaseURL overrides the API endpoint. Empty means DefaultOpenRouterBaseURL.
	BaseURL string

	// TranslateModel is the model used for full-text translation.
	TranslateModel string

	// TLDRModel is the model used for bullet summaries.
	TLDRModel string

	// Timeout is the maximum duration for a single model call.
	Timeout time.Duration
}

// OpenRouter implements Engine against OpenRouter's OpenAI-compatible API.
// Calls go through the shared retry policy and a circuit breaker.
type OpenRouter struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         OpenRouterConfig
}

// NewOpenRouter creates an OpenRouter engine.
func NewOpenRouter(cfg OpenRouterConfig) *OpenRouter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenRouterBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = cfg.BaseURL

	slog.Info("Initialized OpenRouter translator",
		slog.String("translate_model", cfg.TranslateModel),
		slog.String("tldr_model", cfg.TLDRModel))

	return &OpenRouter{
		client:         openai.NewClientWithConfig(clientConfig),
		circuitBreaker: circuitbreaker.New(circuitbreaker.TranslationConfig()),
		retryConfig:    retry.RelayConfig(),
		config:         cfg,
	}
}

// TranslateFullText translates text to Russian using the translate model.
func (o *OpenRouter) TranslateFullText(ctx context.Context, input string) (string, error) {
	result, err := o.complete(ctx, o.config.TranslateModel, translateSystemPrompt,
		"Translate this text to Russian:\n\n"+truncateInput(input))
	if err != nil {
		return "", fmt.Errorf("openrouter translate failed: %w", err)
	}
	return result, nil
}

// SummarizeBullets condenses text into Russian bullet points using the
// tldr model.
func (o *OpenRouter) SummarizeBullets(ctx context.Context, input string) ([]string, error) {
	prompt := fmt.Sprintf("Create %d-%d bullet point summary in Russian language ONLY. "+
		"Each bullet should be 1-2 sentences, concise and fact-focused. "+
		"Preserve key facts and numbers. Output ONLY in Russian, no English words. "+
		"Start each bullet with '- ' (dash and space). "+
		"IMPORTANT: Skip disclaimers, legal notices, advertisements, and promotional content. "+
		"Focus only on the main content and key insights.", MinBullets, MaxBullets)

	result, err := o.complete(ctx, o.config.TLDRModel, prompt, truncateInput(input))
	if err != nil {
		return nil, fmt.Errorf("openrouter summarize failed: %w", err)
	}
	return parseBullets(result), nil
}

// complete runs one chat completion through retry and the circuit breaker.
func (o *OpenRouter) complete(ctx context.Context, model, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	var result string
	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doComplete(ctx, model, system, user)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("translation circuit breaker open, request rejected",
					slog.String("state", o.circuitBreaker.State().String()))
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
func (o *OpenRouter) doComplete(ctx context.Context, model, system, user string) (interface{}, error) {
	start := time.Now()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})

	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "OpenRouter call failed",
			slog.String("model", model),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("openrouter api error: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		slog.ErrorContext(ctx, "OpenRouter returned empty response",
			slog.String("model", model),
			slog.Duration("duration", duration))
		return "", ErrEmptyResponse
	}

	content := resp.Choices[0].Message.Content
	slog.InfoContext(ctx, "OpenRouter call completed",
		slog.String("model", model),
		slog.Int("output_length", text.CountRunes(content)),
		slog.Duration("duration", duration))

	return content, nil
}
