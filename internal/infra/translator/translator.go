// Package translator provides the translation and bullet-summary engines used
// by the relay. It includes a live OpenRouter adapter, a Claude adapter, and a
// deterministic stub for running without a model backend.
package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"newsrelay/internal/config"
)

const (
	// MinBullets and MaxBullets bound every summary the engine produces.
	MinBullets = 3
	MaxBullets = 7

	// emptyBullet pads summaries that came back with fewer than MinBullets lines.
	emptyBullet = "(пусто)"

	// maxInputChars bounds the text sent to a model backend in one call.
	maxInputChars = 10000
)

// ErrEmptyResponse indicates the model backend answered without usable content.
var ErrEmptyResponse = errors.New("translation engine returned empty response")

// Engine translates article text and condenses it into a bullet summary.
// Implementations are safe for sequential reuse across relay cycles.
type Engine interface {
	// TranslateFullText returns the Russian translation of text.
	TranslateFullText(ctx context.Context, text string) (string, error)

	// SummarizeBullets returns between MinBullets and MaxBullets Russian
	// bullet points summarizing text.
	SummarizeBullets(ctx context.Context, text string) ([]string, error)
}

// New selects an engine implementation from the configured translator mode.
func New(settings *config.Settings) (Engine, error) {
	switch settings.TranslatorMode {
	case config.ModeStub:
		return NewStub(), nil
	case config.ModeOpenRouter:
		return NewOpenRouter(OpenRouterConfig{
			APIKey:         settings.OpenRouterAPIKey,
			TranslateModel: settings.OpenRouterTranslateModel,
			TLDRModel:      settings.OpenRouterTLDRModel,
		}), nil
	case config.ModeClaude:
		return NewClaude(settings.AnthropicAPIKey), nil
	default:
		return nil, fmt.Errorf("unknown translator mode %q", settings.TranslatorMode)
	}
}

// parseBullets splits a model response into bullet lines, strips list markers,
// and normalizes the result into the [MinBullets, MaxBullets] range.
func parseBullets(response string) []string {
	var bullets []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.Trim(line, " -•\t")
		if line == "" {
			continue
		}
		bullets = append(bullets, line)
	}

	for len(bullets) < MinBullets {
		bullets = append(bullets, emptyBullet)
	}
	if len(bullets) > MaxBullets {
		bullets = bullets[:MaxBullets]
	}
	return bullets
}

// truncateInput caps text at maxInputChars to stay inside model token limits.
func truncateInput(text string) string {
	if len(text) <= maxInputChars {
		return text
	}
	return text[:maxInputChars] + "...\n(содержимое обрезано)"
}
