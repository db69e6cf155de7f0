package translator

import (
	"context"
	"fmt"

	"newsrelay/internal/utils/text"
)

// Stub is a deterministic Engine for running the relay without a model
// backend. Translation is a prefixed echo; summaries are sentence splits.
type Stub struct{}

// NewStub creates a stub engine.
func NewStub() *Stub {
	return &Stub{}
}

// TranslateFullText echoes the input with a stub marker prefix.
func (s *Stub) TranslateFullText(_ context.Context, input string) (string, error) {
	return "Перевод (заглушка, ru): " + input, nil
}

// SummarizeBullets splits the input into sentences and numbers them, padding
// up to MinBullets when the text is too short.
func (s *Stub) SummarizeBullets(_ context.Context, input string) ([]string, error) {
	var bullets []string
	for _, sentence := range text.SplitSentences(input) {
		if len(bullets) == MaxBullets {
			break
		}
		bullets = append(bullets, fmt.Sprintf("Пункт %d: %s", len(bullets)+1, sentence))
	}
	for len(bullets) < MinBullets {
		bullets = append(bullets, fmt.Sprintf("Пункт %d: доп. резюме отсутствует", len(bullets)+1))
	}
	return bullets, nil
}
