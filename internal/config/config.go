// Package config loads and validates relay settings from the environment,
// with an optional feeds file for the feed URL lists.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	pkgconfig "newsrelay/pkg/config"
)

// TranslatorMode selects the translation engine implementation.
type TranslatorMode string

const (
	ModeStub       TranslatorMode = "stub"
	ModeOpenRouter TranslatorMode = "openrouter"
	ModeClaude     TranslatorMode = "claude"
)

// Settings holds the full relay configuration. Loaded once at startup and
// treated as immutable afterwards.
type Settings struct {
	TelegramBotToken  string
	TelegramChatID    string
	TelegramChannelID string // optional broadcast target

	ResearchFeeds   []string
	NewsletterFeeds []string

	OpenRouterAPIKey         string
	OpenRouterTranslateModel string
	OpenRouterTLDRModel      string
	AnthropicAPIKey          string
	TranslatorMode           TranslatorMode

	PollInterval   time.Duration
	LookbackWindow time.Duration
	MaxItemsPerRun int

	ResearchKeywords   []string
	NewsletterKeywords []string

	StoryIndexEnabled bool
	StoryIndexLimit   int

	LedgerPath  string
	OutputDir   string
	MetricsPort int
	Environment string
}

// feedsFile mirrors the optional feeds.yaml layout:
//
//	research:
//	  - https://example.substack.com/feed
//	newsletter:
//	  - https://other.example/rss
type feedsFile struct {
	Research   []string `yaml:"research"`
	Newsletter []string `yaml:"newsletter"`
}

// Load reads settings from the environment, consulting .env via godotenv and
// an optional feeds.yaml next to the working directory. Missing required
// settings return an error before any network activity happens.
func Load() (*Settings, error) {
	// Best effort: absence of a .env file is not an error.
	_ = godotenv.Load()

	s := &Settings{
		TelegramBotToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:    os.Getenv("TELEGRAM_CHAT_ID"),
		TelegramChannelID: os.Getenv("TELEGRAM_CHANNEL_ID"),

		OpenRouterAPIKey:         os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterTranslateModel: pkgconfig.GetEnvString("OPENROUTER_TRANSLATE_MODEL", "mistralai/mixtral-8x7b-instruct"),
		OpenRouterTLDRModel:      pkgconfig.GetEnvString("OPENROUTER_TLDR_MODEL", "mistralai/mixtral-8x7b-instruct"),
		AnthropicAPIKey:          os.Getenv("ANTHROPIC_API_KEY"),
		TranslatorMode:           TranslatorMode(pkgconfig.GetEnvString("TRANSLATOR_MODE", string(ModeStub))),

		PollInterval:   time.Duration(pkgconfig.GetEnvInt("POLL_INTERVAL_MIN", 10)) * time.Minute,
		LookbackWindow: time.Duration(pkgconfig.GetEnvInt("BOOTSTRAP_LOOKBACK_HOURS", 24)) * time.Hour,
		MaxItemsPerRun: pkgconfig.GetEnvInt("MAX_ITEMS_PER_RUN", 20),

		ResearchKeywords:   pkgconfig.GetEnvStringList("RESEARCH_KEYWORDS", nil),
		NewsletterKeywords: pkgconfig.GetEnvStringList("NEWSLETTER_KEYWORDS", nil),

		StoryIndexEnabled: pkgconfig.GetEnvBool("HN_ENABLED", false),
		StoryIndexLimit:   pkgconfig.GetEnvInt("HN_MAX_STORIES", 5),

		LedgerPath:  pkgconfig.GetEnvString("LEDGER_PATH", "state.db"),
		OutputDir:   pkgconfig.GetEnvString("OUTPUT_DIR", "out"),
		MetricsPort: pkgconfig.GetEnvInt("METRICS_PORT", 9091),
		Environment: pkgconfig.GetEnvString("ENVIRONMENT", "dev"),
	}

	fromFile, err := loadFeedsFile(pkgconfig.GetEnvString("FEEDS_FILE", "feeds.yaml"))
	if err != nil {
		return nil, err
	}
	if fromFile != nil {
		s.ResearchFeeds = fromFile.Research
		s.NewsletterFeeds = fromFile.Newsletter
	} else {
		s.ResearchFeeds = pkgconfig.GetEnvStringList("RESEARCH_FEEDS", nil)
		s.NewsletterFeeds = pkgconfig.GetEnvStringList("NEWSLETTER_FEEDS", nil)
	}

	if err := s.validate(fromFile != nil); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Settings) validate(feedsFromFile bool) error {
	var missing []string
	if s.TelegramBotToken == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if s.TelegramChatID == "" {
		missing = append(missing, "TELEGRAM_CHAT_ID")
	}
	if !feedsFromFile {
		if len(s.ResearchFeeds) == 0 {
			missing = append(missing, "RESEARCH_FEEDS")
		}
		if len(s.NewsletterFeeds) == 0 {
			missing = append(missing, "NEWSLETTER_FEEDS")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}

	switch s.TranslatorMode {
	case ModeStub:
	case ModeOpenRouter:
		if s.OpenRouterAPIKey == "" {
			return fmt.Errorf("OPENROUTER_API_KEY is required when TRANSLATOR_MODE=openrouter")
		}
	case ModeClaude:
		if s.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when TRANSLATOR_MODE=claude")
		}
	default:
		return fmt.Errorf("unknown TRANSLATOR_MODE %q (want stub, openrouter or claude)", s.TranslatorMode)
	}

	if s.MaxItemsPerRun <= 0 {
		return fmt.Errorf("MAX_ITEMS_PER_RUN must be positive, got %d", s.MaxItemsPerRun)
	}
	if s.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL_MIN must be positive, got %v", s.PollInterval)
	}

	return nil
}

func loadFeedsFile(path string) (*feedsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read feeds file %s: %w", path, err)
	}

	var ff feedsFile
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("parse feeds file %s: %w", path, err)
	}
	if len(ff.Research) == 0 && len(ff.Newsletter) == 0 {
		return nil, nil
	}
	return &ff, nil
}
