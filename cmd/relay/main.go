package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsrelay/internal/config"
	"newsrelay/internal/infra/feed"
	"newsrelay/internal/infra/fetcher"
	"newsrelay/internal/infra/ledger"
	"newsrelay/internal/infra/notifier"
	"newsrelay/internal/infra/render"
	"newsrelay/internal/infra/translator"
	"newsrelay/internal/observability/logging"
	"newsrelay/internal/usecase/relay"
)

func main() {
	once := flag.Bool("once", false, "run exactly one cycle, then exit")
	dryRun := flag.Bool("dry-run", false, "execute every step but suppress sends and ledger commits")
	flag.Parse()

	logger := initLogger()

	settings, err := config.Load()
	if err != nil {
		logger.Error("configuration error", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := ledger.Open(settings.LedgerPath)
	if err != nil {
		logger.Error("failed to open ledger", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close ledger", slog.Any("error", err))
		}
	}()

	service, err := buildService(settings, store, *dryRun)
	if err != nil {
		logger.Error("failed to build relay", slog.Any("error", err))
		os.Exit(1)
	}

	if *dryRun {
		logger.Info("dry-run mode: sends and ledger commits are suppressed")
	}

	if *once {
		count := service.RunOnce(ctx)
		logger.Info("one-shot cycle finished", slog.Int("items_advanced", count))
		return
	}

	startMetricsServer(ctx, logger, settings.MetricsPort)

	logger.Info("relay starting",
		slog.String("environment", settings.Environment),
		slog.Duration("poll_interval", settings.PollInterval),
		slog.Int("max_items_per_run", settings.MaxItemsPerRun),
		slog.Bool("story_index_enabled", settings.StoryIndexEnabled))

	service.RunForever(ctx)
}

// initLogger selects JSON or text logging by environment and installs the
// result as the process default.
func initLogger() *slog.Logger {
	var logger *slog.Logger
	if os.Getenv("ENVIRONMENT") == "dev" {
		logger = logging.NewTextLogger()
	} else {
		logger = logging.NewLogger()
	}
	slog.SetDefault(logger)
	return logger
}

// buildService wires the relay service from its collaborators.
func buildService(settings *config.Settings, store *ledger.Store, dryRun bool) (*relay.Service, error) {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	aggregator := feed.NewRSSFetcher(httpClient)

	var stories *feed.StoryClient
	if settings.StoryIndexEnabled {
		stories = feed.NewStoryClient("", httpClient)
	}

	resolver := fetcher.NewReadabilityResolver(fetcher.DefaultConfig())

	engine, err := translator.New(settings)
	if err != nil {
		return nil, err
	}

	sender := notifier.NewTelegram(notifier.TelegramConfig{
		BotToken: settings.TelegramBotToken,
		DryRun:   dryRun,
	})

	renderer, err := render.NewRenderer(settings.OutputDir)
	if err != nil {
		return nil, err
	}

	var storyIndex relay.StoryIndex
	if stories != nil {
		storyIndex = stories
	}

	return relay.NewService(settings, aggregator, storyIndex, resolver, engine,
		store, sender, renderer, dryRun), nil
}
