// Package relay contains the orchestrator: one cycle pulls entries from the
// configured sources, runs the filter chain, resolves content, translates,
// and delivers, committing each delivered item to the dedup ledger. Phases
// and entries run strictly sequentially; there is no parallel fetch,
// translate, or deliver, which keeps budget accounting exact and leaves the
// ledger with a single writer.
package relay

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"newsrelay/internal/config"
	"newsrelay/internal/domain/entity"
	"newsrelay/internal/infra/fetcher"
	"newsrelay/internal/infra/translator"
	"newsrelay/internal/observability/metrics"
)

// maxMessageBullets caps how many bullets the chat message carries.
const maxMessageBullets = 7

// Aggregator pulls normalized entries from a list of feed URLs.
type Aggregator interface {
	FetchAll(ctx context.Context, feedURLs []string, kind entity.SourceKind) []entity.SourceEntry
}

// StoryIndex returns the newest URL-bearing stories from the story index.
type StoryIndex interface {
	Newest(ctx context.Context, limit int) ([]entity.Story, error)
	DiscussionURL(id int64) string
}

// ContentResolver resolves full article text for a URL.
type ContentResolver interface {
	Resolve(ctx context.Context, url string) (string, error)
}

// Ledger is the durable dedup membership set.
type Ledger interface {
	Exists(ctx context.Context, itemID string) (bool, error)
	Record(ctx context.Context, itemID, itemType string, publishedAt *time.Time) error
}

// Sender delivers text messages and documents to a chat.
type Sender interface {
	SendText(ctx context.Context, chatID, text string) error
	SendDocument(ctx context.Context, chatID, path string) error
}

// DocumentRenderer writes the per-item document and returns its path.
type DocumentRenderer interface {
	Render(item *entity.ProcessedItem) (string, error)
}

// stepResult is the outcome of per-item processing.
type stepResult int

const (
	stepDelivered stepResult = iota
	stepSuppressed
	stepFailed
)

// Service drives relay cycles over its collaborators.
type Service struct {
	settings   *config.Settings
	aggregator Aggregator
	stories    StoryIndex
	resolver   ContentResolver
	engine     translator.Engine
	ledger     Ledger
	sender     Sender
	renderer   DocumentRenderer

	dryRun bool
	now    func() time.Time
}

// NewService creates a relay service. stories may be nil when the story
// index is disabled.
func NewService(
	settings *config.Settings,
	aggregator Aggregator,
	stories StoryIndex,
	resolver ContentResolver,
	engine translator.Engine,
	ledger Ledger,
	sender Sender,
	renderer DocumentRenderer,
	dryRun bool,
) *Service {
	return &Service{
		settings:   settings,
		aggregator: aggregator,
		stories:    stories,
		resolver:   resolver,
		engine:     engine,
		ledger:     ledger,
		sender:     sender,
		renderer:   renderer,
		dryRun:     dryRun,
		now:        time.Now,
	}
}

// RunForever runs cycles until ctx is cancelled: one cycle, sleep the poll
// interval, repeat. Cycles never overlap.
func (s *Service) RunForever(ctx context.Context) {
	for {
		s.RunOnce(ctx)

		select {
		case <-time.After(s.settings.PollInterval):
		case <-ctx.Done():
			slog.Info("relay loop stopped", slog.Any("reason", ctx.Err()))
			return
		}
	}
}

// RunOnce runs one cycle: research feeds, then newsletter feeds, then (if
// enabled and budget remains) the story index, sharing one item budget.
// It always completes and returns the number of items advanced, even if
// every entry failed.
func (s *Service) RunOnce(ctx context.Context) int {
	slog.Info("starting poll cycle")
	start := s.now()

	remaining := s.settings.MaxItemsPerRun
	total := 0

	entries := s.aggregator.FetchAll(ctx, s.settings.ResearchFeeds, entity.KindResearch)
	advanced := s.processEntries(ctx, entries, s.settings.ResearchKeywords, remaining)
	total += advanced
	remaining -= advanced

	if remaining > 0 {
		entries = s.aggregator.FetchAll(ctx, s.settings.NewsletterFeeds, entity.KindNewsletter)
		advanced = s.processEntries(ctx, entries, s.settings.NewsletterKeywords, remaining)
		total += advanced
		remaining -= advanced
	}

	if remaining > 0 && s.settings.StoryIndexEnabled && s.stories != nil {
		total += s.processStories(ctx, remaining)
	}

	metrics.RecordCycle(time.Since(start))
	slog.Info("poll cycle complete",
		slog.Int("items_advanced", total),
		slog.Duration("duration", time.Since(start)))
	return total
}

// processEntries runs the filter chain over entries in feed order and
// processes survivors until the budget limit is hit. It returns the number
// of items that entered per-item processing, success or not.
func (s *Service) processEntries(ctx context.Context, entries []entity.SourceEntry, keywords []string, limit int) int {
	lookback := s.now().Add(-s.settings.LookbackWindow)
	advanced := 0

	for i := range entries {
		if advanced >= limit {
			break
		}
		entry := &entries[i]

		if !s.passesFilters(ctx, entry, keywords, lookback) {
			continue
		}

		advanced++
		metrics.RecordItemAdvanced(string(entry.Kind))

		if result := s.processEntry(ctx, entry, ""); result == stepFailed {
			metrics.RecordItemFailed(string(entry.Kind))
		}
	}

	return advanced
}

// processStories runs the story-index phase. Stories share the filter chain
// of the feed phases minus the keyword filter.
func (s *Service) processStories(ctx context.Context, limit int) int {
	stories, err := s.stories.Newest(ctx, s.settings.StoryIndexLimit)
	if err != nil {
		slog.Warn("failed to fetch story index", slog.Any("error", err))
		return 0
	}

	lookback := s.now().Add(-s.settings.LookbackWindow)
	advanced := 0

	for i := range stories {
		if advanced >= limit {
			break
		}
		discussionURL := s.stories.DiscussionURL(stories[i].ID)
		entry := stories[i].Entry(discussionURL)

		if !s.passesFilters(ctx, &entry, nil, lookback) {
			continue
		}

		advanced++
		metrics.RecordItemAdvanced(string(entry.Kind))

		if result := s.processEntry(ctx, &entry, discussionURL); result == stepFailed {
			metrics.RecordItemFailed(string(entry.Kind))
		}
	}

	return advanced
}

// passesFilters applies the filter chain: keyword filter (when configured),
// freshness, identity, dedup. Filtered entries never consume budget.
func (s *Service) passesFilters(ctx context.Context, entry *entity.SourceEntry, keywords []string, lookback time.Time) bool {
	if len(keywords) > 0 && !matchesKeywords(entry, keywords) {
		return false
	}

	// An unresolvable date never excludes an entry.
	if entry.Published != nil && entry.Published.Before(lookback) {
		slog.Debug("skip stale entry", slog.String("title", entry.Title))
		return false
	}

	itemID := entry.ItemID()
	if itemID == "" {
		return false
	}

	seen, err := s.ledger.Exists(ctx, itemID)
	if err != nil {
		slog.Error("ledger lookup failed",
			slog.String("item_id", itemID),
			slog.Any("error", err))
		return false
	}
	return !seen
}

func matchesKeywords(entry *entity.SourceEntry, keywords []string) bool {
	haystack := entry.FilterText()
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// processEntry runs one item through resolution, translation, the guard, and
// delivery. Errors at any step stay inside this item: they are logged with
// its identity and the caller moves on to the next entry.
func (s *Service) processEntry(ctx context.Context, entry *entity.SourceEntry, discussionURL string) stepResult {
	itemID := entry.ItemID()

	raw := s.resolveContent(ctx, entry)

	translated, err := s.engine.TranslateFullText(ctx, raw)
	if err != nil {
		slog.Error("translation failed",
			slog.String("item_id", itemID),
			slog.String("title", entry.Title),
			slog.Any("error", err))
		return stepFailed
	}

	bullets, err := s.engine.SummarizeBullets(ctx, raw)
	if err != nil {
		slog.Error("summarization failed",
			slog.String("item_id", itemID),
			slog.String("title", entry.Title),
			slog.Any("error", err))
		return stepFailed
	}

	item := s.buildItem(entry, translated, discussionURL)

	if hasFailureSignature(bullets) {
		slog.Warn("delivery suppressed by failure-signature guard",
			slog.String("item_id", itemID),
			slog.String("title", entry.Title))
		metrics.ItemsSuppressedTotal.Inc()
		// The page will not get better on a re-poll; record it so the next
		// cycle does not burn budget on the same item.
		s.commit(ctx, item)
		return stepSuppressed
	}

	if err := s.deliver(ctx, item, bullets); err != nil {
		slog.Error("delivery failed",
			slog.String("item_id", itemID),
			slog.String("title", entry.Title),
			slog.Any("error", err))
		return stepFailed
	}

	s.commit(ctx, item)
	return stepDelivered
}

// resolveContent returns the best text for an entry: extracted full text when
// the link resolves, the entry's own content otherwise, the title as the
// last resort.
func (s *Service) resolveContent(ctx context.Context, entry *entity.SourceEntry) string {
	if entry.Link != "" {
		content, err := s.resolver.Resolve(ctx, entry.Link)
		if err == nil && content != "" {
			return content
		}
		if err != nil && !errors.Is(err, fetcher.ErrContentUnavailable) {
			slog.Warn("content resolution failed, using feed content",
				slog.String("url", entry.Link),
				slog.Any("error", err))
		}
		metrics.ContentFallbacksTotal.Inc()
	}

	if content := entry.Content(); content != "" {
		return content
	}
	return entry.Title
}

func (s *Service) buildItem(entry *entity.SourceEntry, translated, discussionURL string) *entity.ProcessedItem {
	publishDate := s.now().UTC()
	if entry.Published != nil {
		publishDate = *entry.Published
	}

	title := entry.Title
	if title == "" {
		title = "Без названия"
	}

	return &entity.ProcessedItem{
		ItemID:        entry.ItemID(),
		Slug:          entry.Slug(),
		Title:         title,
		URL:           entry.Link,
		PublishDate:   publishDate,
		Content:       translated,
		Kind:          entry.Kind,
		DiscussionURL: discussionURL,
		SourceURL:     entry.SourceURL,
	}
}

// deliver sends the chat message to the primary target and, when configured,
// the broadcast channel, then renders and sends the document. A broadcast
// failure is logged but does not fail the item; the primary send did land.
func (s *Service) deliver(ctx context.Context, item *entity.ProcessedItem, bullets []string) error {
	tag := config.SourceTag(item.SourceURL)
	message := composeMessage(tag, bullets, item.URL, item.DiscussionURL)

	if err := s.sender.SendText(ctx, s.settings.TelegramChatID, message); err != nil {
		metrics.RecordDelivery("primary", false)
		return err
	}
	metrics.RecordDelivery("primary", true)

	if s.settings.TelegramChannelID != "" {
		if err := s.sender.SendText(ctx, s.settings.TelegramChannelID, message); err != nil {
			metrics.RecordDelivery("broadcast", false)
			slog.Warn("broadcast send failed",
				slog.String("item_id", item.ItemID),
				slog.Any("error", err))
		} else {
			metrics.RecordDelivery("broadcast", true)
		}
	}

	path, err := s.renderer.Render(item)
	if err != nil {
		return err
	}
	return s.sender.SendDocument(ctx, s.settings.TelegramChatID, path)
}

// commit records the item in the ledger. Skipped in dry-run so a real run
// later still delivers the item.
func (s *Service) commit(ctx context.Context, item *entity.ProcessedItem) {
	if s.dryRun {
		slog.Info("[dry-run] skipping ledger commit", slog.String("item_id", item.ItemID))
		return
	}

	published := item.PublishDate
	if err := s.ledger.Record(ctx, item.ItemID, string(item.Kind), &published); err != nil {
		slog.Error("ledger commit failed",
			slog.String("item_id", item.ItemID),
			slog.Any("error", err))
	}
}
