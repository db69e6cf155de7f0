// Package feed provides the ingestion boundary: RSS/Atom feed fetching via
// gofeed and the public story-index client. Raw feed records are normalized
// into entity.SourceEntry here and nowhere else.
package feed

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"

	"newsrelay/internal/domain/entity"
	"newsrelay/internal/resilience/circuitbreaker"
	"newsrelay/internal/resilience/retry"
)

// RSSFetcher fetches and normalizes RSS/Atom feeds using the gofeed library.
// It includes circuit breaker and retry logic for improved reliability.
type RSSFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewRSSFetcher creates a new RSSFetcher with the given HTTP client.
func NewRSSFetcher(client *http.Client) *RSSFetcher {
	return &RSSFetcher{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		retryConfig:    retry.FeedFetchConfig(),
	}
}

// Fetch retrieves and parses a feed, returning entries normalized for the
// given source kind, in feed order.
func (f *RSSFetcher) Fetch(ctx context.Context, feedURL string, kind entity.SourceKind) ([]entity.SourceEntry, error) {
	var entries []entity.SourceEntry

	retryErr := retry.WithBackoff(ctx, f.retryConfig, func() error {
		cbResult, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx, feedURL, kind)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("feed fetch circuit breaker open, request rejected",
					slog.String("service", "feed-fetch"),
					slog.String("url", feedURL),
					slog.String("state", f.circuitBreaker.State().String()))
			}
			return err
		}

		entries = cbResult.([]entity.SourceEntry)
		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	return entries, nil
}

// doFetch performs the actual feed fetch without retry or circuit breaker.
func (f *RSSFetcher) doFetch(ctx context.Context, feedURL string, kind entity.SourceKind) ([]entity.SourceEntry, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = "NewsRelayBot"
	fp.Client = f.client

	parsed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]entity.SourceEntry, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		entries = append(entries, entity.SourceEntry{
			GUID:        it.GUID,
			Title:       it.Title,
			Link:        it.Link,
			Published:   resolvePublishDate(it),
			RawContent:  it.Content,
			Summary:     it.Description,
			Description: it.Description,
			SourceURL:   feedURL,
			Kind:        kind,
		})
	}

	return entries, nil
}

// resolvePublishDate tries, in order: structured published timestamp,
// structured updated timestamp, textual RFC-822 published string, textual
// RFC-822 updated string. First success wins; otherwise nil.
func resolvePublishDate(it *gofeed.Item) *time.Time {
	if it.PublishedParsed != nil {
		t := it.PublishedParsed.UTC()
		return &t
	}
	if it.UpdatedParsed != nil {
		t := it.UpdatedParsed.UTC()
		return &t
	}
	if t, ok := parseRFC822(it.Published); ok {
		return &t
	}
	if t, ok := parseRFC822(it.Updated); ok {
		return &t
	}
	return nil
}

func parseRFC822(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := mail.ParseDate(value)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// FetchAll aggregates entries across a list of feed URLs in order. A fetch
// failure for one URL is logged and yields nothing for that URL; it never
// aborts aggregation for the remaining sources.
func (f *RSSFetcher) FetchAll(ctx context.Context, feedURLs []string, kind entity.SourceKind) []entity.SourceEntry {
	var all []entity.SourceEntry
	for _, feedURL := range feedURLs {
		entries, err := f.Fetch(ctx, feedURL, kind)
		if err != nil {
			slog.Warn("failed to fetch feed",
				slog.String("feed_url", feedURL),
				slog.Any("error", err))
			continue
		}
		if len(entries) == 0 {
			slog.Warn("feed returned no entries", slog.String("feed_url", feedURL))
			continue
		}
		if first := entries[0].Published; first != nil {
			slog.Info("feed fetched",
				slog.String("feed_url", feedURL),
				slog.Int("entries", len(entries)),
				slog.Time("latest", *first))
		} else {
			slog.Info("feed fetched",
				slog.String("feed_url", feedURL),
				slog.Int("entries", len(entries)))
		}
		all = append(all, entries...)
	}
	return all
}
