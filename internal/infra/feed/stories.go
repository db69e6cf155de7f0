package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"newsrelay/internal/domain/entity"
	"newsrelay/internal/resilience/retry"
)

// DefaultStoryIndexURL is the public Hacker News API base.
const DefaultStoryIndexURL = "https://hacker-news.firebaseio.com/v0"

// StoryClient fetches the newest stories from the public story index.
type StoryClient struct {
	baseURL     string
	client      *http.Client
	retryConfig retry.Config
}

// NewStoryClient creates a StoryClient against the given base URL. An empty
// base URL selects the public index.
func NewStoryClient(baseURL string, client *http.Client) *StoryClient {
	if baseURL == "" {
		baseURL = DefaultStoryIndexURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &StoryClient{
		baseURL:     baseURL,
		client:      client,
		retryConfig: retry.RelayConfig(),
	}
}

// Newest returns up to limit of the newest stories that carry a resolvable
// URL. Per-story fetch failures are logged and skipped.
func (c *StoryClient) Newest(ctx context.Context, limit int) ([]entity.Story, error) {
	var ids []int64
	err := retry.WithBackoff(ctx, c.retryConfig, func() error {
		return c.getJSON(ctx, "/newstories.json", &ids)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch newest story ids: %w", err)
	}

	if len(ids) > limit {
		ids = ids[:limit]
	}

	stories := make([]entity.Story, 0, len(ids))
	for _, id := range ids {
		story, err := c.fetchStory(ctx, id)
		if err != nil {
			slog.Warn("failed to fetch story",
				slog.Int64("story_id", id),
				slog.Any("error", err))
			continue
		}
		if story == nil || story.URL == "" {
			continue
		}
		stories = append(stories, *story)
	}

	slog.Info("story index fetched", slog.Int("stories", len(stories)))
	return stories, nil
}

// DiscussionURL returns the index discussion page for a story.
func (c *StoryClient) DiscussionURL(id int64) string {
	return fmt.Sprintf("https://news.ycombinator.com/item?id=%d", id)
}

func (c *StoryClient) fetchStory(ctx context.Context, id int64) (*entity.Story, error) {
	var raw struct {
		ID          int64  `json:"id"`
		Type        string `json:"type"`
		Title       string `json:"title"`
		URL         string `json:"url"`
		By          string `json:"by"`
		Time        int64  `json:"time"`
		Score       int    `json:"score"`
		Descendants int    `json:"descendants"`
	}

	err := retry.WithBackoff(ctx, c.retryConfig, func() error {
		return c.getJSON(ctx, fmt.Sprintf("/item/%d.json", id), &raw)
	})
	if err != nil {
		return nil, err
	}

	if raw.ID == 0 || raw.Type != "story" {
		return nil, nil
	}

	return &entity.Story{
		ID:          raw.ID,
		Title:       raw.Title,
		URL:         raw.URL,
		By:          raw.By,
		Time:        raw.Time,
		Score:       raw.Score,
		Descendants: raw.Descendants,
	}, nil
}

func (c *StoryClient) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
