package entity

import (
	"strings"
	"testing"
	"time"
)

func TestItemIDPrecedence(t *testing.T) {
	tests := []struct {
		name  string
		entry SourceEntry
		want  string
	}{
		{
			name:  "guid wins",
			entry: SourceEntry{GUID: "g", Link: "l", Title: "t"},
			want:  "g",
		},
		{
			name:  "link when no guid",
			entry: SourceEntry{Link: "l", Title: "t"},
			want:  "l",
		},
		{
			name:  "title as last resort",
			entry: SourceEntry{Title: "t"},
			want:  "t",
		},
		{
			name:  "empty entry is undeliverable",
			entry: SourceEntry{},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.ItemID(); got != tt.want {
				t.Errorf("ItemID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContentPrecedence(t *testing.T) {
	entry := SourceEntry{RawContent: "raw", Summary: "sum", Description: "desc"}
	if got := entry.Content(); got != "raw" {
		t.Errorf("Content() = %q, want raw content", got)
	}

	entry.RawContent = ""
	if got := entry.Content(); got != "sum" {
		t.Errorf("Content() = %q, want summary", got)
	}

	entry.Summary = ""
	if got := entry.Content(); got != "desc" {
		t.Errorf("Content() = %q, want description", got)
	}
}

func TestFilterTextIsLowercased(t *testing.T) {
	entry := SourceEntry{Title: "BIG Title", Summary: "About DeFi", Description: "Weekly"}
	got := entry.FilterText()
	if got != strings.ToLower(got) {
		t.Errorf("FilterText() is not lowercased: %q", got)
	}
	if !strings.Contains(got, "defi") {
		t.Errorf("FilterText() missing summary text: %q", got)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		name  string
		entry SourceEntry
		want  string
	}{
		{
			name:  "last path segment of link",
			entry: SourceEntry{Link: "https://x.substack.com/p/state-of-defi"},
			want:  "state-of-defi",
		},
		{
			name:  "trailing slash stripped",
			entry: SourceEntry{Link: "https://x.substack.com/p/state-of-defi/"},
			want:  "state-of-defi",
		},
		{
			name:  "title when no link",
			entry: SourceEntry{Title: "Some Title"},
			want:  "Some Title",
		},
		{
			name:  "empty entry",
			entry: SourceEntry{},
			want:  "item",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.Slug(); got != tt.want {
				t.Errorf("Slug() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSlugTruncatesLongSegments(t *testing.T) {
	entry := SourceEntry{Link: "https://example.com/" + strings.Repeat("a", 120)}
	if got := entry.Slug(); len([]rune(got)) != 80 {
		t.Errorf("Slug() length = %d runes, want 80", len([]rune(got)))
	}
}

func TestKindHeader(t *testing.T) {
	if got := KindResearch.Header(); got != "#Research" {
		t.Errorf("research header = %q", got)
	}
	if got := KindNewsletter.Header(); got != "#Newsletter" {
		t.Errorf("newsletter header = %q", got)
	}
	if got := KindStory.Header(); got != "#HackerNews" {
		t.Errorf("story header = %q", got)
	}
}

func TestStoryEntry(t *testing.T) {
	story := Story{
		ID:    42,
		Title: "Show HN: thing",
		URL:   "https://example.com/thing",
		Time:  1704067200, // 2024-01-01T00:00:00Z
	}

	entry := story.Entry("https://news.ycombinator.com/item?id=42")

	if entry.GUID != "hn_42" {
		t.Errorf("GUID = %q, want hn_42", entry.GUID)
	}
	if entry.Link != "https://example.com/thing" {
		t.Errorf("Link = %q", entry.Link)
	}
	if entry.Kind != KindStory {
		t.Errorf("Kind = %q", entry.Kind)
	}
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if entry.Published == nil || !entry.Published.Equal(want) {
		t.Errorf("Published = %v, want %v", entry.Published, want)
	}
}

func TestStoryEntryWithoutURLUsesDiscussion(t *testing.T) {
	story := Story{ID: 7, Title: "Ask HN: question", Time: 1704067200}
	entry := story.Entry("https://news.ycombinator.com/item?id=7")
	if entry.Link != "https://news.ycombinator.com/item?id=7" {
		t.Errorf("Link = %q, want discussion page", entry.Link)
	}
}
