// Package entity defines the core domain entities for the relay pipeline.
// It contains the normalized feed entry, the processed item handed to delivery,
// and the story record surfaced by the story-index client.
package entity

import (
	"strconv"
	"strings"
	"time"
)

// SourceKind identifies which ingestion phase an entry belongs to.
type SourceKind string

const (
	KindResearch   SourceKind = "research"
	KindNewsletter SourceKind = "newsletter"
	KindStory      SourceKind = "story"
)

// Header returns the hashtag header used in delivery messages for this kind.
func (k SourceKind) Header() string {
	switch k {
	case KindResearch:
		return "#Research"
	case KindNewsletter:
		return "#Newsletter"
	default:
		return "#HackerNews"
	}
}

// SourceEntry is a feed item normalized at the ingestion boundary.
// All downstream logic operates on this type only; raw feed records never
// leave the aggregator.
type SourceEntry struct {
	GUID        string
	Title       string
	Link        string
	Published   *time.Time
	RawContent  string
	Summary     string
	Description string
	SourceURL   string
	Kind        SourceKind
}

// ItemID derives the stable dedup key: first non-empty of GUID, Link, Title.
// An empty result means the entry is undeliverable and must be dropped.
func (e *SourceEntry) ItemID() string {
	switch {
	case e.GUID != "":
		return e.GUID
	case e.Link != "":
		return e.Link
	default:
		return e.Title
	}
}

// Content returns the entry's own text: first non-empty of raw content,
// summary, description.
func (e *SourceEntry) Content() string {
	switch {
	case e.RawContent != "":
		return e.RawContent
	case e.Summary != "":
		return e.Summary
	default:
		return e.Description
	}
}

// FilterText is the haystack the keyword filter matches against.
func (e *SourceEntry) FilterText() string {
	return strings.ToLower(e.Title + " " + e.Summary + " " + e.Description)
}

// Slug derives a short identifier for filenames: the last path segment of the
// link, or the title when no link exists, truncated to 80 runes.
func (e *SourceEntry) Slug() string {
	if e.Link != "" {
		trimmed := strings.TrimRight(e.Link, "/")
		if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
			trimmed = trimmed[idx+1:]
		}
		return truncateRunes(trimmed, 80)
	}
	if s := truncateRunes(e.Title, 80); s != "" {
		return s
	}
	return "item"
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// ProcessedItem is an entry that passed all filters, carrying translated
// content. It lives only for the duration of one delivery attempt.
type ProcessedItem struct {
	ItemID        string
	Slug          string
	Title         string
	URL           string
	PublishDate   time.Time
	Content       string
	Kind          SourceKind
	DiscussionURL string
	SourceURL     string
}

// Story is a record from the public story index. Only stories with a
// resolvable URL are surfaced to the pipeline.
type Story struct {
	ID          int64
	Title       string
	URL         string
	By          string
	Time        int64
	Score       int
	Descendants int
}

// Entry converts a story into a normalized SourceEntry. URL-less stories get
// the index discussion page as their link, matching delivery expectations.
func (s *Story) Entry(discussionURL string) SourceEntry {
	link := s.URL
	if link == "" {
		link = discussionURL
	}
	published := time.Unix(s.Time, 0).UTC()
	return SourceEntry{
		GUID:      storyID(s.ID),
		Title:     s.Title,
		Link:      link,
		Published: &published,
		SourceURL: "hacker-news",
		Kind:      KindStory,
	}
}

func storyID(id int64) string {
	return "hn_" + strconv.FormatInt(id, 10)
}
