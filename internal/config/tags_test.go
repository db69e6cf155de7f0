package config

import "testing"

func TestSourceTag(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"degencamp feed", "https://degencamp.substack.com/feed", "#DegenCamp"},
		{"messari feed", "https://messari.substack.com/feed", "#Messari"},
		{"case insensitive", "https://DegenCamp.Substack.com/feed", "#DegenCamp"},
		{"story index", "hacker-news", "#HackerNews"},
		{"unmatched domain", "https://example.com/rss", DefaultUnknownTag},
		{"empty", "", DefaultUnknownTag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SourceTag(tt.url); got != tt.want {
				t.Errorf("SourceTag(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
