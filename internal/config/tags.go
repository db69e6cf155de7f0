package config

import "strings"

// TagRule maps a domain substring to the hashtag used in delivery headers.
type TagRule struct {
	DomainSubstring string
	Tag             string
}

// DefaultUnknownTag is returned when no rule matches a source URL.
const DefaultUnknownTag = "#Unknown"

// sourceTags is the static tag table, loaded once and never mutated. Order
// matters: the first substring match wins.
var sourceTags = []TagRule{
	{"messari.substack.com", "#Messari"},
	{"anchor.fm", "#AnchorFm"},
	{"defi0xjeff.substack.com", "#DeFi0xJeff"},
	{"degencamp.substack.com", "#DegenCamp"},
	{"no-bs-ai.substack.com", "#NoBSAI"},
	{"a16zcrypto.substack.com", "#a16zCrypto"},
	{"nystrom.substack.com", "#Nystrom"},
	{"cryptocomresearch.substack.com", "#CryptoCom"},
	{"hacker-news", "#HackerNews"},
}

// SourceTag returns the hashtag for a source URL, scanning the table in
// order and falling back to DefaultUnknownTag.
func SourceTag(sourceURL string) string {
	lowered := strings.ToLower(sourceURL)
	for _, rule := range sourceTags {
		if strings.Contains(lowered, rule.DomainSubstring) {
			return rule.Tag
		}
	}
	return DefaultUnknownTag
}
