// Package text provides small text-processing helpers shared by the
// translation engines.
package text

import "strings"

// CountRunes counts Unicode characters in the given text. Translated output
// is mostly Cyrillic, so byte length would overstate it roughly twofold.
func CountRunes(text string) int {
	return len([]rune(text))
}

// SplitSentences splits text on '.' and returns the trimmed non-empty
// segments. Good enough for stub summaries; not a linguistic sentence
// splitter.
func SplitSentences(text string) []string {
	var sentences []string
	for _, segment := range strings.Split(text, ".") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		sentences = append(sentences, segment)
	}
	return sentences
}
