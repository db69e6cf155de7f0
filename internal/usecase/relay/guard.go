package relay

import "strings"

// failureSignatures are boilerplate phrases that show up when extraction or
// translation degraded instead of producing article text (cookie walls, auth
// walls, stale-page prompts). Matching is case-insensitive against the
// concatenated bullet list.
var failureSignatures = []string{
	"please refresh",
	"enable javascript",
	"javascript is disabled",
	"access denied",
	"verify you are human",
	"are you a robot",
	"accept cookies",
	"subscribe to continue reading",
	"включите javascript",
	"доступ запрещён",
	"обновите страницу",
}

// hasFailureSignature reports whether the bullet list carries a known
// degradation phrase and should not be delivered.
func hasFailureSignature(bullets []string) bool {
	haystack := strings.ToLower(strings.Join(bullets, "\n"))
	for _, phrase := range failureSignatures {
		if strings.Contains(haystack, phrase) {
			return true
		}
	}
	return false
}
