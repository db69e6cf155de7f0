package relay

import (
	"fmt"
	"strings"
)

// composeMessage builds the outbound chat message:
//
//	{tag}
//	TLDR:
//	- bullet
//	...
//
//	Original: {url}
//	Discussion: {discussionURL}   (only when distinct from url)
func composeMessage(tag string, bullets []string, url, discussionURL string) string {
	var b strings.Builder
	b.WriteString(tag)
	b.WriteString("\nTLDR:\n")
	for i, bullet := range bullets {
		if i == maxMessageBullets {
			break
		}
		fmt.Fprintf(&b, "- %s\n", bullet)
	}
	fmt.Fprintf(&b, "\nOriginal: %s", url)
	if discussionURL != "" && discussionURL != url {
		fmt.Fprintf(&b, "\nDiscussion: %s", discussionURL)
	}
	return b.String()
}
