// ABOUTME: Inbound message validation and outbound reply truncation.

package chat

import (
	"regexp"
	"strings"
)

const (
	minMessageLen = 2
	maxMessageLen = 500

	// Replies longer than maxReplyLen are cut to truncateAt and marked.
	maxReplyLen = 1000
	truncateAt  = 950
)

var harmfulPatterns = []*regexp.Regexp{
	regexp.MustCompile(`<script`),
	regexp.MustCompile(`javascript:`),
	regexp.MustCompile(`eval\(`),
	regexp.MustCompile(`exec\(`),
}

// ValidInput reports whether a message is worth classifying: non-trivial
// length and free of script-injection markers.
func ValidInput(message string) bool {
	if len(strings.TrimSpace(message)) < minMessageLen || len(message) > maxMessageLen {
		return false
	}
	lower := strings.ToLower(message)
	for _, p := range harmfulPatterns {
		if p.MatchString(lower) {
			return false
		}
	}
	return true
}

// TruncateReply bounds a reply for chat display.
func TruncateReply(reply string) string {
	if len(reply) > maxReplyLen {
		return reply[:truncateAt] + "... (truncated)"
	}
	return reply
}
