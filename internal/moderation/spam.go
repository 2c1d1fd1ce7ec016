// Package moderation implements the comment/article moderation state
// machines and the keyword spam classifier.
package moderation

import "strings"

// spamKeywords is the fixed bait-word list the classifier scores
// against. Matching is case-insensitive substring containment.
var spamKeywords = []string{"buy", "discount", "free", "earn", "credit"}

// spamThreshold is the number of distinct keyword hits that flags a
// comment as spam at creation.
const spamThreshold = 2

// SpamScore returns how many distinct spam keywords appear in content.
func SpamScore(content string) int {
	lowered := strings.ToLower(content)
	score := 0
	for _, kw := range spamKeywords {
		if strings.Contains(lowered, kw) {
			score++
		}
	}
	return score
}

// ClassifySpam reports whether content should be created with spam
// status instead of pending. It runs exactly once, synchronously,
// before the comment is persisted.
func ClassifySpam(content string) bool {
	return SpamScore(content) >= spamThreshold
}
