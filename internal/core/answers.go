package core

import "strings"

// MatchesAnswer reports whether a chat message hits any accepted answer.
// Comparison is whitespace-trimmed and case-insensitive.
func MatchesAnswer(answers []string, message string) bool {
	clean := strings.TrimSpace(message)
	if clean == "" {
		return false
	}
	for _, a := range answers {
		if strings.EqualFold(clean, strings.TrimSpace(a)) {
			return true
		}
	}
	return false
}
