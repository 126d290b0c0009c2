package analysis

import (
	"strings"
	"unicode/utf8"
)

// suggestionKeywords marks report lines that carry actionable advice.
var suggestionKeywords = []string{"öneri", "tavsiye", "gelişim", "çalış"}

const (
	// minSuggestionRunes filters out bare headings like "Öneriler:".
	minSuggestionRunes = 10
	maxSuggestions     = 5
)

// ExtractSuggestions pulls actionable suggestion lines out of a final
// report. A line qualifies when it mentions one of the advice keywords and
// is long enough to stand alone. At most five lines are kept, in their
// original order.
func ExtractSuggestions(finalText string) []string {
	var suggestions []string

	for _, line := range strings.Split(finalText, "\n") {
		line = strings.TrimSpace(line)
		if !containsKeyword(strings.ToLower(line)) {
			continue
		}
		if utf8.RuneCountInString(line) <= minSuggestionRunes {
			continue
		}
		suggestions = append(suggestions, line)
		if len(suggestions) == maxSuggestions {
			break
		}
	}

	return suggestions
}

func containsKeyword(line string) bool {
	for _, kw := range suggestionKeywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}
