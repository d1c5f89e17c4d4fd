package conv

import "strings"

// SplitMessage cuts text into pieces of at most maxLen bytes, preferring
// newline boundaries in the latter two thirds of each piece.
func SplitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var parts []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			parts = append(parts, text)
			break
		}

		cut := maxLen
		if idx := strings.LastIndex(text[:maxLen], "\n"); idx > maxLen/3 {
			cut = idx
		}

		parts = append(parts, text[:cut])
		text = strings.TrimSpace(text[cut:])
	}
	return parts
}
