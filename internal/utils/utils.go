package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GetMaskedWord converts word to underscores for display, keeping the
// letters whose rune index is in revealed. Spaces are preserved.
// "gato" with nothing revealed renders as "_ _ _ _".
func GetMaskedWord(word string, revealed map[int]bool) string {
	if word == "" {
		return ""
	}

	runes := []rune(word)
	masked := make([]string, len(runes))
	for i, r := range runes {
		switch {
		case r == ' ':
			masked[i] = " "
		case revealed[i]:
			masked[i] = string(r)
		default:
			masked[i] = "_"
		}
	}

	return strings.Join(masked, " ")
}

// WordLength counts letters in runes so accented words report correctly.
func WordLength(word string) int {
	return len([]rune(word))
}

// NormalizeGuess lowercases and trims a guess or a word for comparison.
func NormalizeGuess(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// GenerateID returns the first n hex characters of a random UUID.
func GenerateID(n int) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n <= 0 || n > len(id) {
		return id
	}
	return id[:n]
}

// CleanWordList trims every entry and drops blanks and duplicates,
// preserving first-seen order.
func CleanWordList(words []string) []string {
	seen := make(map[string]bool, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		key := NormalizeGuess(w)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, w)
	}
	return out
}
