package threads

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxTextLength is the maximum character count for a Threads text post.
const MaxTextLength = 500

// ErrEmptyText is returned for text that is empty or only whitespace.
var ErrEmptyText = errors.New("text is empty")

// FitsInLimit checks if text fits within the post limit.
func FitsInLimit(text string) bool {
	return utf8.RuneCountInString(text) <= MaxTextLength
}

// ValidateText rejects text the API would refuse before anything is stored.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	if !FitsInLimit(text) {
		return fmt.Errorf("text has %d characters, limit is %d", utf8.RuneCountInString(text), MaxTextLength)
	}
	return nil
}

// Truncate shortens text to MaxTextLength, cutting at a word boundary when
// one is close enough and appending an ellipsis.
func Truncate(text string) string {
	if FitsInLimit(text) {
		return text
	}

	available := MaxTextLength - 3
	truncated := string([]rune(text)[:available])

	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > len(truncated)/2 {
		truncated = truncated[:lastSpace]
	}

	return strings.TrimRight(truncated, " .,;:!?") + "..."
}
