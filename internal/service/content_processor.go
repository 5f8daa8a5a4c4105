package service

import "strings"

const (
	// MaxContentLength is the number of characters of source material kept for a prompt.
	MaxContentLength = 10000
	// TruncationMarker is appended to source material cut at MaxContentLength.
	TruncationMarker = "..."
)

// ProcessContent collapses whitespace runs to single spaces, trims the ends and truncates the
// result to MaxContentLength characters, appending TruncationMarker when it had to cut.
func ProcessContent(text string) string {
	normalized := strings.Join(strings.Fields(text), " ")

	runes := []rune(normalized)
	if len(runes) <= MaxContentLength {
		return normalized
	}
	return string(runes[:MaxContentLength]) + TruncationMarker
}
