// Package textproc post-processes raw OCR output: whitespace normalization
// and optional language detection.
package textproc

import (
	"regexp"
	"strings"
)

var (
	spaceRuns = regexp.MustCompile(`[ \t]+`)
	blankRuns = regexp.MustCompile(`\n{3,}`)
)

// Normalize collapses runs of spaces and tabs into single spaces, strips
// leading/trailing whitespace from every line, caps consecutive blank lines
// at one, and trims the result. Normalize is idempotent.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = spaceRuns.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")

	text = blankRuns.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
