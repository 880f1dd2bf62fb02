package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var htmlPolicy = bluemonday.StrictPolicy()

const maxFieldLength = 500

// SanitizeString trims whitespace, strips null bytes and caps the length.
// Applied to every caller-supplied free-text field before it is persisted
// (descriptions, code meta, user agent strings).
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")
	if len(input) > maxFieldLength {
		input = input[:maxFieldLength]
	}
	return input
}

// SanitizeHTML removes all HTML tags.
func SanitizeHTML(input string) string {
	return htmlPolicy.Sanitize(input)
}

// SanitizeText is the combined pass used for persisted audit fields.
func SanitizeText(input string) string {
	return SanitizeString(SanitizeHTML(input))
}
