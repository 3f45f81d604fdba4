package util

import (
	"strings"
	"unicode/utf8"
)

// TruncateBytes trims a string to maxBytes if needed.
func TruncateBytes(input string, maxBytes int) (string, bool) {
	if maxBytes <= 0 || len(input) <= maxBytes {
		return input, false
	}
	return input[:maxBytes], true
}

// TruncateRunes keeps the first maxRunes characters of input.
func TruncateRunes(input string, maxRunes int) (string, bool) {
	if maxRunes < 0 || utf8.RuneCountInString(input) <= maxRunes {
		return input, false
	}
	count := 0
	for i := range input {
		if count == maxRunes {
			return input[:i], true
		}
		count++
	}
	return input, false
}

// Preview returns a short preview of text by limiting lines and bytes.
func Preview(text string, maxLines int, maxBytes int) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	out := strings.Join(lines, "\n")
	if trimmed, did := TruncateBytes(out, maxBytes); did {
		for !utf8.ValidString(trimmed) && trimmed != "" {
			trimmed = trimmed[:len(trimmed)-1]
		}
		return trimmed + "..."
	}
	return out
}
