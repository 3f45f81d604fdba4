package tools

import (
	"regexp"
	"strings"
)

const defaultGlob = "**/*"

// compileGlob translates a slash-separated glob into an anchored regexp.
// A "**" segment spans any number of path segments, including none; "*"
// and "?" never cross a separator. Everything else is literal.
func compileGlob(glob string) (*regexp.Regexp, error) {
	normalized := strings.ReplaceAll(glob, "\\", "/")
	if strings.TrimSpace(normalized) == "" {
		normalized = defaultGlob
	}
	parts := strings.Split(normalized, "/")

	var b strings.Builder
	b.WriteString("^")
	for i, part := range parts {
		last := i == len(parts)-1
		if part == "**" {
			if last {
				b.WriteString(".*")
			} else {
				b.WriteString("(?:.*/)?")
			}
			continue
		}
		for _, r := range part {
			switch r {
			case '*':
				b.WriteString("[^/]*")
			case '?':
				b.WriteString("[^/]")
			default:
				b.WriteString(regexp.QuoteMeta(string(r)))
			}
		}
		if !last {
			b.WriteString("/")
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}
