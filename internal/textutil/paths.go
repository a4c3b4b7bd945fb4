package textutil

import (
	"net/url"
	"strings"
	"unicode"
)

// ParseDroppedPaths splits a line typed by a terminal when files are dropped
// onto it. Terminals either single-quote each path, double-quote it, escape
// spaces with backslashes, or emit file:// URIs; all four forms are accepted.
// An unterminated quote consumes the rest of the line.
func ParseDroppedPaths(line string) []string {
	var (
		out     []string
		current strings.Builder
		quote   rune
		escaped bool
		started bool
	)
	flush := func() {
		if started {
			out = append(out, fromFileURI(current.String()))
		}
		current.Reset()
		started = false
	}

	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			if r == '\\' && quote == '"' {
				escaped = true
				continue
			}
			current.WriteRune(r)
		case r == '\\':
			escaped = true
			started = true
		case r == '\'' || r == '"':
			quote = r
			started = true
		case unicode.IsSpace(r):
			flush()
		default:
			current.WriteRune(r)
			started = true
		}
	}
	flush()
	return out
}

func fromFileURI(value string) string {
	if !strings.HasPrefix(value, "file://") {
		return value
	}
	parsed, err := url.Parse(value)
	if err != nil || parsed.Path == "" {
		return value
	}
	return parsed.Path
}
