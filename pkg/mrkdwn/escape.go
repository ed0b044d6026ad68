package mrkdwn

import (
	"regexp"
	"strings"
)

// Fenced code blocks and inline code are protected from escaping.
var codeSpanPattern = regexp.MustCompile("(?s)```.*?```|`[^`\n]+`")

// EscapeSpecials escapes &, < and > outside protected spans. Link tokens
// of the form <url> or <url|label> keep the URL verbatim; only the label
// is escaped. Code spans pass through untouched.
func EscapeSpecials(s string) string {
	var b strings.Builder
	last := 0
	for _, span := range codeSpanPattern.FindAllStringIndex(s, -1) {
		b.WriteString(escapeOutsideCode(s[last:span[0]]))
		b.WriteString(s[span[0]:span[1]])
		last = span[1]
	}
	b.WriteString(escapeOutsideCode(s[last:]))
	return b.String()
}

func escapeOutsideCode(s string) string {
	var b strings.Builder
	pos := 0

	for pos < len(s) {
		open := strings.Index(s[pos:], "<")
		if open == -1 {
			b.WriteString(escapeText(s[pos:]))
			break
		}
		open += pos
		b.WriteString(escapeText(s[pos:open]))

		pipe := indexFrom(s, "|", open+1)
		closing := indexFrom(s, ">", open+1)

		switch {
		case pipe != -1 && closing != -1 && pipe < closing:
			// <url|label> form: the label itself may contain > or <, so the
			// terminator is the last > before the next link opener.
			end := nextLinkOpen(s, pipe+1)
			final := strings.LastIndex(s[pipe+1:end], ">")
			if final >= 0 {
				final += pipe + 1
				url := s[open+1 : pipe]
				label := s[pipe+1 : final]
				b.WriteString("<" + url + "|" + escapeText(label) + ">")
				pos = final + 1
			} else {
				b.WriteString(escapeText("<"))
				pos = open + 1
			}
		case closing != -1:
			inner := s[open+1 : closing]
			if isLinkTarget(inner) {
				// <url> form passes through unchanged.
				b.WriteString(s[open : closing+1])
				pos = closing + 1
			} else {
				b.WriteString(escapeText("<"))
				pos = open + 1
			}
		default:
			b.WriteString(escapeText("<"))
			pos = open + 1
		}
	}

	return b.String()
}

// nextLinkOpen finds where the next wrapped-link token starts, or len(s).
func nextLinkOpen(s string, from int) int {
	for {
		i := indexFrom(s, "<", from)
		if i == -1 {
			return len(s)
		}
		if isLinkTarget(s[i+1:]) {
			return i
		}
		from = i + 1
	}
}

func isLinkTarget(s string) bool {
	return strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "mailto:")
}

func indexFrom(s, substr string, from int) int {
	if from >= len(s) {
		return -1
	}
	i := strings.Index(s[from:], substr)
	if i == -1 {
		return -1
	}
	return i + from
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	return strings.ReplaceAll(s, ">", "&gt;")
}
