package urls

import (
	"regexp"
	"sort"
)

// Slack wraps links as <url> or <url|label>; plain URLs appear as-is.
var (
	wrappedURLPattern = regexp.MustCompile(`<(https?://[^|>]+)(?:\|[^>]*)?>`)
	plainURLPattern   = regexp.MustCompile(`https?://[^\s<>]+`)
)

// Extracted holds the URLs referenced by one message. Primary is the first
// URL in document order, Secondary the rest, deduplicated.
type Extracted struct {
	Primary   string
	Secondary []string
}

func (e Extracted) Empty() bool {
	return e.Primary == ""
}

// All returns primary followed by secondary URLs.
func (e Extracted) All() []string {
	if e.Empty() {
		return nil
	}
	all := make([]string, 0, 1+len(e.Secondary))
	all = append(all, e.Primary)
	all = append(all, e.Secondary...)
	return all
}

type urlMatch struct {
	start int
	url   string
}

// Extract parses raw message text into an ordered, deduplicated URL set.
// Wrapped-notation matches are located first; plain matches starting inside
// a wrapped span are dropped so a URL is never counted twice. Remaining
// matches are merged in document order and deduplicated by exact string,
// keeping the first occurrence.
func Extract(text string) Extracted {
	if text == "" {
		return Extracted{}
	}

	var matches []urlMatch
	var wrappedSpans [][2]int

	for _, m := range wrappedURLPattern.FindAllStringSubmatchIndex(text, -1) {
		wrappedSpans = append(wrappedSpans, [2]int{m[0], m[1]})
		matches = append(matches, urlMatch{start: m[0], url: text[m[2]:m[3]]})
	}

	for _, m := range plainURLPattern.FindAllStringIndex(text, -1) {
		if insideSpan(m[0], wrappedSpans) {
			continue
		}
		matches = append(matches, urlMatch{start: m[0], url: text[m[0]:m[1]]})
	}

	if len(matches) == 0 {
		return Extracted{}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].start < matches[j].start
	})

	seen := make(map[string]struct{}, len(matches))
	ordered := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m.url]; ok {
			continue
		}
		seen[m.url] = struct{}{}
		ordered = append(ordered, m.url)
	}

	return Extracted{Primary: ordered[0], Secondary: ordered[1:]}
}

func insideSpan(pos int, spans [][2]int) bool {
	for _, s := range spans {
		if pos >= s[0] && pos < s[1] {
			return true
		}
	}
	return false
}
