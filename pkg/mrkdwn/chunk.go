package mrkdwn

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultChunkLimit is the Slack section block text ceiling.
const DefaultChunkLimit = 3000

const (
	fenceMarker = "```"
	fenceReopen = "```\n" // injected at the start of a chunk continuing a code block
	fenceClose  = "\n```" // injected at the end of a chunk that splits a code block
)

var linkTokenPattern = regexp.MustCompile(`<https?://[^>]+>`)

var chunkEntities = []string{"&amp;", "&lt;", "&gt;"}

// Split cuts text into chunks of at most limit characters without breaking
// a fenced code block, a <url|label> link token, or a character entity.
// When a boundary crosses a fence the block is closed at the end of the
// chunk and reopened at the start of the next; stripping those injected
// markers from the concatenation reproduces the input exactly.
func Split(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultChunkLimit
	}
	if len(text) <= limit {
		return []string{text}
	}

	fences := fenceRanges(text)
	links := linkTokenPattern.FindAllStringIndex(text, -1)

	var chunks []string
	cursor := 0
	insideCode := false

	for cursor < len(text) {
		prefix := ""
		effMax := limit
		if insideCode {
			// Space for the reopened fence at the head of this chunk.
			prefix = fenceReopen
			effMax = limit - len(prefix)
		}

		if len(text)-cursor <= effMax {
			chunks = append(chunks, prefix+text[cursor:])
			break
		}

		// Prefer the last newline at or before the limit that is not
		// inside a fenced block.
		newlineAt := -1
		for p := cursor + effMax - 1; p > cursor; p-- {
			if text[p] != '\n' || within(p, fences) {
				continue
			}
			newlineAt = p + 1
			break
		}
		if newlineAt != -1 {
			chunks = append(chunks, prefix+text[cursor:newlineAt])
			cursor = newlineAt
			insideCode = false
			continue
		}

		// Forced split at the effective limit.
		splitAt := cursor + effMax
		if within(splitAt, fences) {
			splitAt -= len(fenceClose)
		}
		if s, e, ok := spanAt(splitAt, links); ok {
			if s > cursor {
				splitAt = s
			} else {
				// The link token starts the chunk; extending past its end
				// beats truncating the token.
				splitAt = e
			}
		}
		if q := entityStart(text, splitAt); q > cursor {
			splitAt = q
		}
		if splitAt <= cursor {
			splitAt = cursor + effMax
		}
		// A forced split must not shear a multibyte rune.
		if r := runeFloor(text, splitAt); r > cursor {
			splitAt = r
		} else {
			for splitAt < len(text) && !utf8.RuneStart(text[splitAt]) {
				splitAt++
			}
		}

		// Boundary adjustments can move the split out of the fenced range.
		stillInCode := within(splitAt, fences)
		chunk := prefix + text[cursor:splitAt]
		if stillInCode {
			chunk += fenceClose
		}
		chunks = append(chunks, chunk)
		cursor = splitAt
		insideCode = stillInCode
	}

	return chunks
}

// fenceRanges pairs triple-backtick markers greedily left to right. Each
// range spans from the opening marker through the end of the closing one;
// an unterminated fence extends to the end of the text.
func fenceRanges(text string) [][2]int {
	var ranges [][2]int
	pos := 0
	for {
		open := strings.Index(text[pos:], fenceMarker)
		if open == -1 {
			break
		}
		open += pos

		next := strings.Index(text[open+len(fenceMarker):], fenceMarker)
		if next == -1 {
			ranges = append(ranges, [2]int{open, len(text)})
			break
		}
		closeEnd := open + len(fenceMarker) + next + len(fenceMarker)
		ranges = append(ranges, [2]int{open, closeEnd})
		pos = closeEnd
	}
	return ranges
}

// within reports whether pos falls strictly inside one of the ranges; the
// range boundaries themselves are legal split points.
func within(pos int, ranges [][2]int) bool {
	for _, r := range ranges {
		if r[0] < pos && pos < r[1] {
			return true
		}
	}
	return false
}

func spanAt(pos int, spans [][]int) (start, end int, ok bool) {
	for _, s := range spans {
		if s[0] < pos && pos < s[1] {
			return s[0], s[1], true
		}
	}
	return 0, 0, false
}

// runeFloor backs pos up to the start of the rune it points into.
func runeFloor(text string, pos int) int {
	for pos > 0 && pos < len(text) && !utf8.RuneStart(text[pos]) {
		pos--
	}
	return pos
}

// entityStart returns the start of the character entity enclosing splitAt,
// or -1 when the split does not land mid-entity.
func entityStart(text string, splitAt int) int {
	lo := splitAt - 4
	if lo < 0 {
		lo = 0
	}
	for q := splitAt - 1; q >= lo; q-- {
		if text[q] != '&' {
			continue
		}
		for _, e := range chunkEntities {
			if strings.HasPrefix(text[q:], e) && q+len(e) > splitAt {
				return q
			}
		}
	}
	return -1
}
