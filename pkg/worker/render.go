package worker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/slack-go/slack"

	"github.com/tknv/feedclaw/pkg/enrich"
	"github.com/tknv/feedclaw/pkg/hatebu"
	"github.com/tknv/feedclaw/pkg/mrkdwn"
	"github.com/tknv/feedclaw/pkg/slackx"
)

// replyPart is one of the three threaded reply messages: a plain-text
// fallback plus size-bounded rich blocks.
type replyPart struct {
	fallback string
	blocks   []slack.Block
}

// renderReply turns enrichment content into the meta, summary and detail
// parts, posted in that order.
func renderReply(content *enrich.Content, entry *hatebu.Entry) []replyPart {
	return []replyPart{
		renderMeta(content.Meta, entry),
		renderSummary(content.Summary),
		renderDetail(content.Detail),
	}
}

func renderMeta(meta enrich.Meta, entry *hatebu.Entry) replyPart {
	var lines []string
	lines = append(lines, fmt.Sprintf("*<%s|%s>*", meta.URL, meta.Title))
	if meta.Author != "" {
		lines = append(lines, "Author: "+meta.Author)
	}
	if category := formatCategory(meta); category != "" {
		lines = append(lines, "Category: "+category)
	}
	if meta.PublishedAt != "" {
		lines = append(lines, "Published: "+meta.PublishedAt)
	}

	text := mrkdwn.EscapeSpecials(strings.Join(lines, "\n"))
	blocks := slackx.SectionBlocks(mrkdwn.Split(text, mrkdwn.DefaultChunkLimit))

	if entry != nil && entry.Count > 0 {
		note := fmt.Sprintf(":bookmark: %d bookmarks", entry.Count)
		if n := entry.CommentCount(); n > 0 {
			note += fmt.Sprintf(", %d comments", n)
		}
		blocks = append(blocks, slackx.DividerBlock(), slackx.ContextBlock(note))
	}

	return replyPart{
		fallback: truncate(meta.Title+" | "+meta.URL, mrkdwn.DefaultChunkLimit),
		blocks:   blocks,
	}
}

func formatCategory(meta enrich.Meta) string {
	switch {
	case meta.CategoryLarge != "" && meta.CategoryMedium != "":
		return meta.CategoryLarge + " / " + meta.CategoryMedium
	case meta.CategoryLarge != "":
		return meta.CategoryLarge
	default:
		return meta.CategoryMedium
	}
}

func renderSummary(summary enrich.Summary) replyPart {
	var b strings.Builder
	b.WriteString("*Summary*")
	for _, p := range summary.Points {
		b.WriteString("\n• " + p)
	}

	text := mrkdwn.EscapeSpecials(b.String())
	return replyPart{
		fallback: truncate(text, mrkdwn.DefaultChunkLimit),
		blocks:   slackx.SectionBlocks(mrkdwn.Split(text, mrkdwn.DefaultChunkLimit)),
	}
}

func renderDetail(detail string) replyPart {
	text := mrkdwn.Convert(detail)
	return replyPart{
		fallback: truncate(text, mrkdwn.DefaultChunkLimit),
		blocks:   slackx.SectionBlocks(mrkdwn.Split(text, mrkdwn.DefaultChunkLimit)),
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Cut on a rune boundary so the fallback stays valid UTF-8.
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
