package enrich

import (
	"fmt"
	"strings"

	"github.com/tknv/feedclaw/pkg/hatebu"
)

// detailSoftLimit is guidance to the agent, not something we enforce.
const detailSoftLimit = 40000

// Request carries everything the agent needs for one enrichment.
type Request struct {
	PrimaryURL    string
	SecondaryURLs []string
	Bookmarks     *hatebu.Entry
}

const systemPrompt = `You are a feed-enrichment assistant. You read web articles and produce
structured Japanese-or-source-language summaries for a Slack channel.
Always answer with exactly one JSON object and nothing else.`

// BuildPrompt renders the user prompt for one request.
func BuildPrompt(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Fetch and read the article at %s using web search.\n\n", req.PrimaryURL)

	if len(req.SecondaryURLs) > 0 {
		b.WriteString("Supporting context URLs referenced by the same post:\n")
		for _, u := range req.SecondaryURLs {
			fmt.Fprintf(&b, "- %s\n", u)
		}
		b.WriteString("\n")
	}

	if req.Bookmarks != nil && req.Bookmarks.Count > 0 {
		fmt.Fprintf(&b, "The article has %d social bookmarks.", req.Bookmarks.Count)
		if comments := req.Bookmarks.Comments(); len(comments) > 0 {
			b.WriteString(" Reader comments:\n")
			for i, c := range comments {
				if i >= 10 {
					break
				}
				fmt.Fprintf(&b, "- %s: %s\n", c.User, c.Comment)
			}
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, `Respond with a single JSON object using this schema:
{
  "meta": {
    "title": "article title",
    "url": "%s",
    "author": "author name if known",
    "category_large": "broad category",
    "category_medium": "narrower category",
    "published_at": "publication date if known"
  },
  "summary": {
    "points": ["1 to 5 short bullet points"]
  },
  "detail": "a thorough markdown write-up of the article"
}

Rules:
- "meta", "summary" and "detail" are all required.
- "summary.points" holds between 1 and 5 entries.
- "detail" is GitHub-flavored markdown, at most %d characters.
- Omit optional meta fields you could not determine.
- Output the JSON object only, no prose around it.`, req.PrimaryURL, detailSoftLimit)

	return b.String()
}
