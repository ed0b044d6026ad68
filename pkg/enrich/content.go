package enrich

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyURL flags a misuse: the caller must never request enrichment
	// without a primary URL.
	ErrEmptyURL = errors.New("enrich: empty primary URL")
	// ErrNoResult means the agent produced no final text output.
	ErrNoResult = errors.New("enrich: agent returned no text result")
	// ErrAgentFailure covers API errors and refusals.
	ErrAgentFailure = errors.New("enrich: agent failed")
	// ErrInvalidPayload means the agent output did not match the schema.
	ErrInvalidPayload = errors.New("enrich: invalid enrichment payload")
)

const (
	minSummaryPoints = 1
	maxSummaryPoints = 5
)

// Meta describes the enriched article.
type Meta struct {
	Title          string `json:"title"`
	URL            string `json:"url"`
	Author         string `json:"author,omitempty"`
	CategoryLarge  string `json:"category_large,omitempty"`
	CategoryMedium string `json:"category_medium,omitempty"`
	PublishedAt    string `json:"published_at,omitempty"`
}

// Summary is the short bullet-point digest.
type Summary struct {
	Points []string `json:"points"`
}

// Content is the validated enrichment payload returned by the agent.
type Content struct {
	Meta    Meta    `json:"meta"`
	Summary Summary `json:"summary"`
	Detail  string  `json:"detail"`
}

// ParsePayload decodes and validates the agent's structured output. All
// violations wrap ErrInvalidPayload so callers can treat them as one
// per-item terminal kind.
func ParsePayload(data []byte) (*Content, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: not a JSON object: %v", ErrInvalidPayload, err)
	}
	for _, key := range []string{"meta", "summary", "detail"} {
		if _, ok := raw[key]; !ok {
			return nil, fmt.Errorf("%w: missing %q", ErrInvalidPayload, key)
		}
	}

	var content Content
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := content.Validate(); err != nil {
		return nil, err
	}
	return &content, nil
}

func (c *Content) Validate() error {
	if strings.TrimSpace(c.Meta.Title) == "" {
		return fmt.Errorf("%w: meta.title is empty", ErrInvalidPayload)
	}
	if strings.TrimSpace(c.Meta.URL) == "" {
		return fmt.Errorf("%w: meta.url is empty", ErrInvalidPayload)
	}
	n := len(c.Summary.Points)
	if n < minSummaryPoints || n > maxSummaryPoints {
		return fmt.Errorf("%w: summary.points length %d outside [%d,%d]",
			ErrInvalidPayload, n, minSummaryPoints, maxSummaryPoints)
	}
	return nil
}
