package enrich

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/tknv/feedclaw/pkg/config"
	"github.com/tknv/feedclaw/pkg/logger"
)

// Enricher produces validated enrichment content for one request.
type Enricher interface {
	Enrich(ctx context.Context, req Request) (*Content, error)
}

type messagesAPI interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Agent calls the Anthropic Messages API with the server-side web search
// tool. The tool-use budget bounds how many searches one enrichment may
// spend.
type Agent struct {
	messages      messagesAPI
	model         string
	maxTokens     int
	maxSearchUses int
}

func NewAgent(cfg config.AgentConfig) *Agent {
	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	return &Agent{
		messages:      &client.Messages,
		model:         cfg.Model,
		maxTokens:     cfg.MaxTokens,
		maxSearchUses: cfg.MaxSearchUses,
	}
}

func (a *Agent) Enrich(ctx context.Context, req Request) (*Content, error) {
	if req.PrimaryURL == "" {
		return nil, ErrEmptyURL
	}

	msg, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(a.maxTokens),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(req))),
		},
		Tools: []anthropic.ToolUnionParam{
			{
				OfWebSearchTool20250305: &anthropic.WebSearchTool20250305Param{
					MaxUses: anthropic.Int(int64(a.maxSearchUses)),
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAgentFailure, err)
	}

	if msg.StopReason == anthropic.StopReasonRefusal {
		return nil, fmt.Errorf("%w: model refused the request", ErrAgentFailure)
	}

	text := lastTextBlock(msg)
	if text == "" {
		return nil, ErrNoResult
	}

	content, err := ParsePayload([]byte(ExtractJSON(text)))
	if err != nil {
		logger.WarnCF("enrich", "agent output failed validation", map[string]interface{}{
			"url":   req.PrimaryURL,
			"error": err.Error(),
		})
		return nil, err
	}

	logger.InfoCF("enrich", "enrichment complete", map[string]interface{}{
		"url":    req.PrimaryURL,
		"title":  content.Meta.Title,
		"points": len(content.Summary.Points),
	})
	return content, nil
}

func lastTextBlock(msg *anthropic.Message) string {
	text := ""
	for _, block := range msg.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			text = block.Text
		}
	}
	return strings.TrimSpace(text)
}

// ExtractJSON pulls the JSON object out of the agent's final text, which
// may wrap it in a code fence or surrounding prose.
func ExtractJSON(text string) string {
	text = strings.TrimSpace(text)

	if i := strings.Index(text, "```"); i != -1 {
		rest := text[i+3:]
		if j := strings.Index(rest, "\n"); j != -1 {
			rest = rest[j+1:]
		}
		if k := strings.Index(rest, "```"); k != -1 {
			candidate := strings.TrimSpace(rest[:k])
			if strings.HasPrefix(candidate, "{") {
				return candidate
			}
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}
	return text
}
