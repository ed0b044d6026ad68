package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type fakeMessages struct {
	msg    *anthropic.Message
	err    error
	params anthropic.MessageNewParams
}

func (f *fakeMessages) New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error) {
	f.params = params
	return f.msg, f.err
}

func textMessage(text string) *anthropic.Message {
	return &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{
			{Type: "text", Text: text},
		},
		StopReason: anthropic.StopReasonEndTurn,
	}
}

func newTestAgent(f *fakeMessages) *Agent {
	return &Agent{
		messages:      f,
		model:         "claude-sonnet-4-5",
		maxTokens:     8192,
		maxSearchUses: 4,
	}
}

func TestEnrichSuccess(t *testing.T) {
	f := &fakeMessages{msg: textMessage(validPayload)}
	a := newTestAgent(f)

	content, err := a.Enrich(context.Background(), Request{PrimaryURL: "https://example.com/go126"})
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if content.Meta.Title != "Go 1.26 Released" {
		t.Errorf("title=%q", content.Meta.Title)
	}

	if len(f.params.Tools) != 1 || f.params.Tools[0].OfWebSearchTool20250305 == nil {
		t.Fatal("web search tool not configured")
	}
	if got := f.params.Tools[0].OfWebSearchTool20250305.MaxUses.Value; got != 4 {
		t.Errorf("max_uses=%d want 4", got)
	}
}

func TestEnrichFencedOutput(t *testing.T) {
	f := &fakeMessages{msg: textMessage("```json\n" + validPayload + "\n```")}
	a := newTestAgent(f)

	if _, err := a.Enrich(context.Background(), Request{PrimaryURL: "https://example.com/x"}); err != nil {
		t.Fatalf("Enrich: %v", err)
	}
}

func TestEnrichEmptyURL(t *testing.T) {
	f := &fakeMessages{msg: textMessage(validPayload)}
	a := newTestAgent(f)

	_, err := a.Enrich(context.Background(), Request{})
	if !errors.Is(err, ErrEmptyURL) {
		t.Fatalf("err=%v want ErrEmptyURL", err)
	}
}

func TestEnrichAPIError(t *testing.T) {
	f := &fakeMessages{err: errors.New("overloaded_error")}
	a := newTestAgent(f)

	_, err := a.Enrich(context.Background(), Request{PrimaryURL: "https://example.com/x"})
	if !errors.Is(err, ErrAgentFailure) {
		t.Fatalf("err=%v want ErrAgentFailure", err)
	}
}

func TestEnrichRefusal(t *testing.T) {
	msg := textMessage("no")
	msg.StopReason = anthropic.StopReasonRefusal
	f := &fakeMessages{msg: msg}
	a := newTestAgent(f)

	_, err := a.Enrich(context.Background(), Request{PrimaryURL: "https://example.com/x"})
	if !errors.Is(err, ErrAgentFailure) {
		t.Fatalf("err=%v want ErrAgentFailure", err)
	}
}

func TestEnrichNoTextResult(t *testing.T) {
	f := &fakeMessages{msg: &anthropic.Message{StopReason: anthropic.StopReasonEndTurn}}
	a := newTestAgent(f)

	_, err := a.Enrich(context.Background(), Request{PrimaryURL: "https://example.com/x"})
	if !errors.Is(err, ErrNoResult) {
		t.Fatalf("err=%v want ErrNoResult", err)
	}
}

func TestEnrichInvalidPayload(t *testing.T) {
	f := &fakeMessages{msg: textMessage(`{"meta": {"title": "t", "url": "u"}}`)}
	a := newTestAgent(f)

	_, err := a.Enrich(context.Background(), Request{PrimaryURL: "https://example.com/x"})
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("err=%v want ErrInvalidPayload", err)
	}
}
