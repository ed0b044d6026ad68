package slackx

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// Message is one channel post eligible for enrichment. TS doubles as the
// thread key when replying.
type Message struct {
	TS         string
	Text       string
	ReplyCount int
}

// API is the slice of the Slack Web API the client needs; *slack.Client
// satisfies it.
type API interface {
	GetConversationHistoryContext(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

type Client struct {
	api API
}

func New(botToken string) *Client {
	return &Client{api: slack.New(botToken)}
}

// NewWithAPI injects a custom API implementation, used by tests.
func NewWithAPI(api API) *Client {
	return &Client{api: api}
}

// FetchUnreplied returns channel messages without thread replies, oldest
// first. Feed posts arrive via app integrations, so bot messages are kept;
// join/leave and other system subtypes are not.
func (c *Client) FetchUnreplied(ctx context.Context, channelID string, limit int) ([]Message, error) {
	resp, err := c.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Limit:     limit,
	})
	if err != nil {
		return nil, wrapAPIError("conversations.history", err)
	}
	if !resp.Ok {
		return nil, &APIError{Method: "conversations.history", Code: resp.Error}
	}

	var messages []Message
	// History arrives newest first; process in posting order.
	for i := len(resp.Messages) - 1; i >= 0; i-- {
		m := resp.Messages[i]
		if m.SubType != "" && m.SubType != "bot_message" {
			continue
		}
		if m.ReplyCount > 0 {
			continue
		}
		messages = append(messages, Message{
			TS:         m.Timestamp,
			Text:       m.Text,
			ReplyCount: m.ReplyCount,
		})
	}

	return messages, nil
}

// PostReply posts one threaded reply and returns its timestamp.
func (c *Client) PostReply(ctx context.Context, channelID, threadTS, text string, blocks []slack.Block) (string, error) {
	options := []slack.MsgOption{
		slack.MsgOptionTS(threadTS),
		slack.MsgOptionText(text, false),
	}
	if len(blocks) > 0 {
		options = append(options, slack.MsgOptionBlocks(blocks...))
	}

	_, ts, err := c.api.PostMessageContext(ctx, channelID, options...)
	if err != nil {
		return "", wrapAPIError("chat.postMessage", err)
	}
	return ts, nil
}

// APIError carries the machine-readable error code the platform returned.
type APIError struct {
	Method string
	Code   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("slack %s failed: %s", e.Method, e.Code)
}

func wrapAPIError(method string, err error) error {
	if err == nil {
		return nil
	}
	// The Web API surfaces platform errors as bare error strings holding
	// the error code (e.g. "channel_not_found").
	return &APIError{Method: method, Code: err.Error()}
}
