package hatebu

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/tknv/feedclaw/pkg/logger"
)

const defaultBaseURL = "https://b.hatena.ne.jp/entry/jsonlite/"

const requestTimeout = 10 * time.Second

// Client fetches Hatena Bookmark entries via the jsonlite API. Every
// failure mode reads as "no entry": the bookmark lookup is strictly
// optional and must never block enrichment.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient() *Client {
	return &Client{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// NewClientWithBaseURL points the client at a different endpoint, used by
// tests.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

// FetchEntry returns the bookmark entry for rawURL, or nil when the URL is
// not bookmarked or the API is unreachable.
func (c *Client) FetchEntry(ctx context.Context, rawURL string) (*Entry, error) {
	apiURL := c.baseURL + "?url=" + url.QueryEscape(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		logger.WarnCF("hatebu", "API returned unexpected status", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    rawURL,
		})
		return nil, nil
	}

	// The API answers "null" for unknown URLs.
	var entry *Entry
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		return nil, nil
	}
	return entry, nil
}
