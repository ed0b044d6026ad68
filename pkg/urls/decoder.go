package urls

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
)

// The article page embeds the destination in a data-n-url attribute when
// the server does not answer with a redirect outright.
var dataNURLPattern = regexp.MustCompile(`data-n-url="([^"]+)"`)

const decoderBodyLimit = 512 * 1024

// HTTPDecoder decodes Google News redirect URLs by fetching the article
// page without following redirects: a Location header wins, otherwise the
// destination is scraped from the page body.
type HTTPDecoder struct {
	client *http.Client
}

func NewHTTPDecoder() *HTTPDecoder {
	return &HTTPDecoder{
		client: &http.Client{
			Timeout: decodeTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (d *HTTPDecoder) Decode(ctx context.Context, rawURL string) (DecodeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return DecodeResult{}, err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return DecodeResult{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther, http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		loc := resp.Header.Get("Location")
		if loc == "" {
			return DecodeResult{}, nil
		}
		return DecodeResult{OK: true, DecodedURL: loc}, nil
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, decoderBodyLimit))
		if err != nil {
			return DecodeResult{}, err
		}
		if m := dataNURLPattern.FindSubmatch(body); m != nil {
			return DecodeResult{OK: true, DecodedURL: string(m[1])}, nil
		}
		return DecodeResult{}, nil
	default:
		return DecodeResult{}, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}
}

// Checker probes a URL before enrichment so permanently dead links are
// skipped instead of being handed to the agent.
type Checker struct {
	client *http.Client
}

func NewChecker() *Checker {
	return &Checker{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Status sends a HEAD request following redirects and returns the final
// status code. ok is false on connection errors and timeouts; callers
// should proceed optimistically in that case.
func (c *Checker) Status(ctx context.Context, rawURL string) (status int, ok bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return 0, false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, false
	}
	resp.Body.Close()
	return resp.StatusCode, true
}

// IsPermanentFailure reports status codes that will not recover; these
// messages are skipped rather than retried against the agent.
func IsPermanentFailure(status int) bool {
	switch status {
	case http.StatusForbidden, http.StatusNotFound, http.StatusGone:
		return true
	}
	return false
}
