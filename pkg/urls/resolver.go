package urls

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/tknv/feedclaw/pkg/logger"
)

const decodeTimeout = 10 * time.Second

// DecodeResult is the outcome of one redirect decode attempt.
type DecodeResult struct {
	OK         bool
	DecodedURL string
}

// Decoder resolves a Google News redirect URL to its final destination.
type Decoder interface {
	Decode(ctx context.Context, rawURL string) (DecodeResult, error)
}

// IsGoogleNewsURL reports whether rawURL is a decodable Google News
// redirect. Only /rss/articles/ paths qualify; /topics/, /topstories and
// the rest of the host are not decodable.
func IsGoogleNewsURL(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Hostname() == "news.google.com" && strings.Contains(u.Path, "/rss/articles/")
}

// Resolver rewrites eligible redirect URLs to their destinations. Any
// decode failure is fail-open: the original URL is passed through so that
// enrichment is never blocked on resolution.
type Resolver struct {
	decoder Decoder
	timeout time.Duration
}

func NewResolver(decoder Decoder) *Resolver {
	return &Resolver{decoder: decoder, timeout: decodeTimeout}
}

// ResolveURL returns rawURL unchanged when it is not an eligible redirect,
// when the decoder is absent, or when decoding fails for any reason.
func (r *Resolver) ResolveURL(ctx context.Context, rawURL string) string {
	if !IsGoogleNewsURL(rawURL) || r.decoder == nil {
		return rawURL
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.decoder.Decode(ctx, rawURL)
	if err != nil {
		logger.WarnCF("resolver", "Google News decode failed, keeping original URL", map[string]interface{}{
			"url":   rawURL,
			"error": err.Error(),
		})
		return rawURL
	}
	if !result.OK || result.DecodedURL == "" {
		logger.WarnCF("resolver", "Google News decode returned no destination, keeping original URL", map[string]interface{}{
			"url": rawURL,
		})
		return rawURL
	}

	return result.DecodedURL
}

// Resolve resolves primary and secondary URLs sequentially, then
// re-deduplicates: distinct redirect URLs may land on the same
// destination, and a secondary equal to the resolved primary is dropped.
func (r *Resolver) Resolve(ctx context.Context, extracted Extracted) Extracted {
	if extracted.Empty() {
		return extracted
	}

	primary := r.ResolveURL(ctx, extracted.Primary)

	seen := map[string]struct{}{primary: {}}
	var secondary []string
	for _, u := range extracted.Secondary {
		resolved := r.ResolveURL(ctx, u)
		if _, ok := seen[resolved]; ok {
			continue
		}
		seen[resolved] = struct{}{}
		secondary = append(secondary, resolved)
	}

	return Extracted{Primary: primary, Secondary: secondary}
}
