package urls

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

type fakeDecoder struct {
	results map[string]DecodeResult
	err     error
	delay   time.Duration
	calls   []string
}

func (d *fakeDecoder) Decode(ctx context.Context, rawURL string) (DecodeResult, error) {
	d.calls = append(d.calls, rawURL)
	if d.delay > 0 {
		select {
		case <-time.After(d.delay):
		case <-ctx.Done():
			return DecodeResult{}, ctx.Err()
		}
	}
	if d.err != nil {
		return DecodeResult{}, d.err
	}
	if r, ok := d.results[rawURL]; ok {
		return r, nil
	}
	return DecodeResult{}, nil
}

const gnURL = "https://news.google.com/rss/articles/CBMiWkFV?oc=5"

func TestIsGoogleNewsURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{gnURL, true},
		{"http://news.google.com/rss/articles/CBMiWkFV?oc=5", true},
		{"https://example.com/article/123", false},
		{"", false},
		{"https://news.google.com/topics/CAAqJggK?oc=3", false},
		{"https://news.google.com/topstories?hl=ja&gl=JP", false},
		{"https://news.google.com/", false},
	}

	for _, tc := range tests {
		if got := IsGoogleNewsURL(tc.url); got != tc.want {
			t.Errorf("IsGoogleNewsURL(%q)=%v want %v", tc.url, got, tc.want)
		}
	}
}

func TestResolveURLIneligiblePassthrough(t *testing.T) {
	dec := &fakeDecoder{}
	r := NewResolver(dec)

	got := r.ResolveURL(context.Background(), "https://example.com/a")
	if got != "https://example.com/a" {
		t.Fatalf("got %q want passthrough", got)
	}
	if len(dec.calls) != 0 {
		t.Fatalf("decoder called for ineligible URL: %v", dec.calls)
	}
}

func TestResolveURLSuccess(t *testing.T) {
	dec := &fakeDecoder{results: map[string]DecodeResult{
		gnURL: {OK: true, DecodedURL: "https://example.com/story"},
	}}
	r := NewResolver(dec)

	if got := r.ResolveURL(context.Background(), gnURL); got != "https://example.com/story" {
		t.Fatalf("got %q want decoded URL", got)
	}
}

func TestResolveURLFailOpen(t *testing.T) {
	tests := []struct {
		name string
		dec  *fakeDecoder
	}{
		{"decoder error", &fakeDecoder{err: errors.New("boom")}},
		{"not ok", &fakeDecoder{results: map[string]DecodeResult{gnURL: {OK: false}}}},
		{"empty destination", &fakeDecoder{results: map[string]DecodeResult{gnURL: {OK: true}}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewResolver(tc.dec)
			if got := r.ResolveURL(context.Background(), gnURL); got != gnURL {
				t.Fatalf("got %q want original URL back", got)
			}
		})
	}
}

func TestResolveURLTimeoutFailOpen(t *testing.T) {
	dec := &fakeDecoder{delay: time.Second}
	r := NewResolver(dec)
	r.timeout = 10 * time.Millisecond

	if got := r.ResolveURL(context.Background(), gnURL); got != gnURL {
		t.Fatalf("got %q want original URL back on timeout", got)
	}
}

func TestResolveNoPrimaryUnchanged(t *testing.T) {
	dec := &fakeDecoder{}
	r := NewResolver(dec)

	got := r.Resolve(context.Background(), Extracted{})
	if !got.Empty() || len(dec.calls) != 0 {
		t.Fatalf("got %+v calls=%v want untouched empty input", got, dec.calls)
	}
}

func TestResolveSequentialOrder(t *testing.T) {
	u1 := "https://news.google.com/rss/articles/AAA?oc=5"
	u2 := "https://news.google.com/rss/articles/BBB?oc=5"
	dec := &fakeDecoder{results: map[string]DecodeResult{
		u1: {OK: true, DecodedURL: "https://a.example/1"},
		u2: {OK: true, DecodedURL: "https://b.example/2"},
	}}
	r := NewResolver(dec)

	got := r.Resolve(context.Background(), Extracted{Primary: u1, Secondary: []string{u2}})
	want := Extracted{Primary: "https://a.example/1", Secondary: []string{"https://b.example/2"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if !reflect.DeepEqual(dec.calls, []string{u1, u2}) {
		t.Fatalf("decode order %v want primary first", dec.calls)
	}
}

func TestResolveRededupAfterResolution(t *testing.T) {
	u1 := "https://news.google.com/rss/articles/AAA?oc=5"
	u2 := "https://news.google.com/rss/articles/BBB?oc=5"
	// Both redirect URLs land on the same destination.
	dec := &fakeDecoder{results: map[string]DecodeResult{
		u1: {OK: true, DecodedURL: "https://story.example/x"},
		u2: {OK: true, DecodedURL: "https://story.example/x"},
	}}
	r := NewResolver(dec)

	got := r.Resolve(context.Background(), Extracted{
		Primary:   u1,
		Secondary: []string{u2, "https://other.example", "https://other.example"},
	})
	want := Extracted{Primary: "https://story.example/x", Secondary: []string{"https://other.example"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestIsPermanentFailure(t *testing.T) {
	for _, status := range []int{403, 404, 410} {
		if !IsPermanentFailure(status) {
			t.Errorf("IsPermanentFailure(%d)=false want true", status)
		}
	}
	for _, status := range []int{200, 301, 429, 500, 503} {
		if IsPermanentFailure(status) {
			t.Errorf("IsPermanentFailure(%d)=true want false", status)
		}
	}
}
