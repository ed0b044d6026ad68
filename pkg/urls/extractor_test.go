package urls

import (
	"reflect"
	"testing"
)

func TestExtractEmptyText(t *testing.T) {
	got := Extract("")
	if !got.Empty() {
		t.Fatalf("Extract(\"\")=%+v want empty", got)
	}
}

func TestExtractNoURLs(t *testing.T) {
	got := Extract("no links in this message at all")
	if !got.Empty() || len(got.Secondary) != 0 {
		t.Fatalf("got %+v want empty", got)
	}
}

func TestExtractSinglePlainURL(t *testing.T) {
	got := Extract("see https://example.com for details")
	want := Extracted{Primary: "https://example.com"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestExtractWrappedWithLabel(t *testing.T) {
	got := Extract("article: <https://example.com|Example Site>")
	if got.Primary != "https://example.com" {
		t.Fatalf("primary=%q want https://example.com", got.Primary)
	}
	if len(got.Secondary) != 0 {
		t.Fatalf("secondary=%v want none", got.Secondary)
	}
}

func TestExtractWrappedWithoutLabel(t *testing.T) {
	got := Extract("article: <https://example.com>")
	if got.Primary != "https://example.com" {
		t.Fatalf("primary=%q want https://example.com", got.Primary)
	}
}

func TestExtractThreePlainURLs(t *testing.T) {
	got := Extract("A https://example1.com B https://example2.com C https://example3.com")
	want := Extracted{
		Primary:   "https://example1.com",
		Secondary: []string{"https://example2.com", "https://example3.com"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestExtractMixedNotationsDocumentOrder(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Extracted
	}{
		{
			name: "wrapped then plain",
			text: "<https://example1.com|article> and also https://example2.com",
			want: Extracted{Primary: "https://example1.com", Secondary: []string{"https://example2.com"}},
		},
		{
			name: "plain then wrapped",
			text: "https://example1.com and also <https://example2.com|more>",
			want: Extracted{Primary: "https://example1.com", Secondary: []string{"https://example2.com"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Extract(tc.text)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %+v want %+v", got, tc.want)
			}
		})
	}
}

func TestExtractDeduplicatesAcrossNotations(t *testing.T) {
	got := Extract("<https://example.com|link> and again https://example.com")
	if got.Primary != "https://example.com" {
		t.Fatalf("primary=%q", got.Primary)
	}
	if len(got.Secondary) != 0 {
		t.Fatalf("secondary=%v want none after dedup", got.Secondary)
	}
}

func TestExtractAllIncludesPrimaryFirst(t *testing.T) {
	e := Extracted{Primary: "https://a.example", Secondary: []string{"https://b.example"}}
	got := e.All()
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("All()=%v want %v", got, want)
	}

	if all := (Extracted{}).All(); all != nil {
		t.Fatalf("empty All()=%v want nil", all)
	}
}
