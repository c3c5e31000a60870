package compiler

import (
	"testing"

	"github.com/goliatone/go-md2docs/internal/markdown"
	"github.com/goliatone/go-md2docs/pkg/docmodel"
	"github.com/google/go-cmp/cmp"
)

func plainToken(s string) markdown.Inline {
	return markdown.Inline{Kind: markdown.InlineText, Text: s}
}

func TestExtractTextRuns(t *testing.T) {
	cases := []struct {
		name   string
		tokens []markdown.Inline
		want   []docmodel.StyledRun
	}{
		{
			name: "empty input",
		},
		{
			name:   "plain text",
			tokens: []markdown.Inline{plainToken("hello")},
			want:   []docmodel.StyledRun{{Text: "hello"}},
		},
		{
			name:   "fallback with text",
			tokens: []markdown.Inline{{Kind: markdown.InlineOther, Text: "<kbd>"}},
			want:   []docmodel.StyledRun{{Text: "<kbd>"}},
		},
		{
			name:   "fallback without text is skipped",
			tokens: []markdown.Inline{plainToken("a"), {Kind: markdown.InlineOther}, plainToken("b")},
			want:   []docmodel.StyledRun{{Text: "a"}, {Text: "b"}},
		},
		{
			name: "codespan stays literal",
			tokens: []markdown.Inline{
				{Kind: markdown.InlineCodespan, Text: "**not bold** :smile:"},
			},
			want: []docmodel.StyledRun{{Text: "**not bold** :smile:"}},
		},
		{
			name: "codespan inside strong inherits bold",
			tokens: []markdown.Inline{
				{Kind: markdown.InlineStrong, Children: []markdown.Inline{
					{Kind: markdown.InlineCodespan, Text: "x"},
				}},
			},
			want: []docmodel.StyledRun{{Text: "x", Bold: true}},
		},
		{
			name: "nested runs stay in place",
			tokens: []markdown.Inline{
				plainToken("a "),
				{Kind: markdown.InlineStrong, Children: []markdown.Inline{
					plainToken("b "),
					{Kind: markdown.InlineEm, Children: []markdown.Inline{plainToken("c")}},
					plainToken(" d"),
				}},
				plainToken(" e"),
			},
			want: []docmodel.StyledRun{
				{Text: "a "},
				{Text: "b ", Bold: true},
				{Text: "c", Bold: true, Italic: true},
				{Text: " d", Bold: true},
				{Text: " e"},
			},
		},
		{
			name: "link label keeps styling",
			tokens: []markdown.Inline{
				{Kind: markdown.InlineLink, Href: "https://example.com", Children: []markdown.Inline{
					{Kind: markdown.InlineEm, Children: []markdown.Inline{plainToken("docs")}},
				}},
			},
			want: []docmodel.StyledRun{{Text: "docs", Italic: true}},
		},
		{
			name:   "link without label uses its text",
			tokens: []markdown.Inline{{Kind: markdown.InlineLink, Text: "https://example.com"}},
			want:   []docmodel.StyledRun{{Text: "https://example.com"}},
		},
		{
			name:   "empty strong emits nothing",
			tokens: []markdown.Inline{{Kind: markdown.InlineStrong}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := New(WithEmoji(func(s string) string { return s })).ExtractTextRuns(tc.tokens)
			if len(tc.want) == 0 {
				if len(got) != 0 {
					t.Fatalf("expected no runs, got %#v", got)
				}
				return
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("runs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractTextRunsExpandsEmojiOutsideCode(t *testing.T) {
	tokens := []markdown.Inline{
		plainToken("ship :rocket: "),
		{Kind: markdown.InlineCodespan, Text: ":rocket:"},
	}
	got := New(WithEmoji(func(s string) string {
		if s == "ship :rocket: " {
			return "ship R "
		}
		return s
	})).ExtractTextRuns(tokens)

	want := []docmodel.StyledRun{{Text: "ship R "}, {Text: ":rocket:"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("runs mismatch (-want +got):\n%s", diff)
	}
}
