package docmodel

import (
	"strings"
	"unicode/utf16"
)

// StyledRun is a span of text sharing one combination of inline style flags.
type StyledRun struct {
	Text   string `json:"text"`
	Bold   bool   `json:"bold,omitempty"`
	Italic bool   `json:"italic,omitempty"`
}

// Styled reports whether the run carries any non-default flag.
func (r StyledRun) Styled() bool {
	return r.Bold || r.Italic
}

// JoinRuns concatenates the text of every run in order.
func JoinRuns(runs []StyledRun) string {
	switch len(runs) {
	case 0:
		return ""
	case 1:
		return runs[0].Text
	}
	var b strings.Builder
	for _, run := range runs {
		b.WriteString(run.Text)
	}
	return b.String()
}

// TextLen returns the length of s in UTF-16 code units, the unit the remote
// document uses for its indices.
func TextLen(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
