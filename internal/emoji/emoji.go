// Package emoji expands GitHub style :shortcode: sequences into their
// unicode glyphs using the goldmark-emoji definition table.
package emoji

import (
	"strings"

	"github.com/yuin/goldmark-emoji/definition"
)

// Expander replaces known shortcodes. Unknown shortcodes are left untouched.
type Expander struct {
	table definition.Emojis
}

// New returns an expander backed by table. A nil table falls back to the
// GitHub set.
func New(table definition.Emojis) *Expander {
	if table == nil {
		table = definition.Github()
	}
	return &Expander{table: table}
}

var defaultExpander = New(nil)

// Expand replaces shortcodes in s using the GitHub emoji set.
func Expand(s string) string {
	return defaultExpander.Expand(s)
}

// Expand replaces every :name: in s whose name is in the table.
func (e *Expander) Expand(s string) string {
	if e == nil || strings.IndexByte(s, ':') < 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	rest := s
	for {
		open := strings.IndexByte(rest, ':')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:open])
		rest = rest[open:]

		closing := strings.IndexByte(rest[1:], ':')
		if closing < 0 {
			b.WriteString(rest)
			break
		}
		closing++

		name := rest[1:closing]
		if glyph, ok := e.lookup(name); ok {
			b.WriteString(glyph)
			rest = rest[closing+1:]
			continue
		}

		// The closing colon may open the next shortcode.
		b.WriteString(rest[:closing])
		rest = rest[closing:]
	}
	return b.String()
}

func (e *Expander) lookup(name string) (string, bool) {
	if !validName(name) {
		return "", false
	}
	def, ok := e.table.Get(name)
	if !ok || def == nil || len(def.Unicode) == 0 {
		return "", false
	}
	return string(def.Unicode), true
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '_', c == '+', c == '-':
		default:
			return false
		}
	}
	return true
}
