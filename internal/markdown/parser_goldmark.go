package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Options tunes the goldmark engine backing a Lexer.
type Options struct {
	// Extensions lists goldmark extensions by name. Empty selects the
	// default set (tables and strikethrough).
	Extensions []string
}

// Lexer tokenizes markdown with goldmark. It holds no per-call state, so one
// instance can be shared across goroutines.
type Lexer struct {
	engine goldmark.Markdown
}

// NewLexer constructs a lexer with the supplied options.
func NewLexer(opts Options) *Lexer {
	return &Lexer{engine: newGoldmarkEngine(opts)}
}

// Lex tokenizes markdown into top-level blocks. Empty input yields nil.
func (l *Lexer) Lex(markdown string) []Block {
	if strings.TrimSpace(markdown) == "" {
		return nil
	}
	source := []byte(markdown)
	root := l.engine.Parser().Parse(text.NewReader(source))
	conv := converter{source: source}
	return conv.blocks(root)
}

func newGoldmarkEngine(opts Options) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(collectExtensions(opts.Extensions)...),
	)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
}

// SupportedExtension reports whether name maps onto a registered extension.
func SupportedExtension(name string) bool {
	_, ok := extensionRegistry[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{
			extension.Table,
			extension.Strikethrough,
		}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}

	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}

	return extenders
}
