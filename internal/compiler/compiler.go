// Package compiler converts markdown into ordered mutation requests for an
// index-addressed rich-text document.
//
// Compilation is a two-phase protocol. Compile emits text, style, bullet and
// empty table skeleton requests together with a TableDescriptor per table.
// Once the caller has applied those requests and re-read the document,
// FindTableCellIndices locates every cell's insertion point and
// GenerateTableCellRequests produces the cell content batch. Cell requests
// are emitted in descending index order so each insertion leaves the indices
// of the cells still to be written untouched.
//
// Every function here is pure: no I/O, no shared state, and identical input
// always yields identical output. Malformed input degrades locally and never
// produces an error.
package compiler

import (
	"github.com/goliatone/go-md2docs/internal/emoji"
	"github.com/goliatone/go-md2docs/internal/logging"
	"github.com/goliatone/go-md2docs/internal/markdown"
	"github.com/goliatone/go-md2docs/pkg/docmodel"
	"github.com/goliatone/go-md2docs/pkg/interfaces"
)

// DefaultStartIndex is where body content begins in the remote model.
const DefaultStartIndex = 1

// DefaultTableOverhead is the structural length of an empty table beyond its
// per-row and per-cell markers: the newline inserted ahead of the table plus
// the table start and end markers.
const DefaultTableOverhead = 3

// TableAdvanceFunc returns how far the cursor moves past an empty table
// skeleton of the given shape.
type TableAdvanceFunc func(rows, cols int) int

// EmojiFunc expands shortcodes in literal text.
type EmojiFunc func(string) string

// TableAdvance returns a TableAdvanceFunc that counts one marker per row,
// a marker plus an empty paragraph per cell, and overhead for the table.
func TableAdvance(overhead int) TableAdvanceFunc {
	return func(rows, cols int) int {
		return rows*(1+2*cols) + overhead
	}
}

// Compiler carries the injected collaborators. The zero value is not usable;
// construct with New.
type Compiler struct {
	lexer        *markdown.Lexer
	startIndex   int
	tableAdvance TableAdvanceFunc
	emoji        EmojiFunc
	logger       interfaces.Logger
}

var _ interfaces.MarkdownCompiler = (*Compiler)(nil)

// Option configures a Compiler.
type Option func(*Compiler)

// WithStartIndex overrides the cursor origin used by Compile.
func WithStartIndex(index int) Option {
	return func(c *Compiler) {
		c.startIndex = index
	}
}

// WithTableAdvance overrides the cursor advance applied after a table
// skeleton. It must match what the target service allocates.
func WithTableAdvance(fn TableAdvanceFunc) Option {
	return func(c *Compiler) {
		if fn != nil {
			c.tableAdvance = fn
		}
	}
}

// WithEmoji overrides shortcode expansion. Pass an identity function to
// disable it.
func WithEmoji(fn EmojiFunc) Option {
	return func(c *Compiler) {
		if fn != nil {
			c.emoji = fn
		}
	}
}

// WithLexer overrides the markdown tokenizer.
func WithLexer(lexer *markdown.Lexer) Option {
	return func(c *Compiler) {
		if lexer != nil {
			c.lexer = lexer
		}
	}
}

// WithLogger sets the logger used for debug diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Compiler) {
		c.logger = logging.OrNoOp(logger)
	}
}

// New constructs a compiler with goldmark tokenizing, GitHub emoji and the
// default table geometry.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		startIndex:   DefaultStartIndex,
		tableAdvance: TableAdvance(DefaultTableOverhead),
		emoji:        emoji.Expand,
		logger:       logging.NoOp(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.lexer == nil {
		c.lexer = markdown.NewLexer(markdown.Options{})
	}
	return c
}

var defaultCompiler = New()

// ExtractTextRuns flattens inline tokens with the default compiler.
func ExtractTextRuns(tokens []markdown.Inline) []docmodel.StyledRun {
	return defaultCompiler.ExtractTextRuns(tokens)
}

// ParseMarkdownContent compiles markdown starting at startIndex with the
// default compiler.
func ParseMarkdownContent(source string, startIndex int) docmodel.Result {
	return defaultCompiler.CompileAt(source, startIndex)
}

// FindTableCellIndices locates table cells with the default compiler.
func FindTableCellIndices(doc *docmodel.Document) docmodel.IndexMatrix {
	return defaultCompiler.FindTableCellIndices(doc)
}

// GenerateTableCellRequests emits cell content with the default compiler.
func GenerateTableCellRequests(tables []docmodel.TableDescriptor, indices docmodel.IndexMatrix) []docmodel.Request {
	return defaultCompiler.GenerateTableCellRequests(tables, indices)
}
