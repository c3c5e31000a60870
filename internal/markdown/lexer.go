package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
)

// LineBreak is the in-paragraph line break understood by the document
// service; a plain newline would start a new paragraph.
const LineBreak = "\u000b"

type converter struct {
	source []byte
}

func (c converter) blocks(parent ast.Node) []Block {
	var out []Block
	for node := parent.FirstChild(); node != nil; node = node.NextSibling() {
		converted := c.block(node)
		if len(converted) == 0 {
			continue
		}
		if len(out) > 0 && c.blankBefore(node) {
			out = append(out, Block{Kind: BlockSpace})
		}
		out = append(out, converted...)
	}
	return out
}

// blankBefore reports whether a blank line separates node from the block
// above it. The table extension replaces the paragraph that carried the flag,
// so tables are checked against the source line above their first row.
func (c converter) blankBefore(node ast.Node) bool {
	if node.HasBlankPreviousLines() {
		return true
	}
	if _, ok := node.(*extast.Table); !ok {
		return false
	}
	start, ok := c.firstOffset(node)
	if !ok {
		return false
	}
	lineStart := bytes.LastIndexByte(c.source[:start], '\n')
	if lineStart <= 0 {
		return false
	}
	above := c.source[:lineStart]
	above = above[bytes.LastIndexByte(above, '\n')+1:]
	return len(bytes.TrimSpace(above)) == 0
}

// firstOffset returns the smallest source offset covered by node's
// descendants.
func (c converter) firstOffset(node ast.Node) (int, bool) {
	first, found := 0, false
	take := func(offset int) {
		if !found || offset < first {
			first, found = offset, true
		}
	}
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := n.(*ast.Text); ok {
			take(t.Segment.Start)
			return ast.WalkContinue, nil
		}
		if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
			take(n.Lines().At(0).Start)
		}
		return ast.WalkContinue, nil
	})
	if first > len(c.source) {
		return 0, false
	}
	return first, found
}

func (c converter) block(node ast.Node) []Block {
	switch n := node.(type) {
	case *ast.Heading:
		return []Block{{Kind: BlockHeading, Level: n.Level, Inline: c.inlines(n)}}
	case *ast.Paragraph, *ast.TextBlock:
		return []Block{c.paragraph(n)}
	case *ast.List:
		return []Block{c.list(n)}
	case *ast.FencedCodeBlock:
		return []Block{{Kind: BlockCode, Text: c.lines(n, "\n"), Lang: string(n.Language(c.source))}}
	case *ast.CodeBlock:
		return []Block{{Kind: BlockCode, Text: c.lines(n, "\n")}}
	case *extast.Table:
		return []Block{c.table(n)}
	case *ast.Blockquote:
		return c.blocks(n)
	case *ast.ThematicBreak, *ast.HTMLBlock:
		return nil
	default:
		if node.Type() != ast.TypeBlock {
			return nil
		}
		raw := c.lines(node, " ")
		if raw == "" {
			return nil
		}
		return []Block{{
			Kind:   BlockParagraph,
			Text:   raw,
			Inline: []Inline{{Kind: InlineOther, Text: raw}},
		}}
	}
}

func (c converter) paragraph(node ast.Node) Block {
	return Block{
		Kind:   BlockParagraph,
		Text:   c.lines(node, " "),
		Inline: c.inlines(node),
	}
}

func (c converter) list(node *ast.List) Block {
	block := Block{Kind: BlockList, Ordered: node.IsOrdered()}
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		item, ok := child.(*ast.ListItem)
		if !ok {
			continue
		}
		block.Items = append(block.Items, c.listItem(item))
	}
	return block
}

func (c converter) listItem(node *ast.ListItem) ListItem {
	var item ListItem
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.TextBlock:
			if item.Text == "" {
				item.Text = c.lines(n, " ")
			}
		case *ast.Paragraph:
			para := c.paragraph(n)
			if item.Text == "" {
				item.Text = para.Text
			}
			item.Blocks = append(item.Blocks, para)
		case *ast.List:
			item.Sublists = append(item.Sublists, c.list(n))
		default:
			if item.Text == "" {
				item.Text = c.literal(n)
			}
			item.Blocks = append(item.Blocks, c.block(n)...)
		}
	}
	return item
}

// literal returns the raw text of the first descendant of node that carries
// source lines. Code keeps its line structure as in-paragraph breaks.
func (c converter) literal(node ast.Node) string {
	switch node.(type) {
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return c.lines(node, LineBreak)
	}
	if node.Type() == ast.TypeBlock && node.Lines().Len() > 0 {
		if _, ok := node.(*ast.HTMLBlock); !ok {
			return c.lines(node, " ")
		}
	}
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		if child.Type() != ast.TypeBlock {
			continue
		}
		if text := c.literal(child); text != "" {
			return text
		}
	}
	return ""
}

func (c converter) table(node *extast.Table) Block {
	block := Block{Kind: BlockTable}
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *extast.TableHeader:
			block.Header = c.cells(n)
		case *extast.TableRow:
			block.Rows = append(block.Rows, c.cells(n))
		}
	}
	return block
}

func (c converter) cells(row ast.Node) []Cell {
	var cells []Cell
	for child := row.FirstChild(); child != nil; child = child.NextSibling() {
		if cell, ok := child.(*extast.TableCell); ok {
			cells = append(cells, Cell{Inline: c.inlines(cell)})
		}
	}
	return cells
}

func (c converter) inlines(parent ast.Node) []Inline {
	var out []Inline
	for node := parent.FirstChild(); node != nil; node = node.NextSibling() {
		if tok, ok := c.inline(node); ok {
			out = append(out, tok)
		}
	}
	return out
}

func (c converter) inline(node ast.Node) (Inline, bool) {
	switch n := node.(type) {
	case *ast.Text:
		value := string(n.Segment.Value(c.source))
		switch {
		case n.HardLineBreak():
			value += LineBreak
		case n.SoftLineBreak():
			value += " "
		}
		return Inline{Kind: InlineText, Text: value}, true
	case *ast.String:
		return Inline{Kind: InlineText, Text: string(n.Value)}, true
	case *ast.Emphasis:
		kind := InlineEm
		if n.Level >= 2 {
			kind = InlineStrong
		}
		return Inline{Kind: kind, Children: c.inlines(n)}, true
	case *ast.CodeSpan:
		return Inline{Kind: InlineCodespan, Text: c.plain(n)}, true
	case *ast.Link:
		return Inline{Kind: InlineLink, Href: string(n.Destination), Children: c.inlines(n)}, true
	case *ast.AutoLink:
		label := string(n.Label(c.source))
		return Inline{
			Kind:     InlineLink,
			Href:     string(n.URL(c.source)),
			Children: []Inline{{Kind: InlineText, Text: label}},
		}, true
	case *ast.Image:
		alt := c.plain(n)
		if alt == "" {
			return Inline{}, false
		}
		return Inline{Kind: InlineOther, Text: alt}, true
	case *ast.RawHTML:
		return Inline{}, false
	default:
		if node.HasChildren() {
			return Inline{Kind: InlineOther, Children: c.inlines(node)}, true
		}
		return Inline{}, false
	}
}

// plain flattens the literal text beneath node, ignoring markup.
func (c converter) plain(node ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(c.source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// lines joins the raw source lines of a block node with sep, dropping line
// terminators and trailing blank lines.
func (c converter) lines(node ast.Node, sep string) string {
	segments := node.Lines()
	if segments == nil || segments.Len() == 0 {
		return ""
	}
	parts := make([]string, 0, segments.Len())
	for i := 0; i < segments.Len(); i++ {
		seg := segments.At(i)
		parts = append(parts, strings.TrimRight(string(seg.Value(c.source)), "\r\n"))
	}
	if sep == "\n" {
		return strings.TrimRight(strings.Join(parts, sep), "\n")
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.TrimSpace(strings.Join(parts, sep))
}
