package compiler

import (
	"strings"

	"github.com/goliatone/go-md2docs/internal/markdown"
	"github.com/goliatone/go-md2docs/pkg/docmodel"
)

// Compile tokenizes source and compiles it at the configured start index.
func (c *Compiler) Compile(source string) docmodel.Result {
	return c.CompileAt(source, c.startIndex)
}

// CompileAt tokenizes source and compiles it with the cursor starting at
// startIndex.
func (c *Compiler) CompileAt(source string, startIndex int) docmodel.Result {
	return c.CompileBlocks(c.lexer.Lex(source), startIndex)
}

// CompileBlocks walks pre-tokenized blocks in order, emitting an InsertText
// per block followed by the style or bullet requests describing the range it
// created. Tables emit only an InsertTable skeleton here; their content is
// returned as descriptors for the second phase.
func (c *Compiler) CompileBlocks(blocks []markdown.Block, startIndex int) docmodel.Result {
	b := &blockBuilder{
		compiler: c,
		pos:      startIndex,
		requests: []docmodel.Request{},
		tables:   []docmodel.TableDescriptor{},
	}
	for _, block := range blocks {
		b.block(block)
	}

	c.logger.Debug("compiler.compile.completed",
		"blocks", len(blocks),
		"requests", len(b.requests),
		"tables", len(b.tables),
		"end_index", b.pos,
	)
	return docmodel.Result{Requests: b.requests, Tables: b.tables}
}

type blockBuilder struct {
	compiler *Compiler
	pos      int
	requests []docmodel.Request
	tables   []docmodel.TableDescriptor
}

func (b *blockBuilder) block(block markdown.Block) {
	switch block.Kind {
	case markdown.BlockHeading:
		runs := b.compiler.ExtractTextRuns(block.Inline)
		rng := b.insert(docmodel.JoinRuns(runs) + "\n")
		b.add(docmodel.NewUpdateParagraphStyle(rng, docmodel.HeadingStyle(block.Level)))
		b.requests = appendTextStyles(b.requests, runs, rng.Start)
	case markdown.BlockParagraph:
		b.insertRuns(b.compiler.ExtractTextRuns(block.Inline))
	case markdown.BlockList:
		b.list(block)
	case markdown.BlockCode:
		b.insert(block.Text + "\n")
	case markdown.BlockTable:
		b.table(block)
	case markdown.BlockSpace:
		b.insert("\n")
	}
}

func (b *blockBuilder) list(block markdown.Block) {
	preset := docmodel.BulletDiscCircleSquare
	if block.Ordered {
		preset = docmodel.NumberedDecimalNested
	}
	for _, item := range block.Items {
		var rng docmodel.Range
		if item.Loose() {
			rng = b.insertRuns(b.looseItemRuns(item))
		} else {
			rng = b.insert(b.compiler.emoji(item.Text) + "\n")
		}
		b.add(docmodel.NewCreateParagraphBullets(rng, preset))

		for _, sub := range item.Sublists {
			b.list(sub)
		}
	}
}

// looseItemRuns joins the runs of every paragraph and code block in a loose
// item, separated by a single space so the item stays one bulleted paragraph.
func (b *blockBuilder) looseItemRuns(item markdown.ListItem) []docmodel.StyledRun {
	var runs []docmodel.StyledRun
	for _, block := range item.Blocks {
		var blockRuns []docmodel.StyledRun
		switch block.Kind {
		case markdown.BlockParagraph:
			blockRuns = b.compiler.ExtractTextRuns(block.Inline)
		case markdown.BlockCode:
			if block.Text != "" {
				blockRuns = []docmodel.StyledRun{{Text: strings.ReplaceAll(block.Text, "\n", markdown.LineBreak)}}
			}
		}
		if len(blockRuns) == 0 {
			continue
		}
		if len(runs) > 0 {
			runs = append(runs, docmodel.StyledRun{Text: " "})
		}
		runs = append(runs, blockRuns...)
	}
	return runs
}

func (b *blockBuilder) table(block markdown.Block) {
	cols := len(block.Header)
	if cols == 0 {
		return
	}
	rows := 1 + len(block.Rows)

	b.add(docmodel.NewInsertTable(b.pos, rows, cols))
	b.pos += b.compiler.tableAdvance(rows, cols)

	cells := make([][]docmodel.StyledRun, 0, rows*cols)
	for _, cell := range block.Header {
		cells = append(cells, forceBold(b.compiler.ExtractTextRuns(cell.Inline)))
	}
	for _, row := range block.Rows {
		for col := 0; col < cols; col++ {
			var runs []docmodel.StyledRun
			if col < len(row) {
				runs = b.compiler.ExtractTextRuns(row[col].Inline)
			}
			cells = append(cells, runs)
		}
	}

	b.tables = append(b.tables, docmodel.TableDescriptor{Rows: rows, Cols: cols, Cells: cells})
}

// insertRuns inserts the concatenated runs plus a paragraph terminator and
// styles each bold or italic run.
func (b *blockBuilder) insertRuns(runs []docmodel.StyledRun) docmodel.Range {
	rng := b.insert(docmodel.JoinRuns(runs) + "\n")
	b.requests = appendTextStyles(b.requests, runs, rng.Start)
	return rng
}

func (b *blockBuilder) insert(text string) docmodel.Range {
	start := b.pos
	b.add(docmodel.NewInsertText(start, text))
	b.pos += docmodel.TextLen(text)
	return docmodel.Range{Start: start, End: b.pos}
}

func (b *blockBuilder) add(req docmodel.Request) {
	b.requests = append(b.requests, req)
}
