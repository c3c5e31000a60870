package compiler

import (
	"github.com/goliatone/go-md2docs/internal/markdown"
	"github.com/goliatone/go-md2docs/pkg/docmodel"
)

// ExtractTextRuns flattens inline tokens into styled runs in source order.
// Strong and em tokens OR their flag into every run produced beneath them;
// codespans stay literal; tokens with neither text nor children are dropped.
func (c *Compiler) ExtractTextRuns(tokens []markdown.Inline) []docmodel.StyledRun {
	var runs []docmodel.StyledRun
	for _, tok := range tokens {
		runs = c.appendRuns(runs, tok, false, false)
	}
	return runs
}

func (c *Compiler) appendRuns(runs []docmodel.StyledRun, tok markdown.Inline, bold, italic bool) []docmodel.StyledRun {
	switch tok.Kind {
	case markdown.InlineStrong:
		return c.appendChildren(runs, tok.Children, true, italic)
	case markdown.InlineEm:
		return c.appendChildren(runs, tok.Children, bold, true)
	case markdown.InlineCodespan:
		return appendRun(runs, tok.Text, bold, italic)
	case markdown.InlineLink:
		if len(tok.Children) == 0 {
			return appendRun(runs, c.emoji(tok.Text), bold, italic)
		}
		return c.appendChildren(runs, tok.Children, bold, italic)
	case markdown.InlineText:
		return appendRun(runs, c.emoji(tok.Text), bold, italic)
	default:
		if tok.Text != "" {
			return appendRun(runs, c.emoji(tok.Text), bold, italic)
		}
		return c.appendChildren(runs, tok.Children, bold, italic)
	}
}

func (c *Compiler) appendChildren(runs []docmodel.StyledRun, children []markdown.Inline, bold, italic bool) []docmodel.StyledRun {
	for _, child := range children {
		runs = c.appendRuns(runs, child, bold, italic)
	}
	return runs
}

func appendRun(runs []docmodel.StyledRun, text string, bold, italic bool) []docmodel.StyledRun {
	if text == "" {
		return runs
	}
	return append(runs, docmodel.StyledRun{Text: text, Bold: bold, Italic: italic})
}

// appendTextStyles emits one UpdateTextStyle per styled run, positioned as
// if the concatenated run text had been inserted at start.
func appendTextStyles(requests []docmodel.Request, runs []docmodel.StyledRun, start int) []docmodel.Request {
	offset := start
	for _, run := range runs {
		n := docmodel.TextLen(run.Text)
		if run.Styled() && n > 0 {
			requests = append(requests, docmodel.NewUpdateTextStyle(
				docmodel.Range{Start: offset, End: offset + n},
				run.Bold, run.Italic,
			))
		}
		offset += n
	}
	return requests
}

// forceBold returns a copy of runs with every run marked bold.
func forceBold(runs []docmodel.StyledRun) []docmodel.StyledRun {
	if len(runs) == 0 {
		return runs
	}
	out := make([]docmodel.StyledRun, len(runs))
	for i, run := range runs {
		run.Bold = true
		out[i] = run
	}
	return out
}
