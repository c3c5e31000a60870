package compiler

import "github.com/goliatone/go-md2docs/pkg/docmodel"

// GenerateTableCellRequests emits the content of every table cell at the
// index located for it. Tables and cells are visited last to first so every
// insertion lands above the cells still waiting to be written, keeping their
// indices valid without recomputation. Apply the result in the order
// returned.
//
// A table whose located index count differs from its cell count is skipped
// entirely: the document no longer matches the skeleton that was inserted.
func (c *Compiler) GenerateTableCellRequests(tables []docmodel.TableDescriptor, indices docmodel.IndexMatrix) []docmodel.Request {
	requests := []docmodel.Request{}
	for t := len(tables) - 1; t >= 0; t-- {
		table := tables[t]
		if t >= len(indices) || len(indices[t]) != len(table.Cells) {
			located := 0
			if t < len(indices) {
				located = len(indices[t])
			}
			c.logger.Debug("compiler.table.skipped",
				"table", t,
				"cells", len(table.Cells),
				"located", located,
			)
			continue
		}

		for i := len(table.Cells) - 1; i >= 0; i-- {
			runs := table.Cells[i]
			text := docmodel.JoinRuns(runs)
			if text == "" {
				continue
			}
			at := indices[t][i]
			requests = append(requests, docmodel.NewInsertText(at, text))
			requests = appendTextStyles(requests, runs, at)
		}
	}
	return requests
}
