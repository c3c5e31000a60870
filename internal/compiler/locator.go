package compiler

import "github.com/goliatone/go-md2docs/pkg/docmodel"

// FindTableCellIndices returns, for every table in the document body, the
// insertion index of each cell in row-major order. A cell points at the
// first element of its first paragraph when there is one, otherwise at the
// start of its first content entry. Cells with no content are omitted and
// body elements without a table contribute nothing.
func (c *Compiler) FindTableCellIndices(doc *docmodel.Document) docmodel.IndexMatrix {
	matrix := docmodel.IndexMatrix{}
	for _, el := range doc.Content() {
		if el.Table == nil {
			continue
		}
		matrix = append(matrix, tableCellIndices(el.Table))
	}
	return matrix
}

func tableCellIndices(table *docmodel.Table) []int {
	indices := []int{}
	for _, row := range table.TableRows {
		for _, cell := range row.TableCells {
			if idx, ok := cellIndex(cell); ok {
				indices = append(indices, idx)
			}
		}
	}
	return indices
}

func cellIndex(cell docmodel.TableCell) (int, bool) {
	if len(cell.Content) == 0 {
		return 0, false
	}
	first := cell.Content[0]
	if first.Paragraph != nil && len(first.Paragraph.Elements) > 0 {
		return first.Paragraph.Elements[0].StartIndex, true
	}
	return first.StartIndex, true
}
