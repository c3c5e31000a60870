package docmodel

// TableDescriptor captures the cell content of a table whose skeleton was
// emitted as an InsertTable request. Cells are row-major: cell (r, c) lives
// at Cells[r*Cols+c].
type TableDescriptor struct {
	Rows  int           `json:"rows"`
	Cols  int           `json:"cols"`
	Cells [][]StyledRun `json:"cells"`
}

// Cell returns the runs for (row, col), or nil when out of bounds.
func (t TableDescriptor) Cell(row, col int) []StyledRun {
	if row < 0 || col < 0 || col >= t.Cols {
		return nil
	}
	idx := row*t.Cols + col
	if idx >= len(t.Cells) {
		return nil
	}
	return t.Cells[idx]
}

// IndexMatrix holds one slice of cell insertion indices per table, in
// document order.
type IndexMatrix [][]int

// Result is the output of compiling one markdown source.
type Result struct {
	Requests []Request         `json:"requests"`
	Tables   []TableDescriptor `json:"tables"`
}
