package docmodel

// Document is the subset of the remote document structure needed to locate
// table cells after the skeleton pass has been applied. Every nested field
// is optional; absent values decode to their zero value.
type Document struct {
	DocumentID string `json:"documentId,omitempty"`
	Title      string `json:"title,omitempty"`
	Body       *Body  `json:"body,omitempty"`
}

type Body struct {
	Content []StructuralElement `json:"content,omitempty"`
}

// StructuralElement is one entry of a body or table cell content list.
type StructuralElement struct {
	StartIndex int        `json:"startIndex,omitempty"`
	EndIndex   int        `json:"endIndex,omitempty"`
	Paragraph  *Paragraph `json:"paragraph,omitempty"`
	Table      *Table     `json:"table,omitempty"`
}

type Paragraph struct {
	Elements []ParagraphElement `json:"elements,omitempty"`
}

type ParagraphElement struct {
	StartIndex int `json:"startIndex,omitempty"`
	EndIndex   int `json:"endIndex,omitempty"`
}

type Table struct {
	Rows      int        `json:"rows,omitempty"`
	Columns   int        `json:"columns,omitempty"`
	TableRows []TableRow `json:"tableRows,omitempty"`
}

type TableRow struct {
	StartIndex int         `json:"startIndex,omitempty"`
	EndIndex   int         `json:"endIndex,omitempty"`
	TableCells []TableCell `json:"tableCells,omitempty"`
}

type TableCell struct {
	StartIndex int                 `json:"startIndex,omitempty"`
	EndIndex   int                 `json:"endIndex,omitempty"`
	Content    []StructuralElement `json:"content,omitempty"`
}

// Content returns the body content, tolerating a nil document or body.
func (d *Document) Content() []StructuralElement {
	if d == nil || d.Body == nil {
		return nil
	}
	return d.Body.Content
}

// EndIndex returns the largest end index found in the body.
func (d *Document) EndIndex() int {
	end := 0
	for _, el := range d.Content() {
		if el.EndIndex > end {
			end = el.EndIndex
		}
	}
	return end
}
