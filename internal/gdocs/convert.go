// Package gdocs adapts the Google Docs v1 API to the document model used by
// the compiler: requests are translated on the way out and documents are
// reduced to the structure needed for table cell lookup on the way in.
package gdocs

import (
	"strings"

	"github.com/goliatone/go-md2docs/pkg/docmodel"
	docs "google.golang.org/api/docs/v1"
)

// ToAPIRequests translates compiled requests into API requests. Requests with
// no populated variant are dropped.
func ToAPIRequests(requests []docmodel.Request) []*docs.Request {
	out := make([]*docs.Request, 0, len(requests))
	for _, req := range requests {
		if converted := toAPIRequest(req); converted != nil {
			out = append(out, converted)
		}
	}
	return out
}

func toAPIRequest(req docmodel.Request) *docs.Request {
	switch {
	case req.InsertText != nil:
		return &docs.Request{InsertText: &docs.InsertTextRequest{
			Location: location(req.InsertText.Index),
			Text:     req.InsertText.Text,
		}}
	case req.UpdateParagraphStyle != nil:
		return &docs.Request{UpdateParagraphStyle: &docs.UpdateParagraphStyleRequest{
			Range:          apiRange(req.UpdateParagraphStyle.Range),
			ParagraphStyle: &docs.ParagraphStyle{NamedStyleType: string(req.UpdateParagraphStyle.NamedStyle)},
			Fields:         "namedStyleType",
		}}
	case req.UpdateTextStyle != nil:
		style := req.UpdateTextStyle
		return &docs.Request{UpdateTextStyle: &docs.UpdateTextStyleRequest{
			Range:     apiRange(style.Range),
			TextStyle: &docs.TextStyle{Bold: style.Bold, Italic: style.Italic},
			Fields:    textStyleFields(style.Bold, style.Italic),
		}}
	case req.CreateParagraphBullets != nil:
		return &docs.Request{CreateParagraphBullets: &docs.CreateParagraphBulletsRequest{
			Range:        apiRange(req.CreateParagraphBullets.Range),
			BulletPreset: string(req.CreateParagraphBullets.BulletPreset),
		}}
	case req.InsertTable != nil:
		return &docs.Request{InsertTable: &docs.InsertTableRequest{
			Location: location(req.InsertTable.Index),
			Rows:     int64(req.InsertTable.Rows),
			Columns:  int64(req.InsertTable.Columns),
		}}
	default:
		return nil
	}
}

// textStyleFields limits the update mask to the flags being set so existing
// styling of the other attribute is preserved.
func textStyleFields(bold, italic bool) string {
	fields := make([]string, 0, 2)
	if bold {
		fields = append(fields, "bold")
	}
	if italic {
		fields = append(fields, "italic")
	}
	return strings.Join(fields, ",")
}

func location(index int) *docs.Location {
	return &docs.Location{Index: int64(index)}
}

func apiRange(r docmodel.Range) *docs.Range {
	return &docs.Range{StartIndex: int64(r.Start), EndIndex: int64(r.End)}
}

// FromAPIDocument keeps the parts of an API document needed to locate table
// cells. A nil document yields nil.
func FromAPIDocument(doc *docs.Document) *docmodel.Document {
	if doc == nil {
		return nil
	}
	out := &docmodel.Document{
		DocumentID: doc.DocumentId,
		Title:      doc.Title,
	}
	if doc.Body != nil {
		out.Body = &docmodel.Body{Content: fromElements(doc.Body.Content)}
	}
	return out
}

func fromElements(elements []*docs.StructuralElement) []docmodel.StructuralElement {
	if len(elements) == 0 {
		return nil
	}
	out := make([]docmodel.StructuralElement, 0, len(elements))
	for _, el := range elements {
		if el == nil {
			continue
		}
		converted := docmodel.StructuralElement{
			StartIndex: int(el.StartIndex),
			EndIndex:   int(el.EndIndex),
		}
		if el.Paragraph != nil {
			converted.Paragraph = fromParagraph(el.Paragraph)
		}
		if el.Table != nil {
			converted.Table = fromTable(el.Table)
		}
		out = append(out, converted)
	}
	return out
}

func fromParagraph(p *docs.Paragraph) *docmodel.Paragraph {
	para := &docmodel.Paragraph{}
	for _, el := range p.Elements {
		if el == nil {
			continue
		}
		para.Elements = append(para.Elements, docmodel.ParagraphElement{
			StartIndex: int(el.StartIndex),
			EndIndex:   int(el.EndIndex),
		})
	}
	return para
}

func fromTable(t *docs.Table) *docmodel.Table {
	table := &docmodel.Table{Rows: int(t.Rows), Columns: int(t.Columns)}
	for _, row := range t.TableRows {
		if row == nil {
			continue
		}
		converted := docmodel.TableRow{
			StartIndex: int(row.StartIndex),
			EndIndex:   int(row.EndIndex),
		}
		for _, cell := range row.TableCells {
			if cell == nil {
				continue
			}
			converted.TableCells = append(converted.TableCells, docmodel.TableCell{
				StartIndex: int(cell.StartIndex),
				EndIndex:   int(cell.EndIndex),
				Content:    fromElements(cell.Content),
			})
		}
		table.TableRows = append(table.TableRows, converted)
	}
	return table
}
