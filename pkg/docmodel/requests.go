package docmodel

// NamedStyle selects a paragraph style preset.
type NamedStyle string

const (
	NamedStyleHeading1   NamedStyle = "HEADING_1"
	NamedStyleHeading2   NamedStyle = "HEADING_2"
	NamedStyleHeading3   NamedStyle = "HEADING_3"
	NamedStyleNormalText NamedStyle = "NORMAL_TEXT"
)

// HeadingStyle maps a markdown heading level onto a named style. Levels
// deeper than three collapse into HEADING_3; non-positive levels yield
// NORMAL_TEXT.
func HeadingStyle(level int) NamedStyle {
	switch {
	case level <= 0:
		return NamedStyleNormalText
	case level == 1:
		return NamedStyleHeading1
	case level == 2:
		return NamedStyleHeading2
	default:
		return NamedStyleHeading3
	}
}

// BulletPreset selects the glyph scheme applied by CreateParagraphBullets.
type BulletPreset string

const (
	BulletDiscCircleSquare BulletPreset = "BULLET_DISC_CIRCLE_SQUARE"
	NumberedDecimalNested  BulletPreset = "NUMBERED_DECIMAL_NESTED"
)

// Range is a half-open [Start, End) span of absolute indices.
type Range struct {
	Start int `json:"startIndex"`
	End   int `json:"endIndex"`
}

// Len returns the number of indices covered by the range.
func (r Range) Len() int {
	return r.End - r.Start
}

type InsertText struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type UpdateParagraphStyle struct {
	Range      Range      `json:"range"`
	NamedStyle NamedStyle `json:"namedStyleType"`
}

type UpdateTextStyle struct {
	Range  Range `json:"range"`
	Bold   bool  `json:"bold,omitempty"`
	Italic bool  `json:"italic,omitempty"`
}

type CreateParagraphBullets struct {
	Range        Range        `json:"range"`
	BulletPreset BulletPreset `json:"bulletPreset"`
}

type InsertTable struct {
	Index   int `json:"index"`
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// RequestKind names the populated variant of a Request.
type RequestKind string

const (
	KindUnknown                RequestKind = ""
	KindInsertText             RequestKind = "insertText"
	KindUpdateParagraphStyle   RequestKind = "updateParagraphStyle"
	KindUpdateTextStyle        RequestKind = "updateTextStyle"
	KindCreateParagraphBullets RequestKind = "createParagraphBullets"
	KindInsertTable            RequestKind = "insertTable"
)

// Request is one mutation in a batch. Exactly one field is set; the JSON
// shape follows the remote API where each request is an object keyed by its
// variant name.
type Request struct {
	InsertText             *InsertText             `json:"insertText,omitempty"`
	UpdateParagraphStyle   *UpdateParagraphStyle   `json:"updateParagraphStyle,omitempty"`
	UpdateTextStyle        *UpdateTextStyle        `json:"updateTextStyle,omitempty"`
	CreateParagraphBullets *CreateParagraphBullets `json:"createParagraphBullets,omitempty"`
	InsertTable            *InsertTable            `json:"insertTable,omitempty"`
}

// Kind reports which variant the request carries.
func (r Request) Kind() RequestKind {
	switch {
	case r.InsertText != nil:
		return KindInsertText
	case r.UpdateParagraphStyle != nil:
		return KindUpdateParagraphStyle
	case r.UpdateTextStyle != nil:
		return KindUpdateTextStyle
	case r.CreateParagraphBullets != nil:
		return KindCreateParagraphBullets
	case r.InsertTable != nil:
		return KindInsertTable
	default:
		return KindUnknown
	}
}

func NewInsertText(index int, text string) Request {
	return Request{InsertText: &InsertText{Index: index, Text: text}}
}

func NewUpdateParagraphStyle(rng Range, style NamedStyle) Request {
	return Request{UpdateParagraphStyle: &UpdateParagraphStyle{Range: rng, NamedStyle: style}}
}

func NewUpdateTextStyle(rng Range, bold, italic bool) Request {
	return Request{UpdateTextStyle: &UpdateTextStyle{Range: rng, Bold: bold, Italic: italic}}
}

func NewCreateParagraphBullets(rng Range, preset BulletPreset) Request {
	return Request{CreateParagraphBullets: &CreateParagraphBullets{Range: rng, BulletPreset: preset}}
}

func NewInsertTable(index, rows, columns int) Request {
	return Request{InsertTable: &InsertTable{Index: index, Rows: rows, Columns: columns}}
}

// CountKinds tallies requests by variant.
func CountKinds(requests []Request) map[RequestKind]int {
	counts := make(map[RequestKind]int, 5)
	for _, req := range requests {
		counts[req.Kind()]++
	}
	return counts
}
