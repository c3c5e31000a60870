package markdown

// InlineKind identifies an inline token.
type InlineKind int

const (
	// InlineOther is the fallback for constructs without a dedicated kind.
	// It carries either literal Text or nested Children.
	InlineOther InlineKind = iota
	InlineText
	InlineStrong
	InlineEm
	InlineCodespan
	InlineLink
)

func (k InlineKind) String() string {
	switch k {
	case InlineText:
		return "text"
	case InlineStrong:
		return "strong"
	case InlineEm:
		return "em"
	case InlineCodespan:
		return "codespan"
	case InlineLink:
		return "link"
	default:
		return "other"
	}
}

// Inline is an inline token. Text holds literal content for text, codespan
// and fallback tokens; Children holds nested tokens for strong, em, link and
// container fallbacks.
type Inline struct {
	Kind     InlineKind
	Text     string
	Href     string
	Children []Inline
}

// BlockKind identifies a top-level block token.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockList
	BlockTable
	BlockCode
	BlockSpace
)

func (k BlockKind) String() string {
	switch k {
	case BlockHeading:
		return "heading"
	case BlockList:
		return "list"
	case BlockTable:
		return "table"
	case BlockCode:
		return "code"
	case BlockSpace:
		return "space"
	default:
		return "paragraph"
	}
}

// Block is a block token. Which fields are populated depends on Kind:
//
//	heading:   Level, Inline
//	paragraph: Inline, Text (raw source)
//	list:      Ordered, Items
//	table:     Header, Rows
//	code:      Text, Lang
type Block struct {
	Kind    BlockKind
	Level   int
	Text    string
	Lang    string
	Inline  []Inline
	Ordered bool
	Items   []ListItem
	Header  []Cell
	Rows    [][]Cell
}

// ListItem is one entry of a list block. Tight items only carry their raw
// source in Text. Loose items wrap their content in paragraph blocks.
type ListItem struct {
	Text     string
	Blocks   []Block
	Sublists []Block
}

// Loose reports whether the item wraps its content in paragraph blocks.
func (it ListItem) Loose() bool {
	for _, block := range it.Blocks {
		if block.Kind == BlockParagraph {
			return true
		}
	}
	return false
}

// Cell is one table cell.
type Cell struct {
	Inline []Inline
}
