package interfaces

import (
	"context"

	"github.com/goliatone/go-md2docs/pkg/docmodel"
)

// DocumentService is the remote rich-text document collaborator. The
// compiler never calls it; the publish pipeline uses it to apply request
// batches and to read back the document between the table phases.
type DocumentService interface {
	// BatchUpdate applies requests in the order given.
	BatchUpdate(ctx context.Context, documentID string, requests []docmodel.Request) error
	// Get returns the current document structure.
	Get(ctx context.Context, documentID string) (*docmodel.Document, error)
}

// MarkdownCompiler converts markdown into phase-one requests and turns a
// read-back document into phase-two table cell requests.
type MarkdownCompiler interface {
	CompileAt(markdown string, startIndex int) docmodel.Result
	FindTableCellIndices(doc *docmodel.Document) docmodel.IndexMatrix
	GenerateTableCellRequests(tables []docmodel.TableDescriptor, indices docmodel.IndexMatrix) []docmodel.Request
}
