// Package md2docs compiles Markdown into batched mutation requests for an
// index-addressed rich-text document service, and publishes them using a
// two-phase protocol for tables.
package md2docs

import (
	"context"

	publishcmd "github.com/goliatone/go-md2docs/internal/commands/publish"
	"github.com/goliatone/go-md2docs/internal/compiler"
	"github.com/goliatone/go-md2docs/internal/di"
	"github.com/goliatone/go-md2docs/internal/ledger"
	"github.com/goliatone/go-md2docs/internal/markdown"
	"github.com/goliatone/go-md2docs/internal/publish"
	"github.com/goliatone/go-md2docs/pkg/docmodel"
	"github.com/goliatone/go-md2docs/pkg/interfaces"
)

type (
	StyledRun       = docmodel.StyledRun
	Request         = docmodel.Request
	Range           = docmodel.Range
	TableDescriptor = docmodel.TableDescriptor
	IndexMatrix     = docmodel.IndexMatrix
	Result          = docmodel.Result
	Document        = docmodel.Document

	Inline = markdown.Inline
	Block  = markdown.Block

	DocumentService = interfaces.DocumentService
	Logger          = interfaces.Logger
	LoggerProvider  = interfaces.LoggerProvider

	PublishInput  = publish.Input
	PublishReport = publish.Report
	LedgerEntry   = ledger.Entry
	Ledger        = ledger.Repository

	Option = di.Option
)

// DefaultStartIndex is where body content begins in the remote document.
const DefaultStartIndex = compiler.DefaultStartIndex

const (
	InlineText     = markdown.InlineText
	InlineStrong   = markdown.InlineStrong
	InlineEm       = markdown.InlineEm
	InlineCodespan = markdown.InlineCodespan
	InlineLink     = markdown.InlineLink
)

// ExtractTextRuns flattens inline tokens into styled runs.
func ExtractTextRuns(tokens []Inline) []StyledRun {
	return compiler.ExtractTextRuns(tokens)
}

// ParseMarkdownContent compiles source with the cursor starting at startIndex.
func ParseMarkdownContent(source string, startIndex int) Result {
	return compiler.ParseMarkdownContent(source, startIndex)
}

// FindTableCellIndices locates the insertion index of every table cell in doc.
func FindTableCellIndices(doc *Document) IndexMatrix {
	return compiler.FindTableCellIndices(doc)
}

// GenerateTableCellRequests emits cell content in descending index order.
func GenerateTableCellRequests(tables []TableDescriptor, indices IndexMatrix) []Request {
	return compiler.GenerateTableCellRequests(tables, indices)
}

// WithLoggerProvider overrides the provider derived from Config.Logging.
func WithLoggerProvider(provider LoggerProvider) Option {
	return di.WithLoggerProvider(provider)
}

// WithDocumentService injects the remote document service used by Publish.
func WithDocumentService(svc DocumentService) Option {
	return di.WithDocumentService(svc)
}

// WithLedger injects the publish ledger used to skip unchanged documents.
func WithLedger(repo Ledger) Option {
	return di.WithLedger(repo)
}

// NewMemoryLedger returns an in-process ledger.
func NewMemoryLedger() Ledger {
	return ledger.NewMemoryRepository()
}

// Module is the top level runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a module from cfg.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Lex tokenizes source with the configured extensions.
func (m *Module) Lex(source string) []Block {
	return m.container.Lexer().Lex(source)
}

// Compile compiles source at the configured start index.
func (m *Module) Compile(source string) Result {
	return m.container.Compiler().Compile(source)
}

// CompileAt compiles source at startIndex.
func (m *Module) CompileAt(source string, startIndex int) Result {
	return m.container.Compiler().CompileAt(source, startIndex)
}

// FindTableCellIndices locates table cells with the configured compiler.
func (m *Module) FindTableCellIndices(doc *Document) IndexMatrix {
	return m.container.Compiler().FindTableCellIndices(doc)
}

// GenerateTableCellRequests emits cell content with the configured compiler.
func (m *Module) GenerateTableCellRequests(tables []TableDescriptor, indices IndexMatrix) []Request {
	return m.container.Compiler().GenerateTableCellRequests(tables, indices)
}

// Publish writes Markdown into a remote document.
func (m *Module) Publish(ctx context.Context, in PublishInput) (*PublishReport, error) {
	publisher, err := m.container.Publisher(ctx)
	if err != nil {
		return nil, err
	}
	return publisher.Publish(ctx, in)
}

// RegisterCommands registers the publish and compile command handlers.
func (m *Module) RegisterCommands(ctx context.Context, reg publishcmd.CommandRegistry) (*publishcmd.HandlerSet, error) {
	return m.container.RegisterCommands(ctx, reg)
}

// Close releases resources opened by the module, such as the ledger database.
func (m *Module) Close() error {
	return m.container.Close()
}
