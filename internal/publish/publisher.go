// Package publish drives the two-phase table protocol against a remote
// document: apply the compiled skeleton batch, read the document back, then
// fill table cells in a second batch.
package publish

import (
	"context"
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-md2docs/internal/compiler"
	"github.com/goliatone/go-md2docs/internal/ledger"
	"github.com/goliatone/go-md2docs/internal/logging"
	"github.com/goliatone/go-md2docs/pkg/docmodel"
	"github.com/goliatone/go-md2docs/pkg/interfaces"
	"github.com/google/uuid"
)

const (
	textCodeDocumentIDRequired = "PUBLISH_DOCUMENT_ID_REQUIRED"
	textCodeServiceMissing     = "PUBLISH_SERVICE_MISSING"
	textCodeSkeletonFailed     = "PUBLISH_SKELETON_FAILED"
	textCodeReadBackFailed     = "PUBLISH_READ_BACK_FAILED"
	textCodeCellsFailed        = "PUBLISH_CELLS_FAILED"
	textCodeLedgerFailed       = "PUBLISH_LEDGER_FAILED"
)

var (
	ErrDocumentIDRequired = errors.New("publish: document id is required")
	ErrServiceRequired    = errors.New("publish: document service is required")
)

// Input describes one publish run.
type Input struct {
	DocumentID string
	Markdown   string
	// StartIndex overrides where content is written. Zero selects the
	// compiler default, or the end of the body when Append is set.
	StartIndex int
	Append     bool
	// SourcePath is recorded in the ledger for reference only.
	SourcePath string
	// Force publishes even when the ledger shows identical markdown.
	Force bool
}

// Report summarises a publish run. Phase counts are the number of requests
// sent in each batch.
type Report struct {
	RunID         string `json:"run_id"`
	DocumentID    string `json:"document_id"`
	StartIndex    int    `json:"start_index"`
	Phase1        int    `json:"phase1_requests"`
	Phase2        int    `json:"phase2_requests"`
	Tables        int    `json:"tables"`
	SkippedTables int    `json:"skipped_tables"`
	Checksum      string `json:"checksum,omitempty"`
	// Unchanged is set when the ledger matched and nothing was sent.
	Unchanged bool `json:"unchanged,omitempty"`
}

// Publisher runs publish jobs against a DocumentService.
type Publisher struct {
	docs     interfaces.DocumentService
	compiler interfaces.MarkdownCompiler
	logger   interfaces.Logger
	runID    func() string
	ledger   ledger.Repository
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithCompiler replaces the default compiler.
func WithCompiler(c interfaces.MarkdownCompiler) Option {
	return func(p *Publisher) {
		if c != nil {
			p.compiler = c
		}
	}
}

// WithLogger sets the publish logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(p *Publisher) {
		p.logger = logging.OrNoOp(logger)
	}
}

// WithRunIDGenerator overrides run id generation.
func WithRunIDGenerator(fn func() string) Option {
	return func(p *Publisher) {
		if fn != nil {
			p.runID = fn
		}
	}
}

// WithLedger records successful runs in repo and skips documents whose
// markdown has not changed since the recorded run.
func WithLedger(repo ledger.Repository) Option {
	return func(p *Publisher) {
		p.ledger = repo
	}
}

// NewPublisher constructs a publisher bound to docs.
func NewPublisher(docs interfaces.DocumentService, opts ...Option) *Publisher {
	p := &Publisher{
		docs:     docs,
		compiler: compiler.New(),
		logger:   logging.NoOp(),
		runID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish compiles in.Markdown and writes it to the document. Phase one is
// not rolled back when a later step fails; the returned report reflects what
// was applied.
func (p *Publisher) Publish(ctx context.Context, in Input) (*Report, error) {
	documentID := strings.TrimSpace(in.DocumentID)
	if documentID == "" {
		return nil, goerrors.Wrap(ErrDocumentIDRequired, goerrors.CategoryValidation, "document id is required").
			WithTextCode(textCodeDocumentIDRequired)
	}
	if p.docs == nil {
		return nil, goerrors.Wrap(ErrServiceRequired, goerrors.CategoryCommand, "document service is not configured").
			WithTextCode(textCodeServiceMissing)
	}

	report := &Report{RunID: p.runID(), DocumentID: documentID}
	logger := logging.WithDocumentContext(p.logger, documentID, report.RunID, "publish")

	if p.ledger != nil {
		report.Checksum = ledger.Checksum(in.Markdown)
		if !in.Force {
			unchanged, err := ledger.Unchanged(ctx, p.ledger, documentID, report.Checksum)
			if err != nil {
				return report, wrapStep(err, "read publish ledger", textCodeLedgerFailed)
			}
			if unchanged {
				report.Unchanged = true
				logger.Info("publish.unchanged", "checksum", report.Checksum)
				return report, nil
			}
		}
	}

	start, err := p.resolveStart(ctx, documentID, in)
	if err != nil {
		return report, wrapStep(err, "read document before append", textCodeReadBackFailed)
	}
	report.StartIndex = start

	result := p.compiler.CompileAt(in.Markdown, start)
	report.Tables = len(result.Tables)

	if len(result.Requests) > 0 {
		if err := p.docs.BatchUpdate(ctx, documentID, result.Requests); err != nil {
			logger.Error("publish.skeleton.failed", "error", err)
			return report, wrapStep(err, "apply skeleton batch", textCodeSkeletonFailed)
		}
		report.Phase1 = len(result.Requests)
	}
	logger.Debug("publish.skeleton.applied", "requests", report.Phase1, "tables", report.Tables)

	if len(result.Tables) == 0 {
		logger.Info("publish.completed", "phase1", report.Phase1)
		p.record(ctx, logger, in, report)
		return report, nil
	}

	doc, err := p.docs.Get(ctx, documentID)
	if err != nil {
		logger.Error("publish.read_back.failed", "error", err)
		return report, wrapStep(err, "read document after skeleton batch", textCodeReadBackFailed)
	}

	indices := p.compiler.FindTableCellIndices(ScopeFrom(doc, start))
	if len(indices) > len(result.Tables) {
		indices = indices[:len(result.Tables)]
	}
	report.SkippedTables = countSkipped(result.Tables, indices)
	if report.SkippedTables > 0 {
		logger.Warn("publish.tables.skipped", "skipped", report.SkippedTables, "located", len(indices))
	}

	cells := p.compiler.GenerateTableCellRequests(result.Tables, indices)
	if len(cells) > 0 {
		if err := p.docs.BatchUpdate(ctx, documentID, cells); err != nil {
			logger.Error("publish.cells.failed", "error", err)
			return report, wrapStep(err, "apply table cell batch", textCodeCellsFailed)
		}
		report.Phase2 = len(cells)
	}

	logger.Info("publish.completed",
		"phase1", report.Phase1,
		"phase2", report.Phase2,
		"tables", report.Tables,
		"skipped_tables", report.SkippedTables,
	)
	p.record(ctx, logger, in, report)
	return report, nil
}

// record stores a completed run. The document is already written, so a
// ledger failure is logged rather than returned.
func (p *Publisher) record(ctx context.Context, logger interfaces.Logger, in Input, report *Report) {
	if p.ledger == nil {
		return
	}
	_, err := p.ledger.Record(ctx, ledger.Entry{
		DocumentID: report.DocumentID,
		SourcePath: in.SourcePath,
		Checksum:   report.Checksum,
		RunID:      report.RunID,
		Phase1:     report.Phase1,
		Phase2:     report.Phase2,
		Tables:     report.Tables,
	})
	if err != nil {
		logger.Warn("publish.ledger.record_failed", "error", err)
	}
}

func (p *Publisher) resolveStart(ctx context.Context, documentID string, in Input) (int, error) {
	if in.StartIndex > 0 {
		return in.StartIndex, nil
	}
	if !in.Append {
		return compiler.DefaultStartIndex, nil
	}
	doc, err := p.docs.Get(ctx, documentID)
	if err != nil {
		return 0, err
	}
	// The body always ends with a newline that cannot be written past.
	return max(doc.EndIndex()-1, compiler.DefaultStartIndex), nil
}

// ScopeFrom returns a copy of doc whose body keeps only elements starting at
// or after start, so tables that predate the run are not located.
func ScopeFrom(doc *docmodel.Document, start int) *docmodel.Document {
	if doc == nil {
		return nil
	}
	scoped := &docmodel.Document{DocumentID: doc.DocumentID, Title: doc.Title, Body: &docmodel.Body{}}
	for _, el := range doc.Content() {
		if el.StartIndex >= start {
			scoped.Body.Content = append(scoped.Body.Content, el)
		}
	}
	return scoped
}

func countSkipped(tables []docmodel.TableDescriptor, indices docmodel.IndexMatrix) int {
	skipped := 0
	for t, table := range tables {
		if t >= len(indices) || len(indices[t]) != len(table.Cells) {
			skipped++
		}
	}
	return skipped
}

func wrapStep(err error, message, code string) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, message).WithTextCode(code)
}
