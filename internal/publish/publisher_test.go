package publish

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-md2docs/internal/ledger"
	"github.com/goliatone/go-md2docs/pkg/docmodel"
	"github.com/google/go-cmp/cmp"
)

type fakeDocs struct {
	batches  [][]docmodel.Request
	gets     int
	document func(gets int) *docmodel.Document
	batchErr error
	getErr   error
}

func (f *fakeDocs) BatchUpdate(_ context.Context, _ string, requests []docmodel.Request) error {
	if f.batchErr != nil {
		return f.batchErr
	}
	f.batches = append(f.batches, requests)
	return nil
}

func (f *fakeDocs) Get(_ context.Context, _ string) (*docmodel.Document, error) {
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.document == nil {
		return &docmodel.Document{}, nil
	}
	return f.document(f.gets), nil
}

func cell(at int) docmodel.TableCell {
	return docmodel.TableCell{Content: []docmodel.StructuralElement{{
		StartIndex: at,
		Paragraph:  &docmodel.Paragraph{Elements: []docmodel.ParagraphElement{{StartIndex: at, EndIndex: at + 1}}},
	}}}
}

func tableAt(start int, rows ...[]docmodel.TableCell) docmodel.StructuralElement {
	table := &docmodel.Table{Rows: len(rows)}
	for _, cells := range rows {
		table.Columns = len(cells)
		table.TableRows = append(table.TableRows, docmodel.TableRow{TableCells: cells})
	}
	return docmodel.StructuralElement{StartIndex: start, Table: table}
}

func fixedRunID() string { return "run-1" }

func TestPublishWithoutTablesSendsOneBatch(t *testing.T) {
	docs := &fakeDocs{}
	p := NewPublisher(docs, WithRunIDGenerator(fixedRunID))

	report, err := p.Publish(context.Background(), Input{DocumentID: "doc-1", Markdown: "# Title\n\nBody"})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	want := &Report{RunID: "run-1", DocumentID: "doc-1", StartIndex: 1, Phase1: 4}
	if diff := cmp.Diff(want, report); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
	if len(docs.batches) != 1 || docs.gets != 0 {
		t.Fatalf("expected one batch and no reads, got %d batches %d reads", len(docs.batches), docs.gets)
	}
}

func TestPublishFillsTablesInSecondBatch(t *testing.T) {
	docs := &fakeDocs{document: func(int) *docmodel.Document {
		return &docmodel.Document{Body: &docmodel.Body{Content: []docmodel.StructuralElement{
			{StartIndex: 0, EndIndex: 1},
			tableAt(2,
				[]docmodel.TableCell{cell(5), cell(7)},
				[]docmodel.TableCell{cell(10), cell(12)},
			),
		}}}
	}}
	p := NewPublisher(docs, WithRunIDGenerator(fixedRunID))

	report, err := p.Publish(context.Background(), Input{
		DocumentID: "doc-1",
		Markdown:   "| A | B |\n| --- | --- |\n| 1 | 2 |",
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(docs.batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(docs.batches))
	}
	if report.Phase1 != 1 || report.Tables != 1 || report.SkippedTables != 0 {
		t.Fatalf("unexpected report %#v", report)
	}
	cells := docs.batches[1]
	if report.Phase2 != len(cells) || len(cells) != 6 {
		t.Fatalf("expected 6 cell requests, got %d (report %d)", len(cells), report.Phase2)
	}
	if cells[0].InsertText == nil || cells[0].InsertText.Index != 12 || cells[0].InsertText.Text != "2" {
		t.Fatalf("expected last cell first, got %#v", cells[0])
	}
}

func TestPublishIgnoresTablesBeforeStart(t *testing.T) {
	docs := &fakeDocs{document: func(int) *docmodel.Document {
		return &docmodel.Document{Body: &docmodel.Body{Content: []docmodel.StructuralElement{
			tableAt(2, []docmodel.TableCell{cell(4)}),
			tableAt(21, []docmodel.TableCell{cell(24)}),
		}}}
	}}
	p := NewPublisher(docs)

	report, err := p.Publish(context.Background(), Input{
		DocumentID: "doc-1",
		Markdown:   "| Z |\n| --- |",
		StartIndex: 20,
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if report.StartIndex != 20 || report.SkippedTables != 0 {
		t.Fatalf("unexpected report %#v", report)
	}
	want := []docmodel.Request{
		docmodel.NewInsertText(24, "Z"),
		docmodel.NewUpdateTextStyle(docmodel.Range{Start: 24, End: 25}, true, false),
	}
	if diff := cmp.Diff(want, docs.batches[1]); diff != "" {
		t.Fatalf("cell batch mismatch (-want +got):\n%s", diff)
	}
}

func TestPublishAppendStartsAtBodyEnd(t *testing.T) {
	docs := &fakeDocs{document: func(int) *docmodel.Document {
		return &docmodel.Document{Body: &docmodel.Body{Content: []docmodel.StructuralElement{
			{StartIndex: 1, EndIndex: 40},
		}}}
	}}
	p := NewPublisher(docs)

	report, err := p.Publish(context.Background(), Input{DocumentID: "doc-1", Markdown: "Hi", Append: true})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if report.StartIndex != 39 {
		t.Fatalf("expected start 39, got %d", report.StartIndex)
	}
	want := []docmodel.Request{docmodel.NewInsertText(39, "Hi\n")}
	if diff := cmp.Diff(want, docs.batches[0]); diff != "" {
		t.Fatalf("batch mismatch (-want +got):\n%s", diff)
	}
}

func TestPublishCountsUnlocatedTables(t *testing.T) {
	docs := &fakeDocs{}
	p := NewPublisher(docs)

	report, err := p.Publish(context.Background(), Input{DocumentID: "doc-1", Markdown: "| A |\n| --- |\n| 1 |"})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if report.SkippedTables != 1 || report.Phase2 != 0 {
		t.Fatalf("unexpected report %#v", report)
	}
	if len(docs.batches) != 1 {
		t.Fatalf("expected empty cell batch to be skipped, got %d batches", len(docs.batches))
	}
}

func TestPublishRequiresDocumentID(t *testing.T) {
	p := NewPublisher(&fakeDocs{})

	_, err := p.Publish(context.Background(), Input{Markdown: "x"})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if !errors.Is(err, ErrDocumentIDRequired) {
		t.Fatalf("expected ErrDocumentIDRequired, got %v", err)
	}
}

func TestPublishWrapsRemoteFailures(t *testing.T) {
	docs := &fakeDocs{batchErr: errors.New("quota exceeded")}
	p := NewPublisher(docs)

	report, err := p.Publish(context.Background(), Input{DocumentID: "doc-1", Markdown: "x"})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if report == nil || report.Phase1 != 0 {
		t.Fatalf("expected partial report without applied requests, got %#v", report)
	}

	docs = &fakeDocs{getErr: errors.New("not found")}
	_, err = NewPublisher(docs).Publish(context.Background(), Input{DocumentID: "doc-1", Markdown: "| A |\n| --- |"})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category for read back, got %v", err)
	}
}

func TestScopeFrom(t *testing.T) {
	doc := &docmodel.Document{DocumentID: "d", Body: &docmodel.Body{Content: []docmodel.StructuralElement{
		{StartIndex: 1}, {StartIndex: 5}, {StartIndex: 9},
	}}}

	scoped := ScopeFrom(doc, 5)
	if len(scoped.Content()) != 2 || scoped.Content()[0].StartIndex != 5 {
		t.Fatalf("unexpected scoped content %#v", scoped.Content())
	}
	if ScopeFrom(nil, 1) != nil {
		t.Fatalf("expected nil for nil document")
	}
}

func TestPublishLedgerSkipsUnchangedMarkdown(t *testing.T) {
	docs := &fakeDocs{}
	repo := ledger.NewMemoryRepository()
	p := NewPublisher(docs, WithLedger(repo), WithRunIDGenerator(fixedRunID))
	in := Input{DocumentID: "doc-1", Markdown: "# Title", SourcePath: "docs/title.md"}

	first, err := p.Publish(context.Background(), in)
	if err != nil {
		t.Fatalf("first Publish: %v", err)
	}
	if first.Unchanged || first.Checksum != ledger.Checksum("# Title") {
		t.Fatalf("unexpected first report %#v", first)
	}
	entry, err := repo.Get(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("ledger Get: %v", err)
	}
	if entry.SourcePath != "docs/title.md" || entry.RunID != "run-1" || entry.Phase1 != 2 {
		t.Fatalf("unexpected ledger entry %#v", entry)
	}

	second, err := p.Publish(context.Background(), in)
	if err != nil {
		t.Fatalf("second Publish: %v", err)
	}
	if !second.Unchanged || second.Phase1 != 0 {
		t.Fatalf("expected unchanged report, got %#v", second)
	}
	if len(docs.batches) != 1 {
		t.Fatalf("expected no batch for unchanged markdown, got %d", len(docs.batches))
	}

	in.Force = true
	if _, err := p.Publish(context.Background(), in); err != nil {
		t.Fatalf("forced Publish: %v", err)
	}
	if len(docs.batches) != 2 {
		t.Fatalf("expected forced publish to send a batch, got %d", len(docs.batches))
	}
}

func TestPublishLedgerNotRecordedOnFailure(t *testing.T) {
	docs := &fakeDocs{batchErr: errors.New("quota exceeded")}
	repo := ledger.NewMemoryRepository()
	p := NewPublisher(docs, WithLedger(repo))

	if _, err := p.Publish(context.Background(), Input{DocumentID: "doc-1", Markdown: "x"}); err == nil {
		t.Fatal("expected publish error")
	}
	if _, err := repo.Get(context.Background(), "doc-1"); !errors.Is(err, ledger.ErrEntryNotFound) {
		t.Fatalf("expected no ledger entry after failure, got %v", err)
	}
}
