package md2docs_test

import (
	"context"
	"errors"
	"testing"

	md2docs "github.com/goliatone/go-md2docs"
	"github.com/goliatone/go-md2docs/pkg/docmodel"
	"github.com/google/go-cmp/cmp"
)

type memoryDocs struct {
	batches [][]md2docs.Request
	doc     *md2docs.Document
}

func (m *memoryDocs) BatchUpdate(_ context.Context, _ string, requests []md2docs.Request) error {
	m.batches = append(m.batches, requests)
	return nil
}

func (m *memoryDocs) Get(_ context.Context, _ string) (*md2docs.Document, error) {
	return m.doc, nil
}

func TestDefaultConfigValidates(t *testing.T) {
	if err := md2docs.DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestNewRejectsInvalidStartIndex(t *testing.T) {
	cfg := md2docs.DefaultConfig()
	cfg.Compiler.StartIndex = -2

	if _, err := md2docs.New(cfg); !errors.Is(err, md2docs.ErrStartIndexInvalid) {
		t.Fatalf("expected ErrStartIndexInvalid, got %v", err)
	}
}

func TestConfigPublishRequiresCredentials(t *testing.T) {
	cfg := md2docs.DefaultConfig()
	cfg.Features.Publish = true

	if err := cfg.Validate(); !errors.Is(err, md2docs.ErrDocsCredentialsRequired) {
		t.Fatalf("expected ErrDocsCredentialsRequired, got %v", err)
	}
}

func TestParseMarkdownContentFacade(t *testing.T) {
	result := md2docs.ParseMarkdownContent("# Title", md2docs.DefaultStartIndex)

	want := []md2docs.Request{
		docmodel.NewInsertText(1, "Title\n"),
		docmodel.NewUpdateParagraphStyle(md2docs.Range{Start: 1, End: 7}, docmodel.NamedStyleHeading1),
	}
	if diff := cmp.Diff(want, result.Requests); diff != "" {
		t.Fatalf("requests mismatch (-want +got):\n%s", diff)
	}
}

func TestModuleCompileMatchesPackageFunction(t *testing.T) {
	module, err := md2docs.New(md2docs.DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	source := "Hello **world**.\n\n- one\n- two"
	if diff := cmp.Diff(md2docs.ParseMarkdownContent(source, 1), module.Compile(source)); diff != "" {
		t.Fatalf("module compile diverges (-want +got):\n%s", diff)
	}
	if got := len(module.Lex(source)); got == 0 {
		t.Fatal("expected lexer to produce blocks")
	}
}

func TestTableRoundTripThroughFacade(t *testing.T) {
	result := md2docs.ParseMarkdownContent("| H |\n| --- |\n| v |", 1)
	if len(result.Tables) != 1 {
		t.Fatalf("expected one table, got %d", len(result.Tables))
	}

	doc := &md2docs.Document{Body: &docmodel.Body{Content: []docmodel.StructuralElement{{
		StartIndex: 1,
		Table: &docmodel.Table{Rows: 2, Columns: 1, TableRows: []docmodel.TableRow{
			{TableCells: []docmodel.TableCell{{Content: []docmodel.StructuralElement{{StartIndex: 4}}}}},
			{TableCells: []docmodel.TableCell{{Content: []docmodel.StructuralElement{{StartIndex: 6}}}}},
		}},
	}}}}

	indices := md2docs.FindTableCellIndices(doc)
	if diff := cmp.Diff(md2docs.IndexMatrix{{4, 6}}, indices); diff != "" {
		t.Fatalf("indices mismatch (-want +got):\n%s", diff)
	}

	want := []md2docs.Request{
		docmodel.NewInsertText(6, "v"),
		docmodel.NewInsertText(4, "H"),
		docmodel.NewUpdateTextStyle(md2docs.Range{Start: 4, End: 5}, true, false),
	}
	if diff := cmp.Diff(want, md2docs.GenerateTableCellRequests(result.Tables, indices)); diff != "" {
		t.Fatalf("cell requests mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractTextRunsFacade(t *testing.T) {
	tokens := []md2docs.Inline{
		{Kind: md2docs.InlineText, Text: "plain "},
		{Kind: md2docs.InlineStrong, Children: []md2docs.Inline{
			{Kind: md2docs.InlineEm, Children: []md2docs.Inline{{Kind: md2docs.InlineText, Text: "both"}}},
		}},
	}

	want := []md2docs.StyledRun{
		{Text: "plain "},
		{Text: "both", Bold: true, Italic: true},
	}
	if diff := cmp.Diff(want, md2docs.ExtractTextRuns(tokens)); diff != "" {
		t.Fatalf("runs mismatch (-want +got):\n%s", diff)
	}
}

func TestModulePublishUsesInjectedService(t *testing.T) {
	docs := &memoryDocs{}
	module, err := md2docs.New(md2docs.DefaultConfig(), md2docs.WithDocumentService(docs))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	report, err := module.Publish(context.Background(), md2docs.PublishInput{
		DocumentID: "doc-1",
		Markdown:   "# Title",
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if report.Phase1 != 2 || report.Tables != 0 {
		t.Fatalf("unexpected report %#v", report)
	}
	if len(docs.batches) != 1 {
		t.Fatalf("expected one batch, got %d", len(docs.batches))
	}
}

func TestModulePublishSkipsUnchangedWithLedger(t *testing.T) {
	docs := &memoryDocs{}
	module, err := md2docs.New(md2docs.DefaultConfig(),
		md2docs.WithDocumentService(docs),
		md2docs.WithLedger(md2docs.NewMemoryLedger()),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer module.Close()

	in := md2docs.PublishInput{DocumentID: "doc-1", Markdown: "same"}
	if _, err := module.Publish(context.Background(), in); err != nil {
		t.Fatalf("first Publish: %v", err)
	}
	report, err := module.Publish(context.Background(), in)
	if err != nil {
		t.Fatalf("second Publish: %v", err)
	}
	if !report.Unchanged || len(docs.batches) != 1 {
		t.Fatalf("expected unchanged second run, got %#v with %d batches", report, len(docs.batches))
	}
}
