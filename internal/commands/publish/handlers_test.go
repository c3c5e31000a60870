package publishcmd

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-md2docs/internal/compiler"
	"github.com/goliatone/go-md2docs/internal/publish"
	"github.com/goliatone/go-md2docs/pkg/docmodel"
	"github.com/goliatone/go-md2docs/pkg/interfaces"
)

type stubPublisher struct {
	calls  []publish.Input
	report *publish.Report
	err    error
}

func (s *stubPublisher) Publish(_ context.Context, in publish.Input) (*publish.Report, error) {
	s.calls = append(s.calls, in)
	return s.report, s.err
}

type captureLogger struct {
	fields       []map[string]any
	infoMessages []string
}

var _ interfaces.Logger = (*captureLogger)(nil)

func (c *captureLogger) Trace(string, ...any) {}
func (c *captureLogger) Debug(string, ...any) {}
func (c *captureLogger) Info(msg string, _ ...any) {
	c.infoMessages = append(c.infoMessages, msg)
}
func (c *captureLogger) Warn(string, ...any)  {}
func (c *captureLogger) Error(string, ...any) {}
func (c *captureLogger) Fatal(string, ...any) {}

func (c *captureLogger) WithFields(fields map[string]any) interfaces.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	c.fields = append(c.fields, copied)
	return c
}

func (c *captureLogger) WithContext(context.Context) interfaces.Logger {
	return c
}

func (c *captureLogger) sawInfo(msg string) bool {
	for _, m := range c.infoMessages {
		if m == msg {
			return true
		}
	}
	return false
}

func TestPublishDocumentHandlerInvokesPublisher(t *testing.T) {
	publisher := &stubPublisher{report: &publish.Report{RunID: "run-1", Phase1: 3, Phase2: 2, Tables: 1}}
	logger := &captureLogger{}
	handler := NewPublishDocumentHandler(publisher, logger, FeatureGates{
		PublishEnabled: func() bool { return true },
	})

	var got *publish.Report
	err := handler.Execute(context.Background(), PublishDocumentCommand{
		DocumentID: "doc-1",
		Markdown:   "# Title",
		Append:     true,
		SourcePath: "docs/title.md",
		Force:      true,
		OnReport:   func(r *publish.Report) { got = r },
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(publisher.calls) != 1 {
		t.Fatalf("expected one publish call, got %d", len(publisher.calls))
	}
	call := publisher.calls[0]
	if call.DocumentID != "doc-1" || call.Markdown != "# Title" || !call.Append || !call.Force || call.SourcePath != "docs/title.md" {
		t.Fatalf("unexpected input %#v", call)
	}
	if got == nil || got.RunID != "run-1" {
		t.Fatalf("expected report callback, got %#v", got)
	}
	if !logger.sawInfo("publish.command.document.completed") {
		t.Fatalf("expected completion log, got %v", logger.infoMessages)
	}

	foundAppend := false
	for _, fields := range logger.fields {
		if fields["append"] == true && fields["document_id"] == "doc-1" {
			foundAppend = true
		}
	}
	if !foundAppend {
		t.Fatalf("expected message fields to be logged, got %#v", logger.fields)
	}
}

func TestPublishDocumentHandlerRespectsFeatureGate(t *testing.T) {
	publisher := &stubPublisher{}
	handler := NewPublishDocumentHandler(publisher, nil, FeatureGates{
		PublishEnabled: func() bool { return false },
	})

	err := handler.Execute(context.Background(), PublishDocumentCommand{DocumentID: "doc-1", Markdown: "x"})
	if !errors.Is(err, ErrPublishFeatureDisabled) {
		t.Fatalf("expected ErrPublishFeatureDisabled, got %v", err)
	}
	if len(publisher.calls) != 0 {
		t.Fatal("expected publisher not to be called when feature disabled")
	}
}

func TestPublishDocumentHandlerValidatesMessage(t *testing.T) {
	publisher := &stubPublisher{}
	handler := NewPublishDocumentHandler(publisher, nil, FeatureGates{})

	err := handler.Execute(context.Background(), PublishDocumentCommand{DocumentID: "  ", Markdown: "x"})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if len(publisher.calls) != 0 {
		t.Fatal("expected publisher not to be called for invalid message")
	}
}

func TestPublishDocumentHandlerWrapsPublisherError(t *testing.T) {
	publisher := &stubPublisher{err: errors.New("remote unavailable")}
	handler := NewPublishDocumentHandler(publisher, nil, FeatureGates{})

	err := handler.Execute(context.Background(), PublishDocumentCommand{DocumentID: "doc-1", Markdown: "x"})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestPublishDocumentHandlerErrorCarriesRunContext(t *testing.T) {
	publisher := &stubPublisher{
		report: &publish.Report{RunID: "run-9", Phase1: 4},
		err:    errors.New("batch update: 500"),
	}
	handler := NewPublishDocumentHandler(publisher, nil, FeatureGates{})

	err := handler.Execute(context.Background(), PublishDocumentCommand{DocumentID: "doc-9", Markdown: "x"})
	var typed *goerrors.Error
	if !errors.As(err, &typed) {
		t.Fatalf("expected go-errors error, got %v", err)
	}
	if typed.TextCode != "PUBLISH_DOCUMENT_FAILED" {
		t.Fatalf("text code = %q", typed.TextCode)
	}
	if typed.Metadata["run_id"] != "run-9" || typed.Metadata["document_id"] != "doc-9" || typed.Metadata["phase1"] != 4 {
		t.Fatalf("unexpected metadata %#v", typed.Metadata)
	}
}

func TestCompileMarkdownHandlerReturnsResult(t *testing.T) {
	handler := NewCompileMarkdownHandler(compiler.New(), nil)

	var result docmodel.Result
	err := handler.Execute(context.Background(), CompileMarkdownCommand{
		Markdown:   "# Title",
		StartIndex: 5,
		OnResult:   func(r docmodel.Result) { result = r },
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Requests) != 2 || result.Requests[0].InsertText == nil || result.Requests[0].InsertText.Index != 5 {
		t.Fatalf("unexpected result %#v", result)
	}
}

func TestCompileMarkdownHandlerDefaultsStartIndex(t *testing.T) {
	handler := NewCompileMarkdownHandler(compiler.New(), nil)

	var result docmodel.Result
	if err := handler.Execute(context.Background(), CompileMarkdownCommand{
		Markdown: "x",
		OnResult: func(r docmodel.Result) { result = r },
	}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Requests[0].InsertText.Index != 1 {
		t.Fatalf("expected default start index 1, got %d", result.Requests[0].InsertText.Index)
	}
}
