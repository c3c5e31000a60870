package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-md2docs/internal/logging"
	"github.com/goliatone/go-md2docs/pkg/interfaces"
)

type sampleMessage struct {
	DocumentID string
}

func (sampleMessage) Type() string { return "md2docs.test.sample_message" }

func (sampleMessage) Validate() error { return nil }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "md2docs.test.invalid_message" }

func (invalidMessage) Validate() error {
	return errors.New("document id is required")
}

func TestHandlerExecuteSuccess(t *testing.T) {
	called := false
	h := NewHandler[sampleMessage](func(ctx context.Context, msg sampleMessage) error {
		called = true
		return nil
	})

	if err := h.Execute(context.Background(), sampleMessage{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !called {
		t.Fatal("expected handler to be invoked")
	}
}

func TestHandlerValidationShortCircuitsExecution(t *testing.T) {
	called := false
	h := NewHandler[invalidMessage](func(ctx context.Context, msg invalidMessage) error {
		called = true
		return nil
	})

	err := h.Execute(context.Background(), invalidMessage{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when validation fails")
	}
}

func TestHandlerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	h := NewHandler[sampleMessage](func(ctx context.Context, msg sampleMessage) error {
		called = true
		return nil
	})

	err := h.Execute(ctx, sampleMessage{})
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when context is cancelled")
	}
}

func TestHandlerWrapsExecutionError(t *testing.T) {
	h := NewHandler[sampleMessage](func(ctx context.Context, msg sampleMessage) error {
		return errors.New("boom")
	})

	err := h.Execute(context.Background(), sampleMessage{})
	if err == nil {
		t.Fatal("expected wrapped execution error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if !goerrors.HasCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category to propagate, got %v", err)
	}
}

func TestHandlerPreservesCategorisedErrors(t *testing.T) {
	inner := goerrors.Wrap(errors.New("bad id"), goerrors.CategoryValidation, "document id invalid")
	h := NewHandler[sampleMessage](func(ctx context.Context, msg sampleMessage) error {
		return inner
	})

	err := h.Execute(context.Background(), sampleMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category to survive, got %v", err)
	}
}

func TestHandlerHonoursTimeoutOption(t *testing.T) {
	h := NewHandler[sampleMessage](func(ctx context.Context, msg sampleMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
			return nil
		}
	}, WithTimeout[sampleMessage](10*time.Millisecond))

	err := h.Execute(context.Background(), sampleMessage{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category for timeout, got %v", err)
	}
}

func TestHandlerTelemetryReceivesOutcome(t *testing.T) {
	var infos []TelemetryInfo
	record := func(ctx context.Context, msg sampleMessage, info TelemetryInfo) {
		infos = append(infos, info)
	}

	calls := 0
	h := NewHandler[sampleMessage](func(ctx context.Context, msg sampleMessage) error {
		calls++
		if calls > 1 {
			return context.Canceled
		}
		return nil
	},
		WithOperation[sampleMessage]("compile"),
		WithMessageFields(func(msg sampleMessage) map[string]any {
			return map[string]any{"document_id": msg.DocumentID}
		}),
		WithTelemetry(Telemetry[sampleMessage](record)),
	)

	if err := h.Execute(context.Background(), sampleMessage{DocumentID: "doc-1"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if err := h.Execute(context.Background(), sampleMessage{DocumentID: "doc-2"}); err == nil {
		t.Fatal("expected context error on second run")
	}

	if len(infos) != 2 {
		t.Fatalf("expected 2 telemetry calls, got %d", len(infos))
	}
	first := infos[0]
	if first.Status != TelemetryStatusSuccess || first.Command != "md2docs.test.sample_message" || first.Operation != "compile" {
		t.Fatalf("unexpected first telemetry %#v", first)
	}
	if first.Fields["document_id"] != "doc-1" || first.Fields["operation"] != "compile" {
		t.Fatalf("unexpected fields %#v", first.Fields)
	}
	if infos[1].Status != TelemetryStatusContextError || infos[1].Error == nil {
		t.Fatalf("unexpected second telemetry %#v", infos[1])
	}
}

type publishMessage struct {
	DocumentID string
}

func (publishMessage) Type() string { return "md2docs.test.publish_message" }

func (m publishMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.DocumentID, validation.Required),
	)
}

type entry struct {
	level  string
	msg    string
	fields map[string]any
}

type recordingLogger struct {
	fields  map[string]any
	entries *[]entry
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{entries: &[]entry{}}
}

func (l *recordingLogger) log(level, msg string) {
	*l.entries = append(*l.entries, entry{level: level, msg: msg, fields: l.fields})
}

func (l *recordingLogger) Trace(msg string, _ ...any) { l.log("trace", msg) }
func (l *recordingLogger) Debug(msg string, _ ...any) { l.log("debug", msg) }
func (l *recordingLogger) Info(msg string, _ ...any)  { l.log("info", msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.log("warn", msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.log("error", msg) }
func (l *recordingLogger) Fatal(msg string, _ ...any) { l.log("fatal", msg) }

func (l *recordingLogger) WithContext(context.Context) interfaces.Logger { return l }

func (l *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	merged := map[string]any{}
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &recordingLogger{fields: merged, entries: l.entries}
}

func (l *recordingLogger) find(level, msg string) (entry, bool) {
	for _, e := range *l.entries {
		if e.level == level && e.msg == msg {
			return e, true
		}
	}
	return entry{}, false
}

func TestTextCode(t *testing.T) {
	cases := []struct {
		operation string
		reason    string
		want      string
	}{
		{operation: "publish.document", reason: "FAILED", want: "PUBLISH_DOCUMENT_FAILED"},
		{operation: " compile.markdown ", reason: "TIMEOUT", want: "COMPILE_MARKDOWN_TIMEOUT"},
		{operation: "", reason: "INVALID", want: "COMMAND_INVALID"},
	}
	for _, tc := range cases {
		if got := TextCode(tc.operation, tc.reason); got != tc.want {
			t.Fatalf("TextCode(%q, %q) = %q, want %q", tc.operation, tc.reason, got, tc.want)
		}
	}
}

func TestHandlerErrorCarriesOperationCodeAndRecordedFields(t *testing.T) {
	h := NewHandler(func(ctx context.Context, msg publishMessage) error {
		RecordFields(ctx, map[string]any{"run_id": "run-7"})
		return errors.New("batch update: 500")
	},
		WithOperation[publishMessage]("publish.document"),
		WithMessageFields(func(msg publishMessage) map[string]any {
			return map[string]any{"document_id": msg.DocumentID}
		}),
	)

	err := h.Execute(context.Background(), publishMessage{DocumentID: "doc-1"})
	var typed *goerrors.Error
	if !errors.As(err, &typed) {
		t.Fatalf("expected go-errors error, got %T %v", err, err)
	}
	if typed.TextCode != "PUBLISH_DOCUMENT_FAILED" {
		t.Fatalf("text code = %q", typed.TextCode)
	}
	if typed.Metadata["document_id"] != "doc-1" || typed.Metadata["run_id"] != "run-7" {
		t.Fatalf("unexpected metadata %#v", typed.Metadata)
	}
}

func TestHandlerAnnotatesCategorisedErrors(t *testing.T) {
	inner := goerrors.Wrap(errors.New("read back"), goerrors.CategoryCommand, "read document").
		WithTextCode("PUBLISH_READ_BACK_FAILED")
	h := NewHandler(func(ctx context.Context, msg publishMessage) error {
		return inner
	},
		WithOperation[publishMessage]("publish.document"),
		WithMessageFields(func(msg publishMessage) map[string]any {
			return map[string]any{"document_id": msg.DocumentID}
		}),
	)

	err := h.Execute(context.Background(), publishMessage{DocumentID: "doc-2"})
	var typed *goerrors.Error
	if !errors.As(err, &typed) {
		t.Fatalf("expected go-errors error, got %v", err)
	}
	if typed.TextCode != "PUBLISH_READ_BACK_FAILED" {
		t.Fatalf("expected original text code kept, got %q", typed.TextCode)
	}
	if typed.Metadata["document_id"] != "doc-2" {
		t.Fatalf("expected document id metadata, got %#v", typed.Metadata)
	}
	if len(inner.Metadata) != 0 {
		t.Fatalf("expected original error untouched, got %#v", inner.Metadata)
	}
}

func TestHandlerValidationListsFields(t *testing.T) {
	h := NewHandler(func(ctx context.Context, msg publishMessage) error {
		return nil
	}, WithOperation[publishMessage]("publish.document"))

	err := h.Execute(context.Background(), publishMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	var typed *goerrors.Error
	if !errors.As(err, &typed) || typed.TextCode != "PUBLISH_DOCUMENT_INVALID" {
		t.Fatalf("unexpected validation error %#v", err)
	}
	if len(typed.ValidationErrors) != 1 || typed.ValidationErrors[0].Field != "DocumentID" {
		t.Fatalf("expected DocumentID field error, got %#v", typed.ValidationErrors)
	}
}

func TestHandlerExposesMessageFieldsOnContext(t *testing.T) {
	var seen map[string]any
	h := NewHandler(func(ctx context.Context, msg publishMessage) error {
		seen = logging.ContextFields(ctx)
		return nil
	},
		WithOperation[publishMessage]("publish.document"),
		WithMessageFields(func(msg publishMessage) map[string]any {
			return map[string]any{"document_id": msg.DocumentID}
		}),
	)

	if err := h.Execute(context.Background(), publishMessage{DocumentID: "doc-3"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if seen["document_id"] != "doc-3" || seen["operation"] != "publish.document" {
		t.Fatalf("unexpected context fields %#v", seen)
	}
}

func TestRecordFieldsOutsideHandlerIsNoOp(t *testing.T) {
	ctx := context.Background()
	RecordFields(ctx, map[string]any{"run_id": "x"})
	if fields := logging.ContextFields(ctx); fields != nil {
		t.Fatalf("expected untouched context, got %#v", fields)
	}
}

func TestDefaultTelemetryNamesEventsAfterOperation(t *testing.T) {
	logger := newRecordingLogger()
	calls := 0
	h := NewHandler(func(ctx context.Context, msg publishMessage) error {
		calls++
		RecordFields(ctx, map[string]any{"run_id": "run-1"})
		if calls > 1 {
			return errors.New("batch update: 500")
		}
		return nil
	},
		WithOperation[publishMessage]("publish.document"),
		WithTelemetry(DefaultTelemetry[publishMessage](logger)),
	)

	_ = h.Execute(context.Background(), publishMessage{DocumentID: "doc-1"})
	_ = h.Execute(context.Background(), publishMessage{DocumentID: "doc-1"})

	completed, ok := logger.find("info", "publish.document.completed")
	if !ok {
		t.Fatalf("expected completed entry, got %#v", *logger.entries)
	}
	if completed.fields["run_id"] != "run-1" {
		t.Fatalf("expected run id on completed entry, got %#v", completed.fields)
	}
	if _, ok := logger.find("error", "publish.document.failed"); !ok {
		t.Fatalf("expected failed entry, got %#v", *logger.entries)
	}
}

func TestTelemetryInfoEvent(t *testing.T) {
	cases := []struct {
		info TelemetryInfo
		want string
	}{
		{TelemetryInfo{Operation: "compile.markdown", Status: TelemetryStatusSuccess}, "compile.markdown.completed"},
		{TelemetryInfo{Operation: "publish.document", Status: TelemetryStatusContextError}, "publish.document.interrupted"},
		{TelemetryInfo{Status: TelemetryStatusFailed}, "command.execute.failed"},
	}
	for _, tc := range cases {
		if got := tc.info.Event(); got != tc.want {
			t.Fatalf("Event() = %q, want %q", got, tc.want)
		}
	}
}
