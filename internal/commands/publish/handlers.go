package publishcmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-md2docs/internal/commands"
	"github.com/goliatone/go-md2docs/internal/logging"
	"github.com/goliatone/go-md2docs/internal/publish"
	"github.com/goliatone/go-md2docs/pkg/interfaces"
)

const (
	publishOperation = "publish.document"
	compileOperation = "compile.markdown"
)

// ErrPublishFeatureDisabled is returned when the publish feature flag is off.
var ErrPublishFeatureDisabled = errors.New("publish command: feature disabled")

var (
	_ command.Commander[PublishDocumentCommand] = (*PublishDocumentHandler)(nil)
	_ command.Commander[CompileMarkdownCommand] = (*CompileMarkdownHandler)(nil)
)

// DocumentPublisher is the publish pipeline contract consumed by the handler.
type DocumentPublisher interface {
	Publish(ctx context.Context, in publish.Input) (*publish.Report, error)
}

// PublishDocumentHandler runs publish jobs through the shared command handler foundation.
type PublishDocumentHandler struct {
	inner *commands.Handler[PublishDocumentCommand]
}

// NewPublishDocumentHandler creates a handler bound to publisher.
func NewPublishDocumentHandler(publisher DocumentPublisher, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[PublishDocumentCommand]) *PublishDocumentHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg PublishDocumentCommand) error {
		if !gates.publishEnabled() {
			return ErrPublishFeatureDisabled
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		report, err := publisher.Publish(ctx, publish.Input{
			DocumentID: msg.DocumentID,
			Markdown:   msg.Markdown,
			StartIndex: msg.StartIndex,
			Append:     msg.Append,
			SourcePath: msg.SourcePath,
			Force:      msg.Force,
		})
		var outcome map[string]any
		if report != nil {
			outcome = map[string]any{
				"run_id":         report.RunID,
				"phase1":         report.Phase1,
				"phase2":         report.Phase2,
				"tables":         report.Tables,
				"skipped_tables": report.SkippedTables,
				"unchanged":      report.Unchanged,
			}
			commands.RecordFields(ctx, outcome)
		}
		if err != nil {
			return err
		}
		if outcome != nil {
			logging.WithFields(baseLogger, outcome).Info("publish.command.document.completed")
		}
		if msg.OnReport != nil {
			msg.OnReport(report)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[PublishDocumentCommand]{
		commands.WithLogger[PublishDocumentCommand](baseLogger),
		commands.WithOperation[PublishDocumentCommand](publishOperation),
		commands.WithMessageFields(func(msg PublishDocumentCommand) map[string]any {
			fields := map[string]any{
				"document_id": msg.DocumentID,
			}
			if msg.StartIndex > 0 {
				fields["start_index"] = msg.StartIndex
			}
			if msg.Append {
				fields["append"] = true
			}
			if msg.SourcePath != "" {
				fields["source_path"] = msg.SourcePath
			}
			if msg.Force {
				fields["force"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[PublishDocumentCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PublishDocumentHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[PublishDocumentCommand].
func (h *PublishDocumentHandler) Execute(ctx context.Context, msg PublishDocumentCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CompileMarkdownHandler compiles Markdown into the first-phase batch.
type CompileMarkdownHandler struct {
	inner *commands.Handler[CompileMarkdownCommand]
}

// NewCompileMarkdownHandler creates a handler bound to compiler.
func NewCompileMarkdownHandler(compiler interfaces.MarkdownCompiler, logger interfaces.Logger, opts ...commands.HandlerOption[CompileMarkdownCommand]) *CompileMarkdownHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg CompileMarkdownCommand) error {
		start := msg.StartIndex
		if start == 0 {
			start = 1
		}
		result := compiler.CompileAt(msg.Markdown, start)
		commands.RecordFields(ctx, map[string]any{
			"requests": len(result.Requests),
			"tables":   len(result.Tables),
		})
		baseLogger.Debug("publish.command.compile.completed",
			"requests", len(result.Requests),
			"tables", len(result.Tables),
		)
		if msg.OnResult != nil {
			msg.OnResult(result)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[CompileMarkdownCommand]{
		commands.WithLogger[CompileMarkdownCommand](baseLogger),
		commands.WithOperation[CompileMarkdownCommand](compileOperation),
		commands.WithTelemetry(commands.DefaultTelemetry[CompileMarkdownCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CompileMarkdownHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[CompileMarkdownCommand].
func (h *CompileMarkdownHandler) Execute(ctx context.Context, msg CompileMarkdownCommand) error {
	return h.inner.Execute(ctx, msg)
}
