package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-md2docs/pkg/interfaces"
)

const (
	rootModule     = "md2docs"
	compilerModule = "md2docs.compiler"
	publishModule  = "md2docs.publish"
	gdocsModule    = "md2docs.gdocs"
)

const (
	fieldDocumentID = "document_id"
	fieldRunID      = "run_id"
	fieldAction     = "action"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// CompilerLogger returns the logger namespace reserved for the markdown compiler.
func CompilerLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, compilerModule)
}

// PublishLogger returns the logger namespace reserved for the publish pipeline.
func PublishLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, publishModule)
}

// DocsLogger returns the logger namespace reserved for the remote document client.
func DocsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, gdocsModule)
}

// WithDocumentContext enriches logger with the target document, publish run
// and action. Empty values are ignored.
func WithDocumentContext(logger interfaces.Logger, documentID, runID, action string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(documentID); trimmed != "" {
		fields[fieldDocumentID] = trimmed
	}
	if trimmed := strings.TrimSpace(runID); trimmed != "" {
		fields[fieldRunID] = trimmed
	}
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		fields[fieldAction] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
