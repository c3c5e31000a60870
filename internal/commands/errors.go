package commands

import (
	"context"
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes are the handler operation upper-cased with a reason suffix, so
// a publish timeout reads PUBLISH_DOCUMENT_TIMEOUT and a compile validation
// failure COMPILE_MARKDOWN_INVALID.
const (
	reasonInvalid  = "INVALID"
	reasonCanceled = "CANCELED"
	reasonTimeout  = "TIMEOUT"
	reasonContext  = "CONTEXT_ERROR"
	reasonFailed   = "FAILED"

	defaultCodePrefix = "COMMAND"
)

var codeReplacer = strings.NewReplacer(".", "_", "-", "_", " ", "_")

// TextCode returns the go-errors text code a handler with operation emits for
// reason.
func TextCode(operation, reason string) string {
	prefix := strings.ToUpper(codeReplacer.Replace(strings.TrimSpace(operation)))
	if prefix == "" {
		prefix = defaultCodePrefix
	}
	return prefix + "_" + reason
}

// wrapValidationError turns message validation failures into a validation
// error listing the offending fields.
func wrapValidationError(err error, operation string, fields map[string]any) error {
	if err == nil {
		return nil
	}
	wrapped := goerrors.FromOzzoValidation(err, "invalid "+describe(operation)+" message")
	return wrapped.
		WithTextCode(TextCode(operation, reasonInvalid)).
		WithMetadata(fields)
}

func wrapContextError(err error, operation string, fields map[string]any) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return annotate(err, fields)
	}
	name := describe(operation)
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, name+" cancelled").
			WithTextCode(TextCode(operation, reasonCanceled)).
			WithSeverity(goerrors.SeverityWarning).
			WithMetadata(fields)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, name+" deadline exceeded").
			WithTextCode(TextCode(operation, reasonTimeout)).
			WithMetadata(fields)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, name+" context error").
			WithTextCode(TextCode(operation, reasonContext)).
			WithMetadata(fields)
	}
}

func wrapExecuteError(err error, operation string, fields map[string]any) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return annotate(err, fields)
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, describe(operation)+" failed").
		WithTextCode(TextCode(operation, reasonFailed)).
		WithMetadata(fields)
}

// annotate adds fields the categorised error does not carry yet, keeping its
// category, text code and message.
func annotate(err error, fields map[string]any) error {
	var typed *goerrors.Error
	if len(fields) == 0 || !errors.As(err, &typed) {
		return err
	}
	missing := make(map[string]any, len(fields))
	for key, value := range fields {
		if _, ok := typed.Metadata[key]; !ok {
			missing[key] = value
		}
	}
	if len(missing) == 0 {
		return err
	}
	return typed.Clone().WithMetadata(missing)
}

func describe(operation string) string {
	if name := strings.TrimSpace(operation); name != "" {
		return name
	}
	return "command"
}

// errorTextCode returns the go-errors text code carried by err, if any.
func errorTextCode(err error) string {
	var typed *goerrors.Error
	if errors.As(err, &typed) {
		return typed.TextCode
	}
	return ""
}
