package commands

import (
	"context"
	"errors"
	"maps"
	"strings"
	"sync"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-md2docs/internal/logging"
	"github.com/goliatone/go-md2docs/pkg/interfaces"
)

// DefaultCommandTimeout bounds a command run, covering both remote batches of a publish.
const DefaultCommandTimeout = 30 * time.Second

const commandModuleRoot = "md2docs.commands"

// HandlerOption configures a Handler instance.
type HandlerOption[T command.Message] func(*Handler[T])

// Handler wraps command execution with shared concerns (context, logging, error tagging).
type Handler[T command.Message] struct {
	exec      command.CommandFunc[T]
	logger    interfaces.Logger
	timeout   time.Duration
	operation string
	fields    func(T) map[string]any
	telemetry Telemetry[T]
}

// NewHandler creates a handler that satisfies go-command's Commander interface while applying
// validation, logging and timeout enforcement.
func NewHandler[T command.Message](fn command.CommandFunc[T], opts ...HandlerOption[T]) *Handler[T] {
	if fn == nil {
		panic("commands: handler function cannot be nil")
	}
	h := &Handler[T]{
		exec:    fn,
		logger:  logging.NoOp(),
		timeout: DefaultCommandTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Execute conforms to command.Commander[T].Execute. Message fields (document id,
// source path) are attached to the context for downstream loggers, and fields
// the wrapped function records with RecordFields (run id, request counts) join
// them on the outcome log entry and on any returned error.
func (h *Handler[T]) Execute(ctx context.Context, msg T) error {
	messageType := command.GetMessageType(msg)
	fields := map[string]any{
		"command": messageType,
	}
	if h.operation != "" {
		fields["operation"] = h.operation
	}
	if h.fields != nil {
		maps.Copy(fields, h.fields(msg))
	}

	if err := command.ValidateMessage(msg); err != nil {
		return wrapValidationError(err, h.operation, fields)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	if err := ctx.Err(); err != nil {
		return wrapContextError(err, h.operation, fields)
	}

	outcome := &outcomeFields{}
	ctx = context.WithValue(ctx, outcomeKey{}, outcome)
	ctx = logging.ContextWithFields(ctx, fields)
	logging.WithFields(h.logger, fields).Debug("command.execute.start")

	started := time.Now()
	err := h.exec(ctx, msg)
	maps.Copy(fields, outcome.snapshot())

	status := TelemetryStatusSuccess
	switch {
	case err != nil && isContextError(err):
		status = TelemetryStatusContextError
		err = wrapContextError(err, h.operation, fields)
	case err != nil:
		status = TelemetryStatusFailed
		err = wrapExecuteError(err, h.operation, fields)
	case ctx.Err() != nil:
		status = TelemetryStatusContextError
		err = wrapContextError(ctx.Err(), h.operation, fields)
	}

	logger := logging.WithFields(h.logger, fields)
	if h.telemetry != nil {
		h.telemetry(ctx, msg, TelemetryInfo{
			Command:   messageType,
			Operation: h.operation,
			Fields:    fields,
			Duration:  time.Since(started),
			Error:     err,
			Status:    status,
			Logger:    logger,
		})
	} else if err != nil {
		logger.Error("command.execute.failed", "error", err)
	} else {
		logger.Info("command.execute.success")
	}
	return err
}

// RecordFields attaches outcome fields to the command running under ctx. They
// are merged into the handler's outcome log entry and error metadata. Outside
// a handler the call is a no-op.
func RecordFields(ctx context.Context, fields map[string]any) {
	if ctx == nil || len(fields) == 0 {
		return
	}
	if outcome, ok := ctx.Value(outcomeKey{}).(*outcomeFields); ok {
		outcome.add(fields)
	}
}

type outcomeKey struct{}

type outcomeFields struct {
	mu     sync.Mutex
	fields map[string]any
}

func (o *outcomeFields) add(fields map[string]any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fields == nil {
		o.fields = make(map[string]any, len(fields))
	}
	maps.Copy(o.fields, fields)
}

func (o *outcomeFields) snapshot() map[string]any {
	o.mu.Lock()
	defer o.mu.Unlock()
	return maps.Clone(o.fields)
}

// WithTimeout overrides the default execution timeout. Zero or negative
// disables it.
func WithTimeout[T command.Message](timeout time.Duration) HandlerOption[T] {
	return func(h *Handler[T]) {
		if timeout <= 0 {
			h.timeout = 0
			return
		}
		h.timeout = timeout
	}
}

// WithLogger injects the logger used during execution. Defaults to a no-op logger.
func WithLogger[T command.Message](logger interfaces.Logger) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.logger = EnsureLogger(logger)
	}
}

// WithOperation names the handler. The name is logged with every entry and
// prefixes the text codes of returned errors.
func WithOperation[T command.Message](operation string) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.operation = operation
	}
}

// WithMessageFields derives extra log fields from each message.
func WithMessageFields[T command.Message](fn func(T) map[string]any) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.fields = fn
	}
}

// WithTelemetry replaces the default outcome logging with fn.
func WithTelemetry[T command.Message](fn Telemetry[T]) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.telemetry = fn
	}
}

// EnsureLogger returns a usable logger, defaulting to a no-op logger when nil.
func EnsureLogger(logger interfaces.Logger) interfaces.Logger {
	return logging.OrNoOp(logger)
}

// CommandLogger returns the logger for the publish or compile command module,
// tagged with the component and module fields.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
