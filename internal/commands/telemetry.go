package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-md2docs/internal/logging"
	"github.com/goliatone/go-md2docs/pkg/interfaces"
)

// TelemetryStatus captures the result category for command execution.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo describes one command run. Fields holds the message fields
// plus whatever the run recorded with RecordFields; Logger already carries
// them.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Event names the log entry for the outcome, e.g. "publish.document.completed".
func (info TelemetryInfo) Event() string {
	name := info.Operation
	if name == "" {
		name = "command.execute"
	}
	switch info.Status {
	case TelemetryStatusSuccess:
		return name + ".completed"
	case TelemetryStatusContextError:
		return name + ".interrupted"
	default:
		return name + ".failed"
	}
}

// Telemetry represents an optional callback invoked after command execution.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs one entry per run named after the operation. Failed
// runs log the error text code so publish failures can be grouped by step.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	logger = logging.OrNoOp(logger)
	return func(ctx context.Context, _ T, info TelemetryInfo) {
		entry := logging.WithFields(logger, info.Fields)
		args := []any{"duration_ms", info.Duration.Milliseconds()}
		if info.Status == TelemetryStatusSuccess {
			entry.Info(info.Event(), args...)
			return
		}
		if code := errorTextCode(info.Error); code != "" {
			args = append(args, "text_code", code)
		}
		args = append(args, "error", info.Error)
		if info.Status == TelemetryStatusContextError {
			entry.Warn(info.Event(), args...)
			return
		}
		entry.Error(info.Event(), args...)
	}
}
