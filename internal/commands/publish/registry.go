package publishcmd

import (
	"context"
	"errors"
	"fmt"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-md2docs/internal/commands"
	"github.com/goliatone/go-md2docs/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the function signature used by go-command registries.
type CronRegistrar func(command.HandlerConfig, any) error

// HandlerSet groups the handlers produced by RegisterPublishCommands.
type HandlerSet struct {
	Publish *PublishDocumentHandler
	Compile *CompileMarkdownHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	publishHandlerOpts []commands.HandlerOption[PublishDocumentCommand]
	compileHandlerOpts []commands.HandlerOption[CompileMarkdownCommand]
}

// WithPublishHandlerOptions forwards options to the PublishDocumentHandler constructor.
func WithPublishHandlerOptions(opts ...commands.HandlerOption[PublishDocumentCommand]) Option {
	return func(cfg *options) {
		cfg.publishHandlerOpts = append(cfg.publishHandlerOpts, opts...)
	}
}

// WithCompileHandlerOptions forwards options to the CompileMarkdownHandler constructor.
func WithCompileHandlerOptions(opts ...commands.HandlerOption[CompileMarkdownCommand]) Option {
	return func(cfg *options) {
		cfg.compileHandlerOpts = append(cfg.compileHandlerOpts, opts...)
	}
}

// RegisterPublishCommands builds the publish and compile handlers and registers them with
// reg when it is non-nil.
func RegisterPublishCommands(reg CommandRegistry, publisher DocumentPublisher, compiler interfaces.MarkdownCompiler, provider interfaces.LoggerProvider, gates FeatureGates, opts ...Option) (*HandlerSet, error) {
	if publisher == nil {
		return nil, errors.New("publish command registration: publisher is nil")
	}
	if compiler == nil {
		return nil, errors.New("publish command registration: compiler is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "publish")

	publishHandler := NewPublishDocumentHandler(publisher, logger, gates, cfg.publishHandlerOpts...)
	compileHandler := NewCompileMarkdownHandler(compiler, logger, cfg.compileHandlerOpts...)

	if reg != nil {
		if err := reg.RegisterCommand(publishHandler); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(compileHandler); err != nil {
			return nil, err
		}
	}

	return &HandlerSet{
		Publish: publishHandler,
		Compile: compileHandler,
	}, nil
}

// MessageSource yields the messages for one scheduled publish run. It is
// called on every tick so sources edited between runs are picked up.
type MessageSource func(ctx context.Context) ([]PublishDocumentCommand, error)

// RegisterPublishCron schedules a publish run on the registrar using cfg. Each
// run executes every message from source and joins their errors.
func RegisterPublishCron(reg CronRegistrar, handler *PublishDocumentHandler, cfg command.HandlerConfig, source MessageSource) error {
	if reg == nil || handler == nil || source == nil {
		return nil
	}
	return reg(cfg, func() error {
		ctx := context.Background()
		msgs, err := source(ctx)
		if err != nil {
			return err
		}
		var errs []error
		for _, msg := range msgs {
			if err := handler.Execute(ctx, msg); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", msg.DocumentID, err))
			}
		}
		return errors.Join(errs...)
	})
}
