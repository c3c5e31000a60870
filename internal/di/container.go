package di

import (
	"context"
	"errors"
	"strings"
	"sync"

	publishcmd "github.com/goliatone/go-md2docs/internal/commands/publish"
	"github.com/goliatone/go-md2docs/internal/compiler"
	"github.com/goliatone/go-md2docs/internal/gdocs"
	"github.com/goliatone/go-md2docs/internal/ledger"
	"github.com/goliatone/go-md2docs/internal/logging"
	"github.com/goliatone/go-md2docs/internal/logging/console"
	"github.com/goliatone/go-md2docs/internal/logging/gologger"
	"github.com/goliatone/go-md2docs/internal/markdown"
	"github.com/goliatone/go-md2docs/internal/publish"
	"github.com/goliatone/go-md2docs/internal/runtimeconfig"
	"github.com/goliatone/go-md2docs/pkg/interfaces"
	"github.com/uptrace/bun"
)

// ErrDocumentServiceUnavailable is returned when publishing is requested
// without a document service or publish feature.
var ErrDocumentServiceUnavailable = errors.New("md2docs: document service unavailable, enable the publish feature or inject a service")

// Container wires the compiler, remote document service and publish
// pipeline from a single Config.
type Container struct {
	config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	lexer          *markdown.Lexer
	compiler       *compiler.Compiler

	docsMu    sync.Mutex
	docs      interfaces.DocumentService
	ledger    ledger.Repository
	ledgerDB  *bun.DB
	publisher *publish.Publisher
}

// Option mutates the container before services are built.
type Option func(*Container)

// WithLoggerProvider overrides the provider derived from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithDocumentService injects a remote document service, bypassing the
// Google Docs client built from Config.Docs.
func WithDocumentService(svc interfaces.DocumentService) Option {
	return func(c *Container) {
		if svc != nil {
			c.docs = svc
		}
	}
}

// WithLedger injects the publish ledger, bypassing the database configured
// in Config.Ledger.
func WithLedger(repo ledger.Repository) Option {
	return func(c *Container) {
		if repo != nil {
			c.ledger = repo
		}
	}
}

// NewContainer validates cfg and builds the compiler. The document service
// is created on first use.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.loggerProvider == nil {
		provider, err := configureLoggerProvider(cfg)
		if err != nil {
			return nil, err
		}
		c.loggerProvider = provider
	}

	c.lexer = markdown.NewLexer(markdown.Options{Extensions: cfg.Markdown.Extensions})

	compilerOpts := []compiler.Option{
		compiler.WithLexer(c.lexer),
		compiler.WithStartIndex(cfg.Compiler.StartIndex),
		compiler.WithTableAdvance(compiler.TableAdvance(cfg.Compiler.TableCellOverhead)),
		compiler.WithLogger(logging.CompilerLogger(c.loggerProvider)),
	}
	if !cfg.Compiler.Emoji {
		compilerOpts = append(compilerOpts, compiler.WithEmoji(func(s string) string { return s }))
	}
	c.compiler = compiler.New(compilerOpts...)

	logging.ModuleLogger(c.loggerProvider, "md2docs.di").Debug("container.configured",
		"start_index", cfg.Compiler.StartIndex,
		"table_overhead", cfg.Compiler.TableCellOverhead,
		"publish", cfg.Features.Publish,
	)
	return c, nil
}

func configureLoggerProvider(cfg runtimeconfig.Config) (interfaces.LoggerProvider, error) {
	if !cfg.Features.Logger {
		return nil, nil
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
			Focus:     cfg.Logging.Focus,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		level, _ := console.ParseLevel(cfg.Logging.Level)
		return console.NewProvider(console.Options{MinLevel: level}), nil
	}
}

// Config returns the configuration the container was built with.
func (c *Container) Config() runtimeconfig.Config {
	return c.config
}

// LoggerProvider returns the configured provider, which may be nil when
// logging is disabled.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Compiler returns the configured markdown compiler.
func (c *Container) Compiler() *compiler.Compiler {
	return c.compiler
}

// Lexer returns the configured markdown tokenizer.
func (c *Container) Lexer() *markdown.Lexer {
	return c.lexer
}

// DocumentService returns the injected service or builds the Google Docs
// client from Config.Docs on first use.
func (c *Container) DocumentService(ctx context.Context) (interfaces.DocumentService, error) {
	c.docsMu.Lock()
	defer c.docsMu.Unlock()

	if c.docs != nil {
		return c.docs, nil
	}
	if !c.config.Features.Publish {
		return nil, ErrDocumentServiceUnavailable
	}

	svc, err := gdocs.NewService(ctx, gdocs.Config{
		CredentialsFile: c.config.Docs.CredentialsFile,
		Endpoint:        c.config.Docs.Endpoint,
	}, nil, gdocs.WithLogger(logging.DocsLogger(c.loggerProvider)))
	if err != nil {
		return nil, err
	}
	c.docs = svc
	return svc, nil
}

// Ledger returns the injected ledger or opens the database configured in
// Config.Ledger on first use. It returns nil when no ledger is configured.
func (c *Container) Ledger(ctx context.Context) (ledger.Repository, error) {
	c.docsMu.Lock()
	defer c.docsMu.Unlock()
	return c.ledgerLocked(ctx)
}

func (c *Container) ledgerLocked(ctx context.Context) (ledger.Repository, error) {
	if c.ledger != nil {
		return c.ledger, nil
	}
	dsn := strings.TrimSpace(c.config.Ledger.DSN)
	if dsn == "" {
		return nil, nil
	}

	db, err := ledger.Open(c.config.Ledger.Driver, dsn)
	if err != nil {
		return nil, err
	}
	repo := ledger.NewBunRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	c.ledgerDB = db
	c.ledger = repo
	return repo, nil
}

// Publisher returns the publish pipeline bound to the document service.
func (c *Container) Publisher(ctx context.Context) (*publish.Publisher, error) {
	docs, err := c.DocumentService(ctx)
	if err != nil {
		return nil, err
	}

	c.docsMu.Lock()
	defer c.docsMu.Unlock()
	if c.publisher == nil {
		repo, err := c.ledgerLocked(ctx)
		if err != nil {
			return nil, err
		}
		opts := []publish.Option{
			publish.WithCompiler(c.compiler),
			publish.WithLogger(logging.PublishLogger(c.loggerProvider)),
		}
		if repo != nil {
			opts = append(opts, publish.WithLedger(repo))
		}
		c.publisher = publish.NewPublisher(docs, opts...)
	}
	return c.publisher, nil
}

// Close releases the ledger database opened by the container.
func (c *Container) Close() error {
	c.docsMu.Lock()
	defer c.docsMu.Unlock()
	if c.ledgerDB == nil {
		return nil
	}
	err := c.ledgerDB.Close()
	c.ledgerDB = nil
	return err
}

// RegisterCommands builds the publish and compile command handlers and
// registers them with reg. The publish handler honours Features.Publish.
func (c *Container) RegisterCommands(ctx context.Context, reg publishcmd.CommandRegistry) (*publishcmd.HandlerSet, error) {
	publisher, err := c.Publisher(ctx)
	if err != nil {
		return nil, err
	}
	gates := publishcmd.FeatureGates{
		PublishEnabled: func() bool { return c.config.Features.Publish },
	}
	return publishcmd.RegisterPublishCommands(reg, publisher, c.compiler, c.loggerProvider, gates)
}
