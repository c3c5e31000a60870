package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	md2docs "github.com/goliatone/go-md2docs"
	publishcmd "github.com/goliatone/go-md2docs/internal/commands/publish"
	"github.com/goliatone/go-md2docs/internal/logging"
	"github.com/goliatone/go-md2docs/internal/markdown"
	"github.com/goliatone/go-md2docs/pkg/interfaces"
)

// Options captures configuration for md2docs CLI bootstraps.
type Options struct {
	StartIndex      int
	TableOverhead   *int
	DisableEmoji    bool
	Extensions      []string
	Publish         bool
	CredentialsFile string
	Endpoint        string
	LedgerDriver    string
	LedgerDSN       string
	LogLevel        string
	LoggerProvider  interfaces.LoggerProvider
	DocumentService interfaces.DocumentService
}

// Module wraps the md2docs module and the command handlers the CLIs drive.
// Publish is nil unless Options.Publish is set.
type Module struct {
	Module  *md2docs.Module
	Compile *publishcmd.CompileMarkdownHandler
	Publish *publishcmd.PublishDocumentHandler
	Logger  interfaces.Logger
}

// BuildModule constructs an md2docs module configured from opts.
func BuildModule(opts Options) (*Module, error) {
	cfg := md2docs.DefaultConfig()
	cfg.Features.Logger = true
	if opts.StartIndex > 0 {
		cfg.Compiler.StartIndex = opts.StartIndex
	}
	if opts.TableOverhead != nil {
		cfg.Compiler.TableCellOverhead = *opts.TableOverhead
	}
	cfg.Compiler.Emoji = !opts.DisableEmoji
	if len(opts.Extensions) > 0 {
		cfg.Markdown.Extensions = cloneStrings(opts.Extensions)
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}
	if opts.Publish {
		cfg.Features.Publish = true
		cfg.Docs.CredentialsFile = strings.TrimSpace(opts.CredentialsFile)
		cfg.Docs.Endpoint = strings.TrimSpace(opts.Endpoint)
		cfg.Ledger.Driver = strings.TrimSpace(opts.LedgerDriver)
		cfg.Ledger.DSN = strings.TrimSpace(opts.LedgerDSN)
	}

	diOpts := []md2docs.Option{}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, md2docs.WithLoggerProvider(opts.LoggerProvider))
	}
	if opts.DocumentService != nil {
		diOpts = append(diOpts, md2docs.WithDocumentService(opts.DocumentService))
	}

	module, err := md2docs.New(cfg, diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise md2docs module: %w", err)
	}

	provider := module.Container().LoggerProvider()
	out := &Module{
		Module:  module,
		Compile: publishcmd.NewCompileMarkdownHandler(module.Container().Compiler(), logging.ModuleLogger(provider, "md2docs.commands.compile")),
		Logger:  logging.ModuleLogger(provider, "md2docs.cli"),
	}

	if opts.Publish {
		handlers, err := module.RegisterCommands(context.Background(), nil)
		if err != nil {
			return nil, fmt.Errorf("register publish commands: %w", err)
		}
		out.Publish = handlers.Publish
	}

	return out, nil
}

// Source is a markdown file split into front matter and body.
type Source struct {
	Path        string
	FrontMatter markdown.FrontMatter
	Body        string
}

// ReadSource loads path, or stdin when path is "-", and splits off any front
// matter.
func ReadSource(path string) (*Source, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("markdown file is required")
	}

	if path == "-" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		meta, body, err := markdown.SplitFrontMatter(raw)
		if err != nil {
			return nil, fmt.Errorf("stdin: %w", err)
		}
		return &Source{Path: path, FrontMatter: meta, Body: string(body)}, nil
	}

	loader := markdown.NewLoader(os.DirFS(filepath.Dir(path)), markdown.LoaderConfig{Pattern: "*"})
	file, err := loader.LoadFile(context.Background(), filepath.Base(path))
	if err != nil {
		return nil, err
	}
	return &Source{Path: path, FrontMatter: file.FrontMatter, Body: string(file.Body)}, nil
}

// LoadSources reads every file matching pattern under dir.
func LoadSources(ctx context.Context, dir, pattern string, recursive bool) ([]*Source, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("markdown directory is required")
	}
	loader := markdown.NewLoader(os.DirFS(dir), markdown.LoaderConfig{
		Pattern:   pattern,
		Recursive: recursive,
	})
	files, err := loader.LoadDirectory(ctx, ".")
	if err != nil {
		return nil, err
	}
	sources := make([]*Source, 0, len(files))
	for _, file := range files {
		sources = append(sources, &Source{
			Path:        filepath.Join(dir, filepath.FromSlash(file.Path)),
			FrontMatter: file.FrontMatter,
			Body:        string(file.Body),
		})
	}
	return sources, nil
}

// WriteJSON encodes value to w, indenting when pretty is set.
func WriteJSON(w io.Writer, value any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(value)
}

// SplitList parses a comma separated list into a trimmed slice.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func cloneStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
