package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-md2docs/internal/markdown"
)

var ErrStartIndexInvalid = errors.New("md2docs config: compiler start index must be positive")
var ErrTableOverheadInvalid = errors.New("md2docs config: table cell overhead must be zero or positive")
var ErrMarkdownExtensionUnknown = errors.New("md2docs config: markdown extension is not supported")
var ErrPublishFeatureRequired = errors.New("md2docs config: publish feature must be enabled to configure the docs service")
var ErrDocsCredentialsRequired = errors.New("md2docs config: docs credentials file is required when publishing is enabled")
var ErrLedgerDriverUnknown = errors.New("md2docs config: ledger driver is not supported")
var ErrLedgerRequiresPublish = errors.New("md2docs config: publish feature must be enabled to configure the ledger")
var ErrLoggingProviderRequired = errors.New("md2docs config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("md2docs config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("md2docs config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("md2docs config: logging format is invalid")

// Config aggregates compiler geometry, parser behaviour and adapter bindings.
type Config struct {
	Compiler CompilerConfig
	Markdown MarkdownConfig
	Docs     DocsConfig
	Ledger   LedgerConfig
	Features Features
	Logging  LoggingConfig
}

// CompilerConfig captures the index geometry of the target document.
type CompilerConfig struct {
	StartIndex int
	// TableCellOverhead is added to rows*(1+2*cols) when advancing past a
	// table skeleton.
	TableCellOverhead int
	Emoji             bool
}

// MarkdownConfig mirrors markdown.Options.
type MarkdownConfig struct {
	Extensions []string
}

// DocsConfig configures the remote document service client.
type DocsConfig struct {
	CredentialsFile string
	Endpoint        string
}

// LedgerConfig points the publish ledger at a database. An empty DSN
// disables the ledger.
type LedgerConfig struct {
	// Driver is "sqlite3" (default) or "postgres".
	Driver string
	DSN    string
}

// Features toggles optional functionality.
type Features struct {
	Logger  bool
	Publish bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns defaults matching the remote service's body layout.
func DefaultConfig() Config {
	return Config{
		Compiler: CompilerConfig{
			StartIndex:        1,
			TableCellOverhead: 3,
			Emoji:             true,
		},
		Markdown: MarkdownConfig{
			Extensions: []string{"table", "strikethrough"},
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if cfg.Compiler.StartIndex < 1 {
		return fmt.Errorf("%w: %d", ErrStartIndexInvalid, cfg.Compiler.StartIndex)
	}
	if cfg.Compiler.TableCellOverhead < 0 {
		return fmt.Errorf("%w: %d", ErrTableOverheadInvalid, cfg.Compiler.TableCellOverhead)
	}
	for _, ext := range cfg.Markdown.Extensions {
		if strings.TrimSpace(ext) == "" {
			continue
		}
		if !markdown.SupportedExtension(ext) {
			return fmt.Errorf("%w: %s", ErrMarkdownExtensionUnknown, ext)
		}
	}
	if cfg.Features.Publish {
		if strings.TrimSpace(cfg.Docs.CredentialsFile) == "" {
			return ErrDocsCredentialsRequired
		}
	} else if strings.TrimSpace(cfg.Docs.CredentialsFile) != "" || strings.TrimSpace(cfg.Docs.Endpoint) != "" {
		return ErrPublishFeatureRequired
	}
	if strings.TrimSpace(cfg.Ledger.DSN) != "" {
		if !cfg.Features.Publish {
			return ErrLedgerRequiresPublish
		}
		if !isSupportedLedgerDriver(cfg.Ledger.Driver) {
			return fmt.Errorf("%w: %s", ErrLedgerDriverUnknown, cfg.Ledger.Driver)
		}
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLedgerDriver(driver string) bool {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite3", "postgres":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
