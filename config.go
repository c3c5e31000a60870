package md2docs

import "github.com/goliatone/go-md2docs/internal/runtimeconfig"

var (
	ErrStartIndexInvalid        = runtimeconfig.ErrStartIndexInvalid
	ErrTableOverheadInvalid     = runtimeconfig.ErrTableOverheadInvalid
	ErrMarkdownExtensionUnknown = runtimeconfig.ErrMarkdownExtensionUnknown
	ErrPublishFeatureRequired   = runtimeconfig.ErrPublishFeatureRequired
	ErrLedgerDriverUnknown      = runtimeconfig.ErrLedgerDriverUnknown
	ErrLedgerRequiresPublish    = runtimeconfig.ErrLedgerRequiresPublish
	ErrDocsCredentialsRequired  = runtimeconfig.ErrDocsCredentialsRequired
	ErrLoggingProviderRequired  = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config         = runtimeconfig.Config
	CompilerConfig = runtimeconfig.CompilerConfig
	MarkdownConfig = runtimeconfig.MarkdownConfig
	DocsConfig     = runtimeconfig.DocsConfig
	LedgerConfig   = runtimeconfig.LedgerConfig
	Features       = runtimeconfig.Features
	LoggingConfig  = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
