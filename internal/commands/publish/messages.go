package publishcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-md2docs/internal/publish"
	"github.com/goliatone/go-md2docs/pkg/docmodel"
)

const (
	publishDocumentMessageType = "md2docs.publish.document"
	compileMarkdownMessageType = "md2docs.compile.markdown"
)

// PublishDocumentCommand writes Markdown into a remote document using the
// two-phase table protocol.
type PublishDocumentCommand struct {
	// DocumentID selects the target document.
	DocumentID string `json:"document_id"`
	// Markdown is the source to compile.
	Markdown string `json:"markdown"`
	// StartIndex overrides the insertion point. Zero uses the default.
	StartIndex int `json:"start_index,omitempty"`
	// Append writes after the existing body instead of at the start.
	Append bool `json:"append,omitempty"`
	// SourcePath names the file the markdown came from, for the ledger.
	SourcePath string `json:"source_path,omitempty"`
	// Force bypasses the ledger's unchanged check.
	Force bool `json:"force,omitempty"`
	// OnReport receives the run report after a successful publish.
	OnReport func(*publish.Report) `json:"-"`
}

// Type implements command.Message.
func (PublishDocumentCommand) Type() string { return publishDocumentMessageType }

// Validate ensures a target and source are present before handlers execute.
func (cmd PublishDocumentCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.DocumentID, validation.Required, validation.By(notBlank(
			"md2docs.publish.document.document_id_required", "document id is required",
		))),
		validation.Field(&cmd.Markdown, validation.Required),
		validation.Field(&cmd.StartIndex, validation.Min(0)),
	)
}

// CompileMarkdownCommand compiles Markdown without contacting the remote
// service.
type CompileMarkdownCommand struct {
	Markdown   string `json:"markdown"`
	StartIndex int    `json:"start_index,omitempty"`
	// OnResult receives the compiled requests and table descriptors.
	OnResult func(docmodel.Result) `json:"-"`
}

// Type implements command.Message.
func (CompileMarkdownCommand) Type() string { return compileMarkdownMessageType }

// Validate rejects negative start indices.
func (cmd CompileMarkdownCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.StartIndex, validation.Min(0)),
	)
}

func notBlank(code, message string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}
