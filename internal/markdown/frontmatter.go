package markdown

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
)

// FrontMatter is the optional metadata block at the top of a markdown file.
// Known keys are lifted into fields; everything else lands in Custom.
type FrontMatter struct {
	Title      string         `yaml:"title" json:"title,omitempty"`
	DocumentID string         `yaml:"document_id" json:"document_id,omitempty"`
	Append     bool           `yaml:"append" json:"append,omitempty"`
	Custom     map[string]any `yaml:",inline" json:"custom,omitempty"`
}

// SplitFrontMatter extracts metadata and returns the markdown body without
// the front matter delimiters. Sources without front matter are returned
// unchanged with an empty FrontMatter.
func SplitFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var meta FrontMatter

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if meta.Custom == nil {
		meta.Custom = map[string]any{}
	}
	return meta, body, nil
}
