package site

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Processor converts content file bodies (markdown) to HTML.
type Processor struct {
	parser goldmark.Markdown
}

// NewProcessor creates a markdown processor with GFM extensions.
func NewProcessor() *Processor {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Table,
			extension.Strikethrough,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	return &Processor{
		parser: md,
	}
}

// ToHTML converts a markdown string to HTML.
func (p *Processor) ToHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := p.parser.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("markdown conversion failed: %w", err)
	}
	return buf.String(), nil
}
