package usecase

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// MessageFormatter turns a notice message into the HTML placed inside the
// notice element. Messages are trusted markup supplied by the host.
type MessageFormatter interface {
	Format(message string) (template.HTML, error)
}

// ParagraphFormatter wraps plain text in a <p> element and passes markup
// through unchanged.
type ParagraphFormatter struct{}

func (ParagraphFormatter) Format(message string) (template.HTML, error) {
	trimmed := strings.TrimSpace(message)
	if strings.HasPrefix(trimmed, "<") {
		return template.HTML(trimmed), nil // #nosec G203
	}
	return template.HTML("<p>" + trimmed + "</p>"), nil // #nosec G203
}

// MarkdownFormatter renders messages written in GitHub flavored Markdown.
// Raw HTML inside the source is dropped.
type MarkdownFormatter struct {
	md goldmark.Markdown
}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

func (f *MarkdownFormatter) Format(message string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := f.md.Convert([]byte(message), &buf); err != nil {
		return "", goerr.Wrap(err, "failed to render markdown")
	}
	return template.HTML(strings.TrimSpace(buf.String())), nil // #nosec G203
}
