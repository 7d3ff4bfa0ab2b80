package content

import (
	"fmt"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// MarkdownRenderer converts working HTML to markdown so terminal callers
// can preview the document without a rendering layer.
type MarkdownRenderer struct {
	converter *md.Converter
}

func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{
		converter: md.NewConverter("", true, nil),
	}
}

// Render transforms HTML to markdown.
func (r *MarkdownRenderer) Render(html string) (string, error) {
	markdown, err := r.converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}
	return markdown, nil
}
