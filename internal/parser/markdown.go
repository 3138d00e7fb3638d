package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"

	"github.com/harrison/assessment/internal/models"
)

// ErrMissingFrontmatter is returned for Markdown documents without a YAML frontmatter block
var ErrMissingFrontmatter = errors.New("markdown definition requires YAML frontmatter")

// MarkdownParser decodes Markdown definition documents. The YAML frontmatter holds the
// definition; the body is rendered to HTML and used as the description unless the
// frontmatter sets one.
type MarkdownParser struct {
	markdown goldmark.Markdown
}

// NewMarkdownParser creates a new Markdown parser
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Decode reads the frontmatter and body from r
func (p *MarkdownParser) Decode(r io.Reader) (models.Node, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return models.Node{}, fmt.Errorf("failed to read content: %w", err)
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return models.Node{}, ErrEmptyDocument
	}

	body, frontmatter := extractFrontmatter(content)
	if frontmatter == nil {
		return models.Node{}, ErrMissingFrontmatter
	}

	var raw interface{}
	if err := yaml.Unmarshal(frontmatter, &raw); err != nil {
		return models.Node{}, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}

	doc, err := models.NewNode(raw)
	if err != nil {
		return models.Node{}, err
	}
	if doc.Kind() != models.KindMap {
		return models.Node{}, fmt.Errorf("frontmatter: %w, got %s", models.ErrNotAMap, doc.Kind())
	}

	if !doc.Has("description") && len(bytes.TrimSpace(body)) > 0 {
		var html bytes.Buffer
		if err := p.markdown.Convert(body, &html); err != nil {
			return models.Node{}, fmt.Errorf("failed to render markdown body: %w", err)
		}
		description, _ := models.NewNode(string(bytes.TrimSpace(html.Bytes())))
		doc = doc.Set("description", description)
	}
	return doc, nil
}

// extractFrontmatter extracts YAML frontmatter from markdown content
// Returns the content without frontmatter and the frontmatter bytes
func extractFrontmatter(content []byte) ([]byte, []byte) {
	lines := bytes.Split(content, []byte("\n"))

	if len(lines) < 2 || !bytes.Equal(bytes.TrimSpace(lines[0]), []byte("---")) {
		return content, nil
	}

	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), []byte("---")) {
			frontmatter := bytes.Join(lines[1:i], []byte("\n"))
			body := bytes.Join(lines[i+1:], []byte("\n"))
			return body, frontmatter
		}
	}

	return content, nil
}
