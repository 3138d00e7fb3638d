package parser

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/assessment/internal/models"
)

// Format represents the format of a definition document
type Format int

const (
	// FormatUnknown represents an unknown or unsupported file format
	FormatUnknown Format = iota
	// FormatMarkdown represents a Markdown (.md, .markdown) document with YAML frontmatter
	FormatMarkdown
	// FormatYAML represents a YAML (.yaml, .yml) document
	FormatYAML
	// FormatJSON represents a JSON (.json) document
	FormatJSON
)

// String returns the string representation of the Format
func (f Format) String() string {
	switch f {
	case FormatMarkdown:
		return "markdown"
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// ParseFormat maps a user-facing name ("yaml", "yml", "json", "markdown", "md") to a Format
func ParseFormat(name string) Format {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "yaml", "yml":
		return FormatYAML
	case "json":
		return FormatJSON
	case "markdown", "md":
		return FormatMarkdown
	default:
		return FormatUnknown
	}
}

// Extensions lists every file extension with a registered parser
func Extensions() []string {
	return []string{".json", ".markdown", ".md", ".yaml", ".yml"}
}

// Parser is the interface that all definition parsers must implement
type Parser interface {
	// Decode reads a document from an io.Reader into a normalized tree
	Decode(r io.Reader) (models.Node, error)
}

// DetectFormat automatically detects the document format based on file extension
// Supported extensions:
//   - .md, .markdown -> FormatMarkdown
//   - .yaml, .yml -> FormatYAML
//   - .json -> FormatJSON
//   - all others -> FormatUnknown
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return FormatMarkdown
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatUnknown
	}
}

// NewParser creates a new parser instance for the specified format
// Returns an error if the format is unknown or unsupported
func NewParser(format Format) (Parser, error) {
	switch format {
	case FormatMarkdown:
		return NewMarkdownParser(), nil
	case FormatYAML:
		return NewYAMLParser(), nil
	case FormatJSON:
		return NewJSONParser(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %v", format)
	}
}

// Parse decodes a document of the given format and constructs a Definition from it
func Parse(r io.Reader, format Format) (*models.Definition, error) {
	parser, err := NewParser(format)
	if err != nil {
		return nil, err
	}
	doc, err := parser.Decode(r)
	if err != nil {
		return nil, err
	}
	return models.FromDocument(doc)
}

// ParseFile is a convenience function that:
//  1. Auto-detects the format from the extension
//  2. Decodes the file into a document tree
//  3. Defaults a missing slug to the file's base name (without extension)
//  4. Constructs the Definition and stores the absolute path in SourcePath
//
// This is the recommended way to load definition files from disk.
func ParseFile(path string) (*models.Definition, error) {
	format := DetectFormat(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("unknown file format: %s (supported: %s)", path, strings.Join(Extensions(), ", "))
	}

	parser, err := NewParser(format)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	doc, err := parser.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	if doc.Kind() == models.KindMap && doc.Field("slug").Str() == "" {
		base := filepath.Base(path)
		slug, _ := models.NewNode(strings.TrimSuffix(base, filepath.Ext(base)))
		doc = doc.Set("slug", slug)
	}

	def, err := models.FromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build definition from %s: %w", filepath.Base(path), err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	def.SourcePath = absPath

	return def, nil
}
