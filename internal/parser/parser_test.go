package parser

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/assessment/internal/models"
)

const readinessYAML = `title: Team Readiness
hook: Find out in two minutes
theme:
  colors:
    primary: "#000000"
questions:
  - id: ship
    text: Do you ship weekly?
    options:
      - text: "Yes"
        tag: ships
        score: 5
      - text: "No"
        tag: slow
  - id: tools
    text: Which tools?
    multi_select: true
    required: false
    options:
      - text: CI
        tag: ci
        score: 1.5
result_rules:
  - text: Elite
    tags: [ships, ci]
    min_score: 6
    payload:
      headline: Nice
  - id: rest
    text: Keep going
    fallback: true
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     Format
	}{
		{name: "markdown .md extension", filename: "quiz.md", want: FormatMarkdown},
		{name: "markdown .markdown extension", filename: "quiz.markdown", want: FormatMarkdown},
		{name: "YAML .yaml extension", filename: "quiz.yaml", want: FormatYAML},
		{name: "YAML .yml extension", filename: "quiz.yml", want: FormatYAML},
		{name: "JSON extension", filename: "quiz.json", want: FormatJSON},
		{name: "uppercase extension", filename: "QUIZ.YML", want: FormatYAML},
		{name: "unknown .txt extension", filename: "readme.txt", want: FormatUnknown},
		{name: "no extension", filename: "quiz", want: FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.filename))
		})
	}
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatYAML, ParseFormat("YML"))
	assert.Equal(t, FormatJSON, ParseFormat(" json "))
	assert.Equal(t, FormatMarkdown, ParseFormat("md"))
	assert.Equal(t, FormatUnknown, ParseFormat("toml"))
	assert.Equal(t, "json", FormatJSON.String())
}

func TestNewParserUnknown(t *testing.T) {
	_, err := NewParser(FormatUnknown)
	assert.Error(t, err)
}

func TestParseFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "readiness.yml", readinessYAML)

	def, err := ParseFile(path)
	require.NoError(t, err)

	assert.Equal(t, "readiness", def.Slug, "slug defaults to the file base name")
	assert.Equal(t, "Team Readiness", def.Title)
	assert.Equal(t, path, def.SourcePath)
	require.Len(t, def.Questions, 2)
	assert.Equal(t, "ships", def.Questions[0].Options[0].Value)
	assert.Equal(t, 5.0, *def.Questions[0].Options[0].Score)
	assert.True(t, def.Questions[1].MultiSelect)
	require.Len(t, def.ResultRules, 2)
	assert.Equal(t, []string{"ships", "ci"}, def.ResultRules[0].AllTags)
	assert.Equal(t, 6.0, *def.ResultRules[0].ScoreAtLeast)
}

func TestParseFileExplicitSlugWins(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "file-name.yaml", "slug: explicit\ntitle: Something Else\n")

	def, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "explicit", def.Slug)
}

func TestParseFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "quiz.json", `{
  "title": "JSON Quiz",
  "questions": [{"id": "q", "text": "Q?", "options": [{"id": "a", "text": "A", "tag": "a", "score": 2}]}],
  "result_rules": [{"text": "Done", "any_tags": ["a"], "max_score": 10}]
}`)

	def, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "quiz", def.Slug)
	assert.Equal(t, 2.0, *def.Questions[0].Options[0].Score)
	assert.Equal(t, []string{"a"}, def.ResultRules[0].AnyTags)
	assert.Equal(t, 10.0, *def.ResultRules[0].ScoreAtMost)
}

func TestParseFileMarkdown(t *testing.T) {
	tests := []struct {
		name            string
		content         string
		wantDescription string
		wantContains    string
		wantErr         error
	}{
		{
			name:         "body becomes description",
			content:      "---\ntitle: Markdown Quiz\n---\n# Welcome\n\nTake the **quiz**.\n",
			wantContains: "<strong>quiz</strong>",
		},
		{
			name:            "explicit description wins",
			content:         "---\ntitle: Markdown Quiz\ndescription: Plain\n---\nIgnored body\n",
			wantDescription: "Plain",
		},
		{
			name:    "frontmatter required",
			content: "# Just a heading\n",
			wantErr: ErrMissingFrontmatter,
		},
		{
			name:    "empty file",
			content: "  \n",
			wantErr: ErrEmptyDocument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, "intro.md", tt.content)

			def, err := ParseFile(path)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "intro", def.Slug)
			if tt.wantDescription != "" {
				assert.Equal(t, tt.wantDescription, def.Description)
			}
			if tt.wantContains != "" {
				assert.Contains(t, def.Description, tt.wantContains)
				assert.Contains(t, def.Description, "<h1>Welcome</h1>")
			}
		})
	}
}

func TestParseFileErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("unknown extension", func(t *testing.T) {
		path := writeFile(t, dir, "quiz.txt", "title: x")
		_, err := ParseFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown file format")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ParseFile(filepath.Join(dir, "missing.yml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open file")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeFile(t, dir, "broken.yml", "title: [unclosed\n")
		_, err := ParseFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse YAML")
	})

	t.Run("structural error", func(t *testing.T) {
		path := writeFile(t, dir, "shape.yml", "questions:\n  text: not a list\n")
		_, err := ParseFile(path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrNotAList))
	})

	t.Run("empty yaml", func(t *testing.T) {
		path := writeFile(t, dir, "empty.yml", "")
		_, err := ParseFile(path)
		assert.True(t, errors.Is(err, ErrEmptyDocument))
	})
}

func TestEncodeRoundTrip(t *testing.T) {
	original, err := Parse(strings.NewReader(readinessYAML), FormatYAML)
	require.NoError(t, err)
	original.CaptureName = true
	original.Metadata = map[string]interface{}{"version": int64(2)}

	for _, format := range []Format{FormatYAML, FormatJSON} {
		t.Run(format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, original, format))

			decoded, err := Parse(&buf, format)
			require.NoError(t, err)
			assert.Equal(t, original, decoded)
		})
	}
}

func TestEncodeUnsupported(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, models.NewDefinition("x"), FormatMarkdown)
	assert.Error(t, err)
}
